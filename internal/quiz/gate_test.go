package quiz

import "testing"

func TestEvaluate_DecisionTable(t *testing.T) {
	cases := []struct {
		name     string
		correct  int
		total    int
		passing  int
		final    bool
		score    int
		passed   bool
		next     Stage
	}{
		{"final exam pass", 8, 10, 70, true, 80, true, StageEssayRequired},
		{"final exam fail", 6, 10, 70, true, 60, false, StageNone},
		{"regular pass", 9, 10, 70, false, 90, true, StageCertificate},
		{"regular fail", 3, 10, 70, false, 30, false, StageRetry},
		{"exact threshold passes", 7, 10, 70, false, 70, true, StageCertificate},
		{"one below threshold fails", 69, 100, 70, false, 69, false, StageRetry},
		{"rounds to nearest", 2, 3, 70, false, 67, false, StageRetry},
		{"rounds up past threshold", 5, 7, 71, false, 71, true, StageCertificate},
		{"all correct", 10, 10, 100, true, 100, true, StageEssayRequired},
		{"zero correct", 0, 10, 1, false, 0, false, StageRetry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Evaluate(tc.correct, tc.total, Quiz{PassingScore: tc.passing, IsFinalExam: tc.final})
			if out.Score != tc.score {
				t.Errorf("score = %d, want %d", out.Score, tc.score)
			}
			if out.Passed != tc.passed {
				t.Errorf("passed = %v, want %v", out.Passed, tc.passed)
			}
			if out.NextStage != tc.next {
				t.Errorf("next stage = %q, want %q", out.NextStage, tc.next)
			}
		})
	}
}

func TestEvaluate_NonFinalNeverRequiresEssay(t *testing.T) {
	qz := Quiz{PassingScore: 0, IsFinalExam: false}
	for correct := 0; correct <= 10; correct++ {
		if out := Evaluate(correct, 10, qz); out.NextStage == StageEssayRequired {
			t.Fatalf("non-final exam must never reach essay stage (correct=%d)", correct)
		}
	}
}
