package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sfgm-boston/bibleschool-lms/internal/db"
)

func TestEventLog_RecordAndTail(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	log := NewEventLog(dbh)

	for i, key := range []string{"a1", "a2", "a3"} {
		err := log.Record(ctx, "attempt.submitted", key, map[string]int{"n": i})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := log.Record(ctx, "essay.submitted", "sub-1", map[string]string{"student": "stu-1"}); err != nil {
		t.Fatal(err)
	}

	events, err := log.Tail(ctx, "attempt.submitted", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("tail = %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].Key != "a3" || events[1].Key != "a2" {
		t.Errorf("tail order = %s, %s", events[0].Key, events[1].Key)
	}

	var payload map[string]int
	if err := json.Unmarshal([]byte(events[0].DataJSON), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["n"] != 2 {
		t.Errorf("payload = %v", payload)
	}

	other, err := log.Tail(ctx, "essay.submitted", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 1 || other[0].Key != "sub-1" {
		t.Errorf("essay tail = %+v", other)
	}
}
