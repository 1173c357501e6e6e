package essay

import (
	"context"
	"errors"
)

// ErrDictationUnavailable: the speech capability is missing or failed to
// start. Recoverable: typed input keeps working and submission is never
// blocked on it.
var ErrDictationUnavailable = errors.New("dictation unavailable")

// Result is one recognizer emission. Interim results carry the running
// transcript and are displayed but never committed; only Final results are
// appended to the buffer.
type Result struct {
	Transcript string
	Final      bool
}

// Recognizer abstracts a continuous, interim-enabled, language-tagged
// speech-to-text capability as a stream of Results. The stream ends when the
// recognizer hits a terminal error or the capture ends; either way the
// channel is closed.
type Recognizer interface {
	// Listen starts capture and returns the result stream. It fails fast
	// with ErrDictationUnavailable when the capability is absent.
	Listen(ctx context.Context, lang string) (<-chan Result, error)
}

// Synthesizer reads text aloud for proofreading. Fire and forget: callers
// ignore the outcome beyond logging.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}
