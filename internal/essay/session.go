package essay

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// State of the dictation session.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
)

// Session owns dictation for one essay instance. At most one capture is
// active at a time: Start while listening is a no-op, and Stop guarantees
// that no further segment reaches the buffer after it returns.
type Session struct {
	buf   *Buffer
	rec   Recognizer
	synth Synthesizer
	lang  string
	log   *logrus.Logger

	mu      sync.Mutex
	state   State
	lastErr error
	cancel  context.CancelFunc
	quit    chan struct{}
	done    chan struct{}
}

func NewSession(buf *Buffer, rec Recognizer, synth Synthesizer, lang string, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.New()
	}
	if lang == "" {
		lang = "en-US"
	}
	return &Session{buf: buf, rec: rec, synth: synth, lang: lang, log: log, state: StateIdle}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastErr reports the most recent terminal recognizer error, if any.
func (s *Session) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Start begins a capture. Already listening is a no-op. A missing or failing
// capability returns ErrDictationUnavailable and leaves typing untouched.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateListening {
		s.mu.Unlock()
		return nil
	}
	if s.rec == nil {
		s.mu.Unlock()
		return ErrDictationUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	results, err := s.rec.Listen(ctx, s.lang)
	if err != nil {
		cancel()
		s.lastErr = err
		s.mu.Unlock()
		return ErrDictationUnavailable
	}

	s.state = StateListening
	s.lastErr = nil
	s.cancel = cancel
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.pump(results, s.quit, s.done)
	s.mu.Unlock()
	return nil
}

// pump commits finalized segments until the stream ends or Stop asks it to
// quit. Results already buffered in the channel when quit closes are dropped,
// which is what makes Stop's "what you see is final" guarantee hold.
func (s *Session) pump(results <-chan Result, quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		case res, ok := <-results:
			if !ok {
				s.ended()
				return
			}
			if res.Final {
				s.buf.AppendDictated(strings.TrimSpace(res.Transcript))
			}
		}
	}
}

// ended handles the recognizer-side end of stream (terminal error or
// browser-level "ended"): back to idle, capture resources released.
func (s *Session) ended() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateListening {
		return
	}
	s.state = StateIdle
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.log.Debug("dictation ended by recognizer")
}

// Stop ends the capture. It returns only after the delivery goroutine has
// exited, so no segment can land in the buffer afterwards. Stopping an idle
// session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	quit, done := s.quit, s.done
	s.mu.Unlock()

	close(quit)
	<-done
}

// ReadAloud synthesizes the current buffer for proofreading. Side channel
// only: it never touches the buffer, and failures are logged, not raised to
// the submission path.
func (s *Session) ReadAloud(ctx context.Context) error {
	if s.synth == nil {
		return ErrDictationUnavailable
	}
	text := s.buf.Text()
	if text == "" {
		return nil
	}
	go func() {
		if err := s.synth.Speak(ctx, text); err != nil {
			s.log.WithError(err).Warn("read-aloud failed")
		}
	}()
	return nil
}
