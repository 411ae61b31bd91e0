package chat

import (
	"context"
	"sync"
	"time"
)

// Session owns the visible history of one conversation and the reveal of the
// latest reply. The history slice is replaced, never mutated, on each update,
// so slices returned by History stay valid.
type Session struct {
	onReveal func(RevealState)

	mu      sync.Mutex
	history []Message
	current *Reveal
	gen     uint64
	closed  bool
}

// NewSession creates a session seeded with history. onReveal, if set, is
// called with every snapshot of the reply being revealed. It runs under the
// session lock and must not call back into the Session.
func NewSession(history []Message, onReveal func(RevealState)) *Session {
	seeded := make([]Message, len(history))
	copy(seeded, history)
	return &Session{history: seeded, onReveal: onReveal}
}

// History returns the committed messages.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// Add commits a message immediately, typically the user's own turn.
func (s *Session) Add(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.history = appendMessage(s.history, msg)
}

// Deliver cancels any reveal in flight and starts revealing reply. The reply
// is committed to history only once its reveal reaches Done. The returned
// channel closes when this reveal finishes or is abandoned.
func (s *Session) Deliver(ctx context.Context, reply Message, delay time.Duration) <-chan struct{} {
	finished := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(finished)
		return finished
	}
	s.gen++
	gen := s.gen
	prev := s.current
	rv := NewReveal(reply.Content, delay)
	s.current = rv
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	states := rv.Start(ctx)
	go func() {
		defer close(finished)
		for state := range states {
			s.mu.Lock()
			if s.gen != gen || s.closed {
				s.mu.Unlock()
				rv.Cancel()
				return
			}
			if state.Done {
				s.history = appendMessage(s.history, reply)
				s.current = nil
			}
			if s.onReveal != nil {
				s.onReveal(state)
			}
			s.mu.Unlock()
		}
	}()
	return finished
}

// Close cancels any outstanding reveal. Later deliveries are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

func appendMessage(history []Message, msg Message) []Message {
	next := make([]Message, len(history), len(history)+1)
	copy(next, history)
	return append(next, msg)
}
