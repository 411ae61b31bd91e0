// Package chat runs the Wellness Buddy conversation: LLM replies, crisis
// checks, history, and the character-by-character reveal of each reply.
package chat

import (
	"context"
	"iter"
	"sync"
	"time"
)

// DefaultRevealDelay is the pause between revealed characters.
const DefaultRevealDelay = 30 * time.Millisecond

// RevealState is one snapshot of a reply being revealed.
// RevealedLength counts runes, not bytes.
type RevealState struct {
	FullText       string `json:"text"`
	RevealedLength int    `json:"revealed"`
	Done           bool   `json:"done"`
}

// Visible returns the revealed prefix of FullText.
func (s RevealState) Visible() string {
	runes := []rune(s.FullText)
	n := s.RevealedLength
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

// Prefixes yields one state per character of text, each one character
// longer than the last; the final state is Done. Empty text yields a single
// Done state of length zero. The sequence can be ranged over repeatedly.
func Prefixes(text string) iter.Seq[RevealState] {
	return func(yield func(RevealState) bool) {
		n := len([]rune(text))
		if n == 0 {
			yield(RevealState{FullText: text, Done: true})
			return
		}
		for i := 1; i <= n; i++ {
			if !yield(RevealState{FullText: text, RevealedLength: i, Done: i == n}) {
				return
			}
		}
	}
}

// Reveal emits the prefixes of a reply on a timer until it finishes or is
// cancelled.
type Reveal struct {
	text  string
	delay time.Duration

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewReveal creates a reveal for text. A non-positive delay emits all
// snapshots back to back.
func NewReveal(text string, delay time.Duration) *Reveal {
	if delay < 0 {
		delay = 0
	}
	return &Reveal{text: text, delay: delay, done: make(chan struct{})}
}

// Start begins emitting snapshots. The first one is sent immediately and each
// following one after the configured delay. The returned channel closes when
// the reveal completes or is cancelled. Start may only be called once; later
// calls return a closed channel.
func (r *Reveal) Start(ctx context.Context) <-chan RevealState {
	out := make(chan RevealState)

	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		close(out)
		return out
	}
	r.started = true
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		defer close(r.done)
		defer close(out)
		defer cancel()

		var timer *time.Timer
		first := true
		for state := range Prefixes(r.text) {
			if !first && r.delay > 0 {
				if timer == nil {
					timer = time.NewTimer(r.delay)
				} else {
					timer.Reset(r.delay)
				}
				select {
				case <-ctx.Done():
					timer.Stop()
					r.setErr(ctx.Err())
					return
				case <-timer.C:
				}
			}
			first = false

			if err := ctx.Err(); err != nil {
				r.setErr(err)
				return
			}
			select {
			case <-ctx.Done():
				r.setErr(ctx.Err())
				return
			case out <- state:
			}
		}
	}()
	return out
}

// Cancel stops the reveal and waits for its goroutine to exit. It is safe to
// call more than once and before Start.
func (r *Reveal) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	started := r.started
	if !started {
		r.started = true
		r.err = context.Canceled
		close(r.done)
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-r.done
}

// Err reports why the reveal stopped early, or nil if it ran to completion
// or is still running.
func (r *Reveal) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reveal) setErr(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}
