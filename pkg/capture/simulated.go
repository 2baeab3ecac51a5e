package capture

import (
	"context"
	"sync"
	"time"

	"mimic/pkg/events"
)

// Simulated is a capture source for tests. It installs no OS hooks;
// notifications are injected by the test through the Emit helpers.
type Simulated struct {
	mu         sync.Mutex
	ch         chan Notification
	subscribed bool
	closed     bool
	err        error

	// FailSubscribe makes Subscribe fail, for exercising the
	// capture-unavailable path.
	FailSubscribe error

	start time.Time
}

// NewSimulated returns an idle simulated source.
func NewSimulated() *Simulated {
	return &Simulated{start: time.Now()}
}

// Subscribe returns the synthetic notification channel.
func (s *Simulated) Subscribe(ctx context.Context) (<-chan Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSubscribe != nil {
		return nil, s.FailSubscribe
	}
	if s.subscribed {
		return nil, ErrAlreadySubscribed
	}
	s.ch = make(chan Notification, 64)
	s.subscribed = true
	s.closed = false
	return s.ch, nil
}

// Close closes the notification channel.
func (s *Simulated) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed && !s.closed {
		close(s.ch)
		s.closed = true
		s.subscribed = false
	}
	return nil
}

// Err returns the injected backend error, if any.
func (s *Simulated) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Available always reports true.
func (s *Simulated) Available() (bool, string) {
	return true, "simulated capture source (for testing)"
}

// Emit delivers n to the subscriber. It blocks if the channel buffer is
// full and panics if there is no active subscription, which in a test
// means the recorder was not started.
func (s *Simulated) Emit(n Notification) {
	s.mu.Lock()
	ch := s.ch
	closed := s.closed
	s.mu.Unlock()
	if ch == nil || closed {
		panic("capture: Emit without active subscription")
	}
	ch <- n
}

// EmitAt delivers a notification stamped at the source's start time plus
// offset, so tests can script exact capture timing.
func (s *Simulated) EmitAt(offset time.Duration, n Notification) {
	n.At = s.start.Add(offset)
	s.Emit(n)
}

// EmitMouseMove is shorthand for emitting a mouse-move notification.
func (s *Simulated) EmitMouseMove(offset time.Duration, x, y int) {
	s.EmitAt(offset, Notification{Kind: events.KindMouseMove, X: x, Y: y})
}

// EmitKeyPress is shorthand for emitting a key-press notification.
func (s *Simulated) EmitKeyPress(offset time.Duration, key string) {
	s.EmitAt(offset, Notification{Kind: events.KindKeyPress, Key: key})
}

// Fail simulates a mid-recording backend failure: the channel closes and
// Err reports err.
func (s *Simulated) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	if s.subscribed && !s.closed {
		close(s.ch)
		s.closed = true
		s.subscribed = false
	}
}

// Pending returns the number of emitted notifications not yet consumed,
// letting tests wait for the subscriber to drain the channel.
func (s *Simulated) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return 0
	}
	return len(s.ch)
}

// Start returns the instant EmitAt offsets are measured from.
func (s *Simulated) Start() time.Time {
	return s.start
}
