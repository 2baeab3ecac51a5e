package inject

import (
	"sync"
	"time"

	"mimic/pkg/events"
)

// Op identifies a recorded injector call.
type Op string

const (
	OpMoveMouse     Op = "move-mouse"
	OpPressButton   Op = "press-button"
	OpReleaseButton Op = "release-button"
	OpScroll        Op = "scroll"
	OpPressKey      Op = "press-key"
	OpReleaseKey    Op = "release-key"
)

// Call is one recorded injector invocation.
type Call struct {
	Op     Op
	X, Y   int
	DX, DY int
	Button events.Button
	Key    string
	At     time.Time
}

// Simulated records dispatched calls instead of synthesizing input, and
// can be scripted to fail specific calls for error-policy tests.
type Simulated struct {
	mu       sync.Mutex
	calls    []Call
	attempts int

	// FailOn returns a non-nil error to make the n-th attempt (0-based,
	// counting failed attempts) fail. Nil means every call succeeds.
	FailOn func(n int, c Call) error
}

// NewSimulated returns an injector that records all calls.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) record(c Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.At = time.Now()
	n := s.attempts
	s.attempts++
	if s.FailOn != nil {
		if err := s.FailOn(n, c); err != nil {
			return err
		}
	}
	s.calls = append(s.calls, c)
	return nil
}

// MoveMouse records a pointer move.
func (s *Simulated) MoveMouse(x, y int) error {
	return s.record(Call{Op: OpMoveMouse, X: x, Y: y})
}

// PressButton records a button press.
func (s *Simulated) PressButton(button events.Button, x, y int) error {
	return s.record(Call{Op: OpPressButton, Button: button, X: x, Y: y})
}

// ReleaseButton records a button release.
func (s *Simulated) ReleaseButton(button events.Button, x, y int) error {
	return s.record(Call{Op: OpReleaseButton, Button: button, X: x, Y: y})
}

// Scroll records a scroll.
func (s *Simulated) Scroll(dx, dy, x, y int) error {
	return s.record(Call{Op: OpScroll, DX: dx, DY: dy, X: x, Y: y})
}

// PressKey records a key press.
func (s *Simulated) PressKey(key string) error {
	return s.record(Call{Op: OpPressKey, Key: key})
}

// ReleaseKey records a key release.
func (s *Simulated) ReleaseKey(key string) error {
	return s.record(Call{Op: OpReleaseKey, Key: key})
}

// Close is a no-op.
func (s *Simulated) Close() error { return nil }

// Calls returns a copy of all recorded calls in dispatch order.
func (s *Simulated) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Len returns the number of recorded calls.
func (s *Simulated) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
