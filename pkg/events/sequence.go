package events

import (
	"iter"
	"sync"
	"time"
)

// Sequence is an ordered, append-only list of Events. Insertion order is
// replay order, and timestamp offsets are non-decreasing across the
// list.
//
// Appends and reads are internally serialized, so a recorder's hook
// goroutine may append while application code reads concurrently without
// observing a torn event. Once frozen a Sequence is read-only.
type Sequence struct {
	mu     sync.RWMutex
	events []Event
	frozen bool
}

// NewSequence returns an empty, unfrozen sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// FromEvents builds a sequence from evs, enforcing the non-decreasing
// offset invariant. The input slice is copied.
func FromEvents(evs []Event) (*Sequence, error) {
	s := NewSequence()
	for _, e := range evs {
		if err := s.Append(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append adds e to the end of the sequence. It fails with ErrFrozen after
// Freeze, and with *OutOfOrderError if e's offset is before the last
// appended event's offset. Equal offsets are allowed (simultaneous
// events).
func (s *Sequence) Append(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	if n := len(s.events); n > 0 {
		if prev := s.events[n-1].Offset(); e.Offset() < prev {
			return &OutOfOrderError{Index: n, Prev: prev, Next: e.Offset()}
		}
	}
	s.events = append(s.events, e)
	return nil
}

// Freeze makes the sequence permanently read-only. Freezing twice is a
// no-op.
func (s *Sequence) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Frozen reports whether the sequence has been frozen.
func (s *Sequence) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Len returns the number of events.
func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// At returns the event at index i. It panics if i is out of range, like a
// slice index.
func (s *Sequence) At(i int) Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events[i]
}

// Events returns a copy of the event list.
func (s *Sequence) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Duration returns the offset of the last event, or zero for an empty
// sequence.
func (s *Sequence) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Offset()
}

// All returns an iterator over (index, event) pairs in order. The
// iterator ranges over a snapshot taken when All is called.
func (s *Sequence) All() iter.Seq2[int, Event] {
	evs := s.Events()
	return func(yield func(int, Event) bool) {
		for i, e := range evs {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Filter returns a lazy, restartable iterator over the events for which
// pred returns true. The original sequence is not mutated; the iterator
// ranges over a snapshot taken when Filter is called and may be ranged
// multiple times.
func (s *Sequence) Filter(pred func(Event) bool) iter.Seq[Event] {
	evs := s.Events()
	return func(yield func(Event) bool) {
		for _, e := range evs {
			if pred(e) && !yield(e) {
				return
			}
		}
	}
}

// Keyboard returns an iterator over only the keyboard events.
func (s *Sequence) Keyboard() iter.Seq[Event] {
	return s.Filter(func(e Event) bool { return e.Kind().IsKey() })
}

// Mouse returns an iterator over only the mouse events.
func (s *Sequence) Mouse() iter.Seq[Event] {
	return s.Filter(func(e Event) bool { return e.Kind().IsMouse() })
}

// Equal reports whether s and other hold the same events in the same
// order. Frozen state is not part of equality.
func (s *Sequence) Equal(other *Sequence) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	a, b := s.Events(), other.Events()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
