package events

import (
	"errors"
	"fmt"
	"time"
)

// ErrFrozen is returned by Append once a sequence has been frozen.
var ErrFrozen = errors.New("events: sequence is frozen")

// InvalidEventError reports an attempt to construct an Event with a
// payload inconsistent with its kind.
type InvalidEventError struct {
	Kind   Kind
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("events: invalid %s event: %s", e.Kind, e.Reason)
}

// OutOfOrderError reports an append that would violate the non-decreasing
// timestamp invariant. Index is the position the event would have taken.
type OutOfOrderError struct {
	Index int
	Prev  time.Duration
	Next  time.Duration
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("events: out-of-order append at index %d: offset %s is before previous offset %s",
		e.Index, e.Next, e.Prev)
}

// MalformedDataError reports structurally invalid serialized input. Index
// is the position of the offending event in the log, or -1 when the log
// itself could not be parsed. Field names the offending field when known.
type MalformedDataError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedDataError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("events: malformed log: %s", e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("events: malformed event at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("events: malformed event at index %d: field %q: %s", e.Index, e.Field, e.Reason)
}
