package events

import (
	"fmt"
	"time"
)

// MousePayload carries the data of a mouse event. X and Y are absolute
// screen coordinates. Button is set for press/release kinds; DX and DY are
// set for scroll kinds (positive DY scrolls up, matching the capture
// convention).
type MousePayload struct {
	X      int
	Y      int
	Button Button
	DX     int
	DY     int
}

// KeyPayload carries the data of a keyboard event. Key is either a
// printable character ("a", "7") or a named key ("shift", "f1", "enter").
type KeyPayload struct {
	Key string
}

// Event is one immutable, timestamped input action. The zero Event is not
// valid; use the New* constructors, which reject payloads inconsistent
// with the kind.
type Event struct {
	kind   Kind
	offset time.Duration
	mouse  MousePayload
	key    KeyPayload
}

// Kind returns the event's kind.
func (e Event) Kind() Kind { return e.kind }

// Offset returns the duration elapsed since the start of recording.
func (e Event) Offset() time.Duration { return e.offset }

// Mouse returns the mouse payload. The second return is false for
// keyboard events.
func (e Event) Mouse() (MousePayload, bool) {
	return e.mouse, e.kind.IsMouse()
}

// Key returns the keyboard payload. The second return is false for mouse
// events.
func (e Event) Key() (KeyPayload, bool) {
	return e.key, e.kind.IsKey()
}

// String renders the event for logs and error messages.
func (e Event) String() string {
	switch e.kind {
	case KindMouseMove:
		return fmt.Sprintf("%s(%d,%d)@%s", e.kind, e.mouse.X, e.mouse.Y, e.offset)
	case KindMousePress, KindMouseRelease:
		return fmt.Sprintf("%s(%s,%d,%d)@%s", e.kind, e.mouse.Button, e.mouse.X, e.mouse.Y, e.offset)
	case KindMouseScroll:
		return fmt.Sprintf("%s(%d,%d,dx=%d,dy=%d)@%s", e.kind, e.mouse.X, e.mouse.Y, e.mouse.DX, e.mouse.DY, e.offset)
	case KindKeyPress, KindKeyRelease:
		return fmt.Sprintf("%s(%q)@%s", e.kind, e.key.Key, e.offset)
	}
	return fmt.Sprintf("invalid-event@%s", e.offset)
}

// NewMouseMove constructs a mouse-move event at (x, y).
func NewMouseMove(offset time.Duration, x, y int) (Event, error) {
	if err := checkOffset(KindMouseMove, offset); err != nil {
		return Event{}, err
	}
	return Event{kind: KindMouseMove, offset: offset, mouse: MousePayload{X: x, Y: y}}, nil
}

// NewMousePress constructs a mouse-press event for button at (x, y).
func NewMousePress(offset time.Duration, button Button, x, y int) (Event, error) {
	return newButtonEvent(KindMousePress, offset, button, x, y)
}

// NewMouseRelease constructs a mouse-release event for button at (x, y).
func NewMouseRelease(offset time.Duration, button Button, x, y int) (Event, error) {
	return newButtonEvent(KindMouseRelease, offset, button, x, y)
}

func newButtonEvent(kind Kind, offset time.Duration, button Button, x, y int) (Event, error) {
	if err := checkOffset(kind, offset); err != nil {
		return Event{}, err
	}
	if !button.Valid() {
		return Event{}, &InvalidEventError{Kind: kind, Reason: fmt.Sprintf("unrecognized button %q", button)}
	}
	return Event{kind: kind, offset: offset, mouse: MousePayload{X: x, Y: y, Button: button}}, nil
}

// NewMouseScroll constructs a mouse-scroll event at (x, y) with wheel
// deltas (dx, dy).
func NewMouseScroll(offset time.Duration, x, y, dx, dy int) (Event, error) {
	if err := checkOffset(KindMouseScroll, offset); err != nil {
		return Event{}, err
	}
	return Event{kind: KindMouseScroll, offset: offset, mouse: MousePayload{X: x, Y: y, DX: dx, DY: dy}}, nil
}

// NewKeyPress constructs a key-press event for the given key identifier.
func NewKeyPress(offset time.Duration, key string) (Event, error) {
	return newKeyEvent(KindKeyPress, offset, key)
}

// NewKeyRelease constructs a key-release event for the given key identifier.
func NewKeyRelease(offset time.Duration, key string) (Event, error) {
	return newKeyEvent(KindKeyRelease, offset, key)
}

func newKeyEvent(kind Kind, offset time.Duration, key string) (Event, error) {
	if err := checkOffset(kind, offset); err != nil {
		return Event{}, err
	}
	if key == "" {
		return Event{}, &InvalidEventError{Kind: kind, Reason: "empty key identifier"}
	}
	return Event{kind: kind, offset: offset, key: KeyPayload{Key: key}}, nil
}

func checkOffset(kind Kind, offset time.Duration) error {
	if offset < 0 {
		return &InvalidEventError{Kind: kind, Reason: fmt.Sprintf("negative timestamp offset %s", offset)}
	}
	return nil
}
