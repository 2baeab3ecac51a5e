// Package events defines the normalized input event model and the ordered,
// serializable sequence that recording produces and playback consumes.
//
// An Event is one observed input action: a mouse movement, a button press
// or release, a scroll, or a key press or release. Events are immutable
// values carrying a kind, a kind-specific payload, and the duration elapsed
// since the start of the recording. A Sequence is an append-only,
// chronologically ordered list of Events with a stable JSON interchange
// form, so a recording made on one machine can be inspected, filtered, and
// replayed later.
package events

// Kind identifies the semantic type of an input event. The string values
// are the interchange names used in serialized logs.
type Kind string

const (
	KindMouseMove    Kind = "mouse-move"
	KindMousePress   Kind = "mouse-press"
	KindMouseRelease Kind = "mouse-release"
	KindMouseScroll  Kind = "mouse-scroll"
	KindKeyPress     Kind = "key-press"
	KindKeyRelease   Kind = "key-release"
)

// Valid reports whether k is a recognized event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMouseMove, KindMousePress, KindMouseRelease,
		KindMouseScroll, KindKeyPress, KindKeyRelease:
		return true
	}
	return false
}

// IsMouse reports whether k is one of the mouse kinds.
func (k Kind) IsMouse() bool {
	switch k {
	case KindMouseMove, KindMousePress, KindMouseRelease, KindMouseScroll:
		return true
	}
	return false
}

// IsKey reports whether k is one of the keyboard kinds.
func (k Kind) IsKey() bool {
	return k == KindKeyPress || k == KindKeyRelease
}

// String returns the interchange name of the kind.
func (k Kind) String() string {
	return string(k)
}

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Valid reports whether b is a recognized mouse button.
func (b Button) Valid() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	}
	return false
}
