// Package inject defines the boundary to synthetic input generation.
//
// An Injector turns replayed events back into OS-level pointer and
// keyboard actions. Each call is synchronous and either succeeds or
// reports an OS-level failure; the player decides what a failure means
// (abort, skip, retry). Tests use the Simulated injector, which records
// every dispatched call instead of touching the OS.
package inject

import (
	"errors"

	"mimic/pkg/events"
)

// ErrUnavailable is returned when no injection backend exists on this
// platform.
var ErrUnavailable = errors.New("inject: input injection not available")

// Injector synthesizes OS-level input.
type Injector interface {
	// MoveMouse moves the pointer to absolute coordinates (x, y).
	MoveMouse(x, y int) error

	// PressButton presses button with the pointer at (x, y).
	PressButton(button events.Button, x, y int) error

	// ReleaseButton releases button with the pointer at (x, y).
	ReleaseButton(button events.Button, x, y int) error

	// Scroll scrolls by (dx, dy) wheel steps with the pointer at (x, y).
	Scroll(dx, dy, x, y int) error

	// PressKey presses the key with the given identifier.
	PressKey(key string) error

	// ReleaseKey releases the key with the given identifier.
	ReleaseKey(key string) error

	// Close releases any backend resources.
	Close() error
}
