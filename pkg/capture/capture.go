// Package capture defines the boundary to the OS-level input hook.
//
// A Source owns the process-wide mouse/keyboard hook and delivers
// normalized notifications on a channel. The recorder only subscribes and
// unsubscribes; hook installation, permission handling, and device
// plumbing live entirely behind this interface. Tests use the Simulated
// source, which feeds synthetic notifications deterministically without
// touching real OS hooks.
package capture

import (
	"context"
	"errors"
	"time"

	"mimic/pkg/events"
)

// ErrUnavailable is returned when no capture backend can be established
// on this platform with current permissions.
var ErrUnavailable = errors.New("capture: input capture not available")

// ErrAlreadySubscribed is returned when Subscribe is called on a source
// that already has an active subscription.
var ErrAlreadySubscribed = errors.New("capture: source already subscribed")

// Notification is one raw input observation, tagged with a monotonic
// capture timestamp and the minimal data needed to build an event payload.
// Position fields apply to mouse kinds, Key to keyboard kinds.
type Notification struct {
	Kind   events.Kind
	X, Y   int
	Button events.Button
	DX, DY int
	Key    string
	At     time.Time
}

// Source delivers OS input notifications.
type Source interface {
	// Subscribe installs the hook and returns the notification channel.
	// The channel is closed when the source shuts down, whether from
	// Close or from a backend failure; after the channel closes, Err
	// reports the cause (nil for a clean Close). Only one subscription
	// may be active at a time.
	Subscribe(ctx context.Context) (<-chan Notification, error)

	// Close tears down the hook and releases the subscription.
	Close() error

	// Err returns the backend error that terminated delivery, if any.
	Err() error

	// Available reports whether this source can capture on the current
	// platform, with a human-readable explanation.
	Available() (bool, string)
}
