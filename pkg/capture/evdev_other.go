//go:build !linux

package capture

import "context"

// Evdev is only implemented on Linux. On other platforms the constructor
// still returns a Source so callers can probe Available, but Subscribe
// always fails with ErrUnavailable.
type Evdev struct{}

// NewEvdev returns a stub source on non-Linux platforms.
func NewEvdev() *Evdev {
	return &Evdev{}
}

// Subscribe always fails on non-Linux platforms.
func (e *Evdev) Subscribe(ctx context.Context) (<-chan Notification, error) {
	return nil, ErrUnavailable
}

// Close is a no-op.
func (e *Evdev) Close() error { return nil }

// Err always returns nil.
func (e *Evdev) Err() error { return nil }

// Available reports that evdev capture is Linux-only.
func (e *Evdev) Available() (bool, string) {
	return false, "evdev capture is only available on Linux"
}
