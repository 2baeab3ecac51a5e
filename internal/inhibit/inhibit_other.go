//go:build !linux

// Package inhibit keeps the desktop session awake during playback. Only
// implemented on Linux; elsewhere Acquire succeeds and does nothing.
package inhibit

// Inhibitor is a no-op on this platform.
type Inhibitor struct{}

// Acquire does nothing on this platform.
func Acquire(reason string) (*Inhibitor, error) {
	return &Inhibitor{}, nil
}

// Release does nothing on this platform.
func (i *Inhibitor) Release() error { return nil }
