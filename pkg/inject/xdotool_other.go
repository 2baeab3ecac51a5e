//go:build !linux

package inject

// NewXdotool is Linux-only; other platforms have no xdotool backend.
func NewXdotool() (Injector, error) {
	return nil, ErrUnavailable
}
