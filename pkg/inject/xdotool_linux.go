//go:build linux

package inject

import (
	"fmt"
	"os/exec"
	"strconv"

	"mimic/pkg/events"
)

// Xdotool injects input on X11 by shelling out to xdotool. Each call runs
// one xdotool invocation and reports its exit status, so a pointer target
// outside the current screen bounds surfaces as an error the player's
// on-error policy can handle.
type Xdotool struct{}

// NewXdotool returns an xdotool-backed injector, or an error if the
// binary is not installed.
func NewXdotool() (*Xdotool, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return nil, fmt.Errorf("%w: xdotool not found in PATH", ErrUnavailable)
	}
	return &Xdotool{}, nil
}

func run(args ...string) error {
	out, err := exec.Command("xdotool", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("inject: xdotool %s: %v (%s)", args[0], err, out)
	}
	return nil
}

// MoveMouse moves the pointer to (x, y).
func (*Xdotool) MoveMouse(x, y int) error {
	return run("mousemove", strconv.Itoa(x), strconv.Itoa(y))
}

func xdotoolButton(button events.Button) string {
	switch button {
	case events.ButtonRight:
		return "3"
	case events.ButtonMiddle:
		return "2"
	default:
		return "1"
	}
}

// PressButton moves the pointer to (x, y) and presses button.
func (i *Xdotool) PressButton(button events.Button, x, y int) error {
	if err := i.MoveMouse(x, y); err != nil {
		return err
	}
	return run("mousedown", xdotoolButton(button))
}

// ReleaseButton moves the pointer to (x, y) and releases button.
func (i *Xdotool) ReleaseButton(button events.Button, x, y int) error {
	if err := i.MoveMouse(x, y); err != nil {
		return err
	}
	return run("mouseup", xdotoolButton(button))
}

// Scroll moves the pointer to (x, y) and scrolls by (dx, dy). xdotool has
// no direct scroll, so wheel steps are emitted as button 4/5 (vertical)
// and 6/7 (horizontal) clicks.
func (i *Xdotool) Scroll(dx, dy, x, y int) error {
	if err := i.MoveMouse(x, y); err != nil {
		return err
	}
	if err := clickN(dy, "4", "5"); err != nil {
		return err
	}
	return clickN(dx, "7", "6")
}

func clickN(delta int, positive, negative string) error {
	button := positive
	if delta < 0 {
		button = negative
		delta = -delta
	}
	for i := 0; i < delta; i++ {
		if err := run("click", button); err != nil {
			return err
		}
	}
	return nil
}

// PressKey presses the key with the given identifier.
func (*Xdotool) PressKey(key string) error {
	return run("keydown", xdotoolKey(key))
}

// ReleaseKey releases the key with the given identifier.
func (*Xdotool) ReleaseKey(key string) error {
	return run("keyup", xdotoolKey(key))
}

// xdotoolKey maps interchange key identifiers to X keysym names.
var keysyms = map[string]string{
	"enter":      "Return",
	"escape":     "Escape",
	"backspace":  "BackSpace",
	"tab":        "Tab",
	"space":      "space",
	"shift":      "Shift_L",
	"shift_r":    "Shift_R",
	"ctrl":       "Control_L",
	"ctrl_r":     "Control_R",
	"alt":        "Alt_L",
	"alt_r":      "Alt_R",
	"meta":       "Super_L",
	"caps_lock":  "Caps_Lock",
	"up":         "Up",
	"down":       "Down",
	"left":       "Left",
	"right":      "Right",
	"home":       "Home",
	"end":        "End",
	"page_up":    "Page_Up",
	"page_down":  "Page_Down",
	"insert":     "Insert",
	"delete":     "Delete",
}

func xdotoolKey(key string) string {
	if sym, ok := keysyms[key]; ok {
		return sym
	}
	// Function keys are uppercase keysyms (f1 -> F1).
	if len(key) >= 2 && key[0] == 'f' {
		if _, err := strconv.Atoi(key[1:]); err == nil {
			return "F" + key[1:]
		}
	}
	return key
}

// Close is a no-op.
func (*Xdotool) Close() error { return nil }
