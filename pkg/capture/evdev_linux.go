//go:build linux

package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"mimic/pkg/events"
)

// Evdev is a Linux capture source reading /dev/input/event* devices
// directly. It needs read access to the devices (membership in the
// 'input' group, or root). Pointer position is tracked from relative
// motion starting at (0, 0); callers that need absolute coordinates from
// the first event should move the pointer to a known corner before
// recording.
type Evdev struct {
	mu         sync.Mutex
	subscribed bool
	err        error
	ch         chan Notification
	files      []*os.File
	done       chan struct{}

	x, y int
}

// NewEvdev returns an evdev-backed capture source.
func NewEvdev() *Evdev {
	return &Evdev{}
}

// Available reports whether any input device can be opened for reading.
func (e *Evdev) Available() (bool, string) {
	devices, err := findInputDevices()
	if err != nil {
		return false, fmt.Sprintf("cannot enumerate input devices: %v", err)
	}
	if len(devices) == 0 {
		return false, "no keyboard or mouse devices found"
	}
	for _, dev := range devices {
		f, err := os.OpenFile(dev, os.O_RDONLY, 0)
		if err == nil {
			f.Close()
			return true, fmt.Sprintf("found input device: %s", dev)
		}
	}
	return false, "cannot read input devices (need 'input' group membership or root)"
}

// Subscribe opens the input devices and starts the read loops.
func (e *Evdev) Subscribe(ctx context.Context) (<-chan Notification, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subscribed {
		return nil, ErrAlreadySubscribed
	}

	devices, err := findInputDevices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var files []*os.File
	for _, dev := range devices {
		f, err := os.OpenFile(dev, os.O_RDONLY, 0)
		if err != nil {
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no readable devices (need 'input' group membership or root)", ErrUnavailable)
	}

	e.files = files
	e.ch = make(chan Notification, 256)
	e.done = make(chan struct{})
	e.subscribed = true
	e.err = nil

	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(f *os.File) {
			defer wg.Done()
			e.readLoop(ctx, f)
		}(f)
	}
	go func() {
		wg.Wait()
		e.mu.Lock()
		if e.subscribed {
			close(e.ch)
			e.subscribed = false
		}
		e.mu.Unlock()
	}()

	return e.ch, nil
}

// Close stops the read loops and closes the devices.
func (e *Evdev) Close() error {
	e.mu.Lock()
	files := e.files
	e.files = nil
	e.mu.Unlock()
	for _, f := range files {
		f.Close()
	}
	return nil
}

// Err returns the error that terminated delivery, if any.
func (e *Evdev) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// inputEvent matches the kernel's struct input_event on 64-bit platforms.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Event type and code constants from <linux/input-event-codes.h>.
const (
	evKey = 0x01
	evRel = 0x02

	relX      = 0x00
	relY      = 0x01
	relWheel  = 0x08
	relHWheel = 0x06

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

func (e *Evdev) readLoop(ctx context.Context, f *os.File) {
	const eventSize = int(unsafe.Sizeof(inputEvent{}))
	buf := make([]byte, eventSize*64)

	for {
		if ctx.Err() != nil {
			return
		}
		n, err := f.Read(buf)
		if err != nil {
			// Close() closing the fd lands here; anything else is a
			// backend failure to surface on the next recorder call.
			e.mu.Lock()
			if e.subscribed && e.err == nil && !isClosedFile(err) {
				e.err = fmt.Errorf("capture: read %s: %w", f.Name(), err)
			}
			e.mu.Unlock()
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			var ev inputEvent
			ev.Sec = int64(binary.LittleEndian.Uint64(buf[off:]))
			ev.Usec = int64(binary.LittleEndian.Uint64(buf[off+8:]))
			ev.Type = binary.LittleEndian.Uint16(buf[off+16:])
			ev.Code = binary.LittleEndian.Uint16(buf[off+18:])
			ev.Value = int32(binary.LittleEndian.Uint32(buf[off+20:]))
			e.handle(ev)
		}
	}
}

func isClosedFile(err error) bool {
	return strings.Contains(err.Error(), "file already closed") ||
		strings.Contains(err.Error(), unix.EBADF.Error())
}

func (e *Evdev) handle(ev inputEvent) {
	at := time.Unix(ev.Sec, ev.Usec*1000)

	var n Notification
	switch ev.Type {
	case evRel:
		e.mu.Lock()
		switch ev.Code {
		case relX:
			e.x += int(ev.Value)
		case relY:
			e.y += int(ev.Value)
		case relWheel:
			n = Notification{Kind: events.KindMouseScroll, X: e.x, Y: e.y, DY: int(ev.Value), At: at}
		case relHWheel:
			n = Notification{Kind: events.KindMouseScroll, X: e.x, Y: e.y, DX: int(ev.Value), At: at}
		}
		if ev.Code == relX || ev.Code == relY {
			n = Notification{Kind: events.KindMouseMove, X: e.x, Y: e.y, At: at}
		}
		e.mu.Unlock()

	case evKey:
		// Value: 1 = press, 0 = release, 2 = autorepeat (dropped).
		if ev.Value != 0 && ev.Value != 1 {
			return
		}
		press := ev.Value == 1
		if button, ok := evdevButton(ev.Code); ok {
			e.mu.Lock()
			x, y := e.x, e.y
			e.mu.Unlock()
			kind := events.KindMouseRelease
			if press {
				kind = events.KindMousePress
			}
			n = Notification{Kind: kind, X: x, Y: y, Button: button, At: at}
		} else {
			kind := events.KindKeyRelease
			if press {
				kind = events.KindKeyPress
			}
			n = Notification{Kind: kind, Key: evdevKeyName(ev.Code), At: at}
		}

	default:
		return
	}
	if n.Kind == "" {
		return
	}

	e.mu.Lock()
	ch := e.ch
	subscribed := e.subscribed
	e.mu.Unlock()
	if !subscribed {
		return
	}
	select {
	case ch <- n:
	default:
		// Subscriber is not keeping up; dropping beats blocking the
		// device read loop.
	}
}

func evdevButton(code uint16) (events.Button, bool) {
	switch code {
	case btnLeft:
		return events.ButtonLeft, true
	case btnRight:
		return events.ButtonRight, true
	case btnMiddle:
		return events.ButtonMiddle, true
	}
	return "", false
}

// findInputDevices parses /proc/bus/input/devices for keyboards and mice.
func findInputDevices() ([]string, error) {
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var devices []string
	scanner := bufio.NewScanner(f)
	var handler string
	var wanted bool

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "H: Handlers=") {
			for _, part := range strings.Fields(line) {
				if strings.HasPrefix(part, "event") {
					handler = "/dev/input/" + part
				}
			}
			// kbd and mouse handlers mark the devices we care about.
			if strings.Contains(line, "kbd") || strings.Contains(line, "mouse") {
				wanted = true
			}
		}

		if line == "" {
			if wanted && handler != "" {
				devices = append(devices, handler)
			}
			handler = ""
			wanted = false
		}
	}
	if wanted && handler != "" {
		devices = append(devices, handler)
	}
	return devices, scanner.Err()
}
