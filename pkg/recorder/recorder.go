// Package recorder turns live capture notifications into an ordered event
// sequence.
//
// A Recorder is a small state machine: idle until Record, recording until
// Stop (with an optional paused state in between), stopped terminally.
// While recording, every notification delivered by the capture source is
// normalized into an event whose offset is the time elapsed since
// recording started, and appended to the in-progress sequence. The
// sequence can be read concurrently at any time; Stop freezes it and
// transfers ownership to the caller.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mimic/internal/clock"
	"mimic/pkg/capture"
	"mimic/pkg/events"
)

// State is the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// InvalidStateError reports a lifecycle call made from the wrong state.
// The recorder remains in its prior state.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("recorder: cannot %s while %s", e.Op, e.State)
}

// CaptureUnavailableError reports that the capture source's subscription
// could not be established. The recorder remains idle.
type CaptureUnavailableError struct {
	Err error
}

func (e *CaptureUnavailableError) Error() string {
	return fmt.Sprintf("recorder: capture unavailable: %v", e.Err)
}

func (e *CaptureUnavailableError) Unwrap() error { return e.Err }

// SourceLostError reports that the capture source failed mid-recording.
// Events appended before the failure remain valid and are still returned.
type SourceLostError struct {
	Err error
}

func (e *SourceLostError) Error() string {
	return fmt.Sprintf("recorder: capture source lost mid-recording: %v", e.Err)
}

func (e *SourceLostError) Unwrap() error { return e.Err }

// Recorder normalizes capture notifications into an event sequence.
type Recorder struct {
	mu        sync.Mutex
	state     State
	source    capture.Source
	seq       *events.Sequence
	start     time.Time
	sourceErr error
	done      chan struct{}

	clk    clock.Clock
	logger *slog.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithClock sets the clock used to stamp the recording start. Tests use a
// fake clock together with a simulated source to script exact offsets.
func WithClock(c clock.Clock) Option {
	return func(r *Recorder) { r.clk = c }
}

// New returns an idle Recorder subscribed to nothing.
func New(source capture.Source, opts ...Option) *Recorder {
	r := &Recorder{
		source: source,
		seq:    events.NewSequence(),
		clk:    clock.NewSystem(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Record establishes the capture subscription and starts recording. It
// fails with *InvalidStateError from any state but idle, and with
// *CaptureUnavailableError (leaving the recorder idle) if the
// subscription cannot be established.
func (r *Recorder) Record(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return &InvalidStateError{Op: "record", State: r.state}
	}

	ch, err := r.source.Subscribe(ctx)
	if err != nil {
		return &CaptureUnavailableError{Err: err}
	}

	r.start = r.clk.Now()
	r.seq = events.NewSequence()
	r.done = make(chan struct{})
	r.state = StateRecording
	r.logger.Info("recording started", "start", r.start)

	go r.consume(ch)
	return nil
}

// consume drains the notification channel until the source closes it.
func (r *Recorder) consume(ch <-chan capture.Notification) {
	defer close(r.done)
	for n := range ch {
		r.handle(n)
	}
	// Channel closed: either a clean Close from Stop, or a backend
	// failure that must not be swallowed. Latch it for Stop/Events.
	if err := r.source.Err(); err != nil {
		r.mu.Lock()
		if r.sourceErr == nil {
			r.sourceErr = err
		}
		r.mu.Unlock()
		r.logger.Error("capture source failed", "error", err)
	}
}

func (r *Recorder) handle(n capture.Notification) {
	r.mu.Lock()
	state := r.state
	start := r.start
	seq := r.seq
	r.mu.Unlock()

	if state != StateRecording {
		// Paused (or already stopping): drop, offsets stay relative to
		// the original start.
		return
	}

	offset := n.At.Sub(start)
	if offset < 0 {
		// Hook queues can deliver notifications stamped just before
		// Record captured the start instant.
		offset = 0
	}
	if last := seq.Duration(); offset < last {
		// Delivery order is the order we honor; clamp timestamp jitter
		// rather than drop input.
		offset = last
	}

	e, err := eventFrom(n, offset)
	if err != nil {
		r.logger.Warn("dropping unusable notification", "kind", n.Kind, "error", err)
		return
	}
	if err := seq.Append(e); err != nil {
		r.logger.Warn("dropping event", "event", e, "error", err)
	}
}

func eventFrom(n capture.Notification, offset time.Duration) (events.Event, error) {
	switch n.Kind {
	case events.KindMouseMove:
		return events.NewMouseMove(offset, n.X, n.Y)
	case events.KindMousePress:
		return events.NewMousePress(offset, n.Button, n.X, n.Y)
	case events.KindMouseRelease:
		return events.NewMouseRelease(offset, n.Button, n.X, n.Y)
	case events.KindMouseScroll:
		return events.NewMouseScroll(offset, n.X, n.Y, n.DX, n.DY)
	case events.KindKeyPress:
		return events.NewKeyPress(offset, n.Key)
	case events.KindKeyRelease:
		return events.NewKeyRelease(offset, n.Key)
	}
	return events.Event{}, &events.InvalidEventError{Kind: n.Kind, Reason: "unrecognized notification kind"}
}

// Pause stops appending without tearing down the subscription.
// Notifications delivered while paused are discarded.
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return &InvalidStateError{Op: "pause", State: r.state}
	}
	r.state = StatePaused
	r.logger.Info("recording paused")
	return nil
}

// Resume continues appending after a Pause.
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused {
		return &InvalidStateError{Op: "resume", State: r.state}
	}
	r.state = StateRecording
	r.logger.Info("recording resumed")
	return nil
}

// Stop tears down the subscription, freezes the sequence, and returns it.
// The returned sequence is read-only; ownership transfers to the caller.
// If the capture source failed mid-recording, Stop returns the events
// gathered before the failure together with a *SourceLostError.
func (r *Recorder) Stop() (*events.Sequence, error) {
	r.mu.Lock()
	if r.state != StateRecording && r.state != StatePaused {
		defer r.mu.Unlock()
		return nil, &InvalidStateError{Op: "stop", State: r.state}
	}
	done := r.done
	r.mu.Unlock()

	if err := r.source.Close(); err != nil {
		r.logger.Warn("closing capture source", "error", err)
	}
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateStopped
	r.seq.Freeze()
	r.logger.Info("recording stopped", "events", r.seq.Len(), "duration", r.seq.Duration())
	if r.sourceErr != nil {
		return r.seq, &SourceLostError{Err: r.sourceErr}
	}
	return r.seq, nil
}

// Events returns the current sequence by reference: in-progress while
// recording, finalized after Stop, empty while idle. Safe to call from
// any state and concurrently with recording. If the capture source
// failed mid-recording, the error is reported here as well.
func (r *Recorder) Events() (*events.Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sourceErr != nil {
		return r.seq, &SourceLostError{Err: r.sourceErr}
	}
	return r.seq, nil
}
