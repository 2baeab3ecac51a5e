package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// The interchange format is a JSON array of event objects:
//
//	[
//	  {"kind": "mouse-move", "timestamp_offset": 0.0, "payload": {"x": 100, "y": 200}},
//	  {"kind": "key-press", "timestamp_offset": 0.5, "payload": {"key": "a"}}
//	]
//
// timestamp_offset is seconds since the start of recording. The payload
// shape is keyed by kind. Round-trip stability is a hard requirement:
// decoding what Marshal produced yields an equal sequence regardless of
// field order or number formatting in the text.

type wireEvent struct {
	Kind            string          `json:"kind"`
	TimestampOffset float64         `json:"timestamp_offset"`
	Payload         json.RawMessage `json:"payload"`
}

type wireMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type wireButton struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button"`
}

type wireScroll struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	DX int `json:"dx"`
	DY int `json:"dy"`
}

type wireKey struct {
	Key string `json:"key"`
}

// Marshal serializes the sequence to the JSON interchange format.
func (s *Sequence) Marshal() ([]byte, error) {
	evs := s.Events()
	out := make([]wireEvent, 0, len(evs))
	for i, e := range evs {
		var payload any
		switch e.Kind() {
		case KindMouseMove:
			payload = wireMove{X: e.mouse.X, Y: e.mouse.Y}
		case KindMousePress, KindMouseRelease:
			payload = wireButton{X: e.mouse.X, Y: e.mouse.Y, Button: string(e.mouse.Button)}
		case KindMouseScroll:
			payload = wireScroll{X: e.mouse.X, Y: e.mouse.Y, DX: e.mouse.DX, DY: e.mouse.DY}
		case KindKeyPress, KindKeyRelease:
			payload = wireKey{Key: e.key.Key}
		default:
			return nil, fmt.Errorf("events: marshal: unrecognized kind %q at index %d", e.Kind(), i)
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("events: marshal payload at index %d: %w", i, err)
		}
		out = append(out, wireEvent{
			Kind:            string(e.Kind()),
			TimestampOffset: e.Offset().Seconds(),
			Payload:         raw,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// Unmarshal parses the JSON interchange format into a new sequence. It
// fails with *MalformedDataError on structurally invalid input: missing
// required fields, wrong types, unrecognized kinds or buttons, and
// non-monotonic timestamps. Error messages carry the index and field of
// the offending event.
func Unmarshal(data []byte) (*Sequence, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &MalformedDataError{Index: -1, Reason: fmt.Sprintf("not a JSON array of events: %v", err)}
	}

	s := NewSequence()
	for i, raw := range raws {
		e, err := decodeEvent(i, raw)
		if err != nil {
			return nil, err
		}
		if err := s.Append(e); err != nil {
			return nil, &MalformedDataError{
				Index:  i,
				Field:  "timestamp_offset",
				Reason: fmt.Sprintf("non-monotonic timestamp: %v", err),
			}
		}
	}
	return s, nil
}

func decodeEvent(i int, raw json.RawMessage) (Event, error) {
	var we struct {
		Kind            *string         `json:"kind"`
		TimestampOffset *float64        `json:"timestamp_offset"`
		Payload         json.RawMessage `json:"payload"`
	}
	if err := strictUnmarshal(raw, &we); err != nil {
		return Event{}, &MalformedDataError{Index: i, Reason: err.Error()}
	}
	if we.Kind == nil {
		return Event{}, &MalformedDataError{Index: i, Field: "kind", Reason: "missing required field"}
	}
	kind := Kind(*we.Kind)
	if !kind.Valid() {
		return Event{}, &MalformedDataError{Index: i, Field: "kind", Reason: fmt.Sprintf("unrecognized kind %q", *we.Kind)}
	}
	if we.TimestampOffset == nil {
		return Event{}, &MalformedDataError{Index: i, Field: "timestamp_offset", Reason: "missing required field"}
	}
	sec := *we.TimestampOffset
	if sec < 0 {
		return Event{}, &MalformedDataError{Index: i, Field: "timestamp_offset", Reason: fmt.Sprintf("negative offset %v", sec)}
	}
	offset := time.Duration(math.Round(sec * float64(time.Second)))
	if len(we.Payload) == 0 {
		return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "missing required field"}
	}

	var (
		e   Event
		err error
	)
	switch kind {
	case KindMouseMove:
		var p struct {
			X *int `json:"x"`
			Y *int `json:"y"`
		}
		if uerr := strictUnmarshal(we.Payload, &p); uerr != nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: uerr.Error()}
		}
		if p.X == nil || p.Y == nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "mouse event missing x/y position"}
		}
		e, err = NewMouseMove(offset, *p.X, *p.Y)

	case KindMousePress, KindMouseRelease:
		var p struct {
			X      *int    `json:"x"`
			Y      *int    `json:"y"`
			Button *string `json:"button"`
		}
		if uerr := strictUnmarshal(we.Payload, &p); uerr != nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: uerr.Error()}
		}
		if p.X == nil || p.Y == nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "mouse event missing x/y position"}
		}
		if p.Button == nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "button event missing button"}
		}
		if kind == KindMousePress {
			e, err = NewMousePress(offset, Button(*p.Button), *p.X, *p.Y)
		} else {
			e, err = NewMouseRelease(offset, Button(*p.Button), *p.X, *p.Y)
		}

	case KindMouseScroll:
		var p struct {
			X  *int `json:"x"`
			Y  *int `json:"y"`
			DX *int `json:"dx"`
			DY *int `json:"dy"`
		}
		if uerr := strictUnmarshal(we.Payload, &p); uerr != nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: uerr.Error()}
		}
		if p.X == nil || p.Y == nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "mouse event missing x/y position"}
		}
		if p.DX == nil || p.DY == nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "scroll event missing dx/dy delta"}
		}
		e, err = NewMouseScroll(offset, *p.X, *p.Y, *p.DX, *p.DY)

	case KindKeyPress, KindKeyRelease:
		var p struct {
			Key *string `json:"key"`
		}
		if uerr := strictUnmarshal(we.Payload, &p); uerr != nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: uerr.Error()}
		}
		if p.Key == nil {
			return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: "key event missing key"}
		}
		if kind == KindKeyPress {
			e, err = NewKeyPress(offset, *p.Key)
		} else {
			e, err = NewKeyRelease(offset, *p.Key)
		}
	}
	if err != nil {
		return Event{}, &MalformedDataError{Index: i, Field: "payload", Reason: err.Error()}
	}
	return e, nil
}

// strictUnmarshal decodes JSON rejecting unknown fields, so a key event
// carrying x/y coordinates (or any other kind/payload mismatch) is caught
// at deserialization time.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// Save writes the serialized sequence to path.
func (s *Sequence) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("events: save %s: %w", path, err)
	}
	return nil
}

// Load reads and parses a serialized sequence from path.
func Load(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("events: load %s: %w", path, err)
	}
	return Unmarshal(data)
}
