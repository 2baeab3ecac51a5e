package events

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSequence(t *testing.T) *Sequence {
	t.Helper()
	s := NewSequence()

	e, err := NewMouseMove(0, 100, 200)
	require.NoError(t, err)
	require.NoError(t, s.Append(e))

	e, err = NewMousePress(250*time.Millisecond, ButtonLeft, 100, 200)
	require.NoError(t, err)
	require.NoError(t, s.Append(e))

	e, err = NewMouseRelease(300*time.Millisecond, ButtonLeft, 100, 200)
	require.NoError(t, err)
	require.NoError(t, s.Append(e))

	e, err = NewMouseScroll(450*time.Millisecond, 100, 200, 0, -2)
	require.NoError(t, err)
	require.NoError(t, s.Append(e))

	e, err = NewKeyPress(500*time.Millisecond, "a")
	require.NoError(t, err)
	require.NoError(t, s.Append(e))

	e, err = NewKeyRelease(987654321*time.Nanosecond, "a")
	require.NoError(t, err)
	require.NoError(t, s.Append(e))

	return s
}

func TestRoundTrip(t *testing.T) {
	s := fullSequence(t)

	data, err := s.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, s.Equal(got), "deserialize(serialize(s)) must equal s")
}

func TestRoundTripEmpty(t *testing.T) {
	data, err := NewSequence().Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestUnmarshalFieldOrderIndependent(t *testing.T) {
	// Same event with fields shuffled and extra whitespace must decode
	// to the same value Marshal would produce.
	text := `[
	  {"payload": {"y": 200, "x": 100}, "timestamp_offset": 0, "kind": "mouse-move"},
	  {"kind": "key-press", "payload": {"key": "a"}, "timestamp_offset": 0.5}
	]`
	got, err := Unmarshal([]byte(text))
	require.NoError(t, err)

	want := NewSequence()
	e, err := NewMouseMove(0, 100, 200)
	require.NoError(t, err)
	require.NoError(t, want.Append(e))
	e, err = NewKeyPress(500*time.Millisecond, "a")
	require.NoError(t, err)
	require.NoError(t, want.Append(e))

	assert.True(t, want.Equal(got))
}

func TestUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
	}{
		{
			name:  "missing kind",
			text:  `[{"timestamp_offset": 0, "payload": {"x": 1, "y": 2}}]`,
			field: "kind",
		},
		{
			name:  "unrecognized kind",
			text:  `[{"kind": "mouse-teleport", "timestamp_offset": 0, "payload": {"x": 1, "y": 2}}]`,
			field: "kind",
		},
		{
			name:  "missing timestamp",
			text:  `[{"kind": "mouse-move", "payload": {"x": 1, "y": 2}}]`,
			field: "timestamp_offset",
		},
		{
			name:  "negative timestamp",
			text:  `[{"kind": "mouse-move", "timestamp_offset": -1, "payload": {"x": 1, "y": 2}}]`,
			field: "timestamp_offset",
		},
		{
			name:  "missing payload",
			text:  `[{"kind": "mouse-move", "timestamp_offset": 0}]`,
			field: "payload",
		},
		{
			name:  "mouse event missing position",
			text:  `[{"kind": "mouse-move", "timestamp_offset": 0, "payload": {"x": 1}}]`,
			field: "payload",
		},
		{
			name:  "key event with mouse fields",
			text:  `[{"kind": "key-press", "timestamp_offset": 0, "payload": {"key": "a", "x": 1, "y": 2}}]`,
			field: "payload",
		},
		{
			name:  "wrong payload type",
			text:  `[{"kind": "key-press", "timestamp_offset": 0, "payload": {"key": 7}}]`,
			field: "payload",
		},
		{
			name:  "unknown button",
			text:  `[{"kind": "mouse-press", "timestamp_offset": 0, "payload": {"x": 1, "y": 2, "button": "side"}}]`,
			field: "payload",
		},
		{
			name: "non-monotonic timestamps",
			text: `[
			  {"kind": "mouse-move", "timestamp_offset": 1.0, "payload": {"x": 1, "y": 2}},
			  {"kind": "mouse-move", "timestamp_offset": 0.5, "payload": {"x": 3, "y": 4}}
			]`,
			field: "timestamp_offset",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tc.text))
			var mdErr *MalformedDataError
			require.ErrorAs(t, err, &mdErr, "want MalformedDataError, got %v", err)
			assert.Equal(t, tc.field, mdErr.Field)
			assert.GreaterOrEqual(t, mdErr.Index, 0)
		})
	}
}

func TestUnmarshalNotAnArray(t *testing.T) {
	_, err := Unmarshal([]byte(`{"kind": "mouse-move"}`))
	var mdErr *MalformedDataError
	require.ErrorAs(t, err, &mdErr)
	assert.Equal(t, -1, mdErr.Index)
}

func TestSaveLoad(t *testing.T) {
	s := fullSequence(t)
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, s.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.Equal(got))
}

func TestValidateLog(t *testing.T) {
	s := fullSequence(t)
	data, err := s.Marshal()
	require.NoError(t, err)
	require.NoError(t, ValidateLog(data))

	err = ValidateLog([]byte(`[{"timestamp_offset": 0, "payload": {}}]`))
	var mdErr *MalformedDataError
	require.ErrorAs(t, err, &mdErr)

	err = ValidateLog([]byte(`not json`))
	require.ErrorAs(t, err, &mdErr)
}
