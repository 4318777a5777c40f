package valuecodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() map[string]interface{} {
	return map[string]interface{}{
		"id":   int64(42),
		"name": "widget",
	}
}

func TestCodecScalarRoundTrip(t *testing.T) {
	c := New()

	cases := []struct {
		kind  Kind
		value interface{}
	}{
		{KindInteger, int64(-7)},
		{KindFloat, float64(3.5)},
		{KindBoolean, true},
		{KindString, "hello"},
		{KindBytes, []byte{0x01, 0x02, 0x03}},
	}

	for _, tc := range cases {
		data, err := c.Encode(tc.kind, tc.value)
		require.NoError(t, err)

		decoded, err := c.Decode(tc.kind, data)
		require.NoError(t, err)
		assert.Equal(t, tc.value, decoded)
	}
}

func TestCodecRecordRoundTrip(t *testing.T) {
	c := New()
	rec := validRecord()

	data, err := c.Encode(KindRecord, rec)
	require.NoError(t, err)

	decoded, err := c.Decode(KindRecord, data)
	require.NoError(t, err)

	out, ok := decoded.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, rec["id"], out["id"])
	assert.Equal(t, rec["name"], out["name"])
}

func TestCodecArrayRoundTrip(t *testing.T) {
	c := New()
	arr := []interface{}{int64(1), "two", true}

	data, err := c.Encode(KindArray, arr)
	require.NoError(t, err)

	decoded, err := c.Decode(KindArray, data)
	require.NoError(t, err)
	assert.Equal(t, arr, decoded)
}

func TestCodecTypeMismatchOnEncode(t *testing.T) {
	c := New()
	_, err := c.Encode(KindInteger, "not an integer")

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindTypeMismatch, decErr.Kind)
}

func TestCodecTypeMismatchOnDecode(t *testing.T) {
	c := New()
	data, err := c.Encode(KindString, "text")
	require.NoError(t, err)

	_, err = c.Decode(KindInteger, data)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindTypeMismatch, decErr.Kind)
}

func TestCodecUnsupportedKind(t *testing.T) {
	c := New()
	_, err := c.Decode(Kind(99), []byte{0x00})

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindUnsupportedKind, decErr.Kind)
}

func TestTimestampRoundTripsAcrossWidths(t *testing.T) {
	c := New()

	millis := []int64{
		0, 1, -1, 127, -128, 128, -129, 32767, -32768, 32768,
		2147483647, -2147483648, 2147483648,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
	}

	for _, m := range millis {
		ts := Timestamp{UnixMilli: m}
		data, err := c.Encode(KindTimestamp, ts)
		require.NoError(t, err)

		decoded, err := c.Decode(KindTimestamp, data)
		require.NoError(t, err)

		out, ok := decoded.(Timestamp)
		require.True(t, ok)
		assert.Equal(t, m, out.UnixMilli)
	}
}

func TestTimestampChoosesSmallestWidth(t *testing.T) {
	cases := []struct {
		millis int64
		width  int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{32767, 2},
		{32768, 4},
		{2147483647, 4},
		{2147483648, 8},
	}

	for _, tc := range cases {
		body, err := Timestamp{UnixMilli: tc.millis}.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, body, tc.width)
	}
}

func TestTimestampHelpers(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	ts := NewTimestamp(now)
	assert.Equal(t, now.UnixMilli(), ts.UnixMilli)
	assert.True(t, ts.Time().Equal(now))
}
