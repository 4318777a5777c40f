package valuecodec

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// TimestampExtID is the MessagePack extension type byte the protocol
// reserves for timestamps.
const TimestampExtID = 1

// Timestamp is a millisecond-resolution instant relative to the UNIX epoch.
// It implements encoding.BinaryMarshaler/BinaryUnmarshaler so the codec can
// register it as a MessagePack extension type; msgpack wraps whatever bytes
// MarshalBinary returns in the standard ext header (fixext1/2/4/8 or ext8),
// so the only thing this type owns is choosing and parsing the big-endian
// variable-width integer body.
type Timestamp struct {
	UnixMilli int64
}

// NewTimestamp truncates t to millisecond resolution.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{UnixMilli: t.UnixMilli()}
}

// Time returns the UTC time.Time equivalent to the timestamp.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(t.UnixMilli).UTC()
}

// MarshalBinary encodes UnixMilli as a big-endian two's-complement integer
// using the smallest of {1, 2, 4, 8} bytes that can represent the value.
func (t Timestamp) MarshalBinary() ([]byte, error) {
	switch width(t.UnixMilli) {
	case 1:
		return []byte{byte(int8(t.UnixMilli))}, nil
	case 2:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(int16(t.UnixMilli)))
		return buf, nil
	case 4:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(int32(t.UnixMilli)))
		return buf, nil
	default:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(t.UnixMilli))
		return buf, nil
	}
}

// UnmarshalBinary decodes a big-endian two's-complement integer of width 1,
// 2, 4, or 8 bytes, sign-extending to int64.
func (t *Timestamp) UnmarshalBinary(data []byte) error {
	switch len(data) {
	case 1:
		t.UnixMilli = int64(int8(data[0]))
	case 2:
		t.UnixMilli = int64(int16(binary.BigEndian.Uint16(data)))
	case 4:
		t.UnixMilli = int64(int32(binary.BigEndian.Uint32(data)))
	case 8:
		t.UnixMilli = int64(binary.BigEndian.Uint64(data))
	default:
		return fmt.Errorf("valuecodec: timestamp extension body has unsupported width %d", len(data))
	}
	return nil
}

// width returns the smallest of {1, 2, 4, 8} byte widths that can represent
// v as a signed two's-complement integer.
func width(v int64) int {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return 1
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return 2
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return 4
	default:
		return 8
	}
}
