package dispatch

import (
	"encoding/binary"
	"math"
)

const (
	maxCodeLen    = 255
	maxMessageLen = 65535
)

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// encodeProgressBody renders fraction:f32 BE | message_len:u16 BE | message.
func encodeProgressBody(fraction float32, message string) []byte {
	message = truncate(message, maxMessageLen)

	buf := make([]byte, 4+2+len(message))
	binary.BigEndian.PutUint32(buf[0:4], math.Float32bits(fraction))
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(message)))
	copy(buf[6:], message)
	return buf
}

// encodeFailureBody renders code_len:u8 | code | message_len:u16 BE | message.
func encodeFailureBody(code, message string) []byte {
	code = truncate(code, maxCodeLen)
	message = truncate(message, maxMessageLen)

	buf := make([]byte, 1+len(code)+2+len(message))
	buf[0] = byte(len(code))
	copy(buf[1:], code)
	offset := 1 + len(code)
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(message)))
	copy(buf[offset+2:], message)
	return buf
}
