package wire

import "encoding/binary"

// ProtocolVersion is the only version this runtime speaks, on send and on
// receive.
const ProtocolVersion uint8 = 1

// HeaderSize is the fixed byte length of a frame header.
const HeaderSize = 8

// Header is the 8-byte, big-endian-where-multi-byte preamble of every
// frame: version:u8 | reserved:u8(=0) | action:u8 | reserved:u8(=0) |
// length:u32.
type Header struct {
	Version uint8
	Action  Action
	Length  uint32
}

// Encode writes h into a fixed 8-byte array. It fails with
// ErrUnsupportedVersion when h.Version is not ProtocolVersion; reserved
// bytes are always written as zero.
func (h Header) Encode() ([HeaderSize]byte, error) {
	var buf [HeaderSize]byte
	if h.Version != ProtocolVersion {
		return buf, ErrUnsupportedVersion
	}

	buf[0] = h.Version
	buf[1] = 0
	buf[2] = EncodeAction(h.Action)
	buf[3] = 0
	binary.BigEndian.PutUint32(buf[4:8], h.Length)
	return buf, nil
}

// DecodeHeader parses an 8-byte header. Reserved bytes are don't-care on
// input. It fails with ErrUnsupportedVersion or ErrUnknownAction before
// ever inspecting the length field, so a malformed header never causes a
// spurious body read.
func DecodeHeader(buf [HeaderSize]byte) (Header, error) {
	if buf[0] != ProtocolVersion {
		return Header{}, ErrUnsupportedVersion
	}

	action, err := DecodeAction(buf[2])
	if err != nil {
		return Header{}, err
	}

	return Header{
		Version: buf[0],
		Action:  action,
		Length:  binary.BigEndian.Uint32(buf[4:8]),
	}, nil
}
