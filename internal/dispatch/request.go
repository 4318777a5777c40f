package dispatch

import (
	"encoding/binary"
	"fmt"
)

// functionRequest is the parsed form of a Function body:
// name_len:u8 | name:name_len bytes | arg_count:u16 BE | (arg_len:u32 BE | arg_bytes) * arg_count.
type functionRequest struct {
	Name string
	Args [][]byte
}

func parseFunctionRequest(body []byte) (*functionRequest, error) {
	r := &reader{buf: body}

	nameLen, err := r.readUint8()
	if err != nil {
		return nil, fmt.Errorf("read name length: %w", err)
	}
	name, err := r.readBytes(int(nameLen))
	if err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}

	argCount, err := r.readUint16()
	if err != nil {
		return nil, fmt.Errorf("read arg count: %w", err)
	}

	args := make([][]byte, 0, argCount)
	for i := uint16(0); i < argCount; i++ {
		argLen, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read arg %d length: %w", i, err)
		}
		arg, err := r.readBytes(int(argLen))
		if err != nil {
			return nil, fmt.Errorf("read arg %d: %w", i, err)
		}
		args = append(args, arg)
	}

	if !r.atEnd() {
		return nil, fmt.Errorf("function body has %d trailing bytes", len(r.buf)-r.pos)
	}

	return &functionRequest{Name: string(name), Args: args}, nil
}

// reader is a small cursor over a byte slice, used to parse the
// length-prefixed Function/Failure/Progress body shapes without pulling in
// a general-purpose binary reader.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) atEnd() bool { return r.pos == len(r.buf) }

func (r *reader) readUint8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("unexpected end of body")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) readUint16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, fmt.Errorf("unexpected end of body")
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("unexpected end of body")
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("unexpected end of body")
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}
