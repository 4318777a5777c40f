package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionBijection(t *testing.T) {
	for b := 0; b <= 6; b++ {
		a, err := DecodeAction(byte(b))
		require.NoError(t, err)
		assert.Equal(t, byte(b), EncodeAction(a))
	}

	for _, b := range []byte{7, 8, 200, 255} {
		_, err := DecodeAction(b)
		assert.ErrorIs(t, err, ErrUnknownAction)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Version: ProtocolVersion, Action: ActionFunction, Length: 0x22}

	buf, err := h.Encode()
	require.NoError(t, err)
	assert.Equal(t, byte(1), buf[0])
	assert.Equal(t, byte(0), buf[1])
	assert.Equal(t, byte(1), buf[2])
	assert.Equal(t, byte(0), buf[3])
	assert.Equal(t, uint32(0x22), binary.BigEndian.Uint32(buf[4:8]))

	decoded, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestHeaderEncodeRejectsBadVersion(t *testing.T) {
	_, err := Header{Version: 2, Action: ActionPing}.Encode()
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeHeaderRejectsBadVersion(t *testing.T) {
	var buf [HeaderSize]byte
	buf[0] = 9
	_, err := DecodeHeader(buf)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFrameRoundTrip(t *testing.T) {
	body := []byte{0x05}
	f := NewFrame(ActionResult, body)

	encoded, err := f.Encode()
	require.NoError(t, err)

	decoded, n, err := DecodeFrame(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Equal(t, f, decoded)
}

func TestRegistrationFrameBytes(t *testing.T) {
	pid := "abcdefghijklmnopqrstuvwxyz012345"
	require.Len(t, pid, 32)

	body := append([]byte{0x00, 0x00}, []byte(pid)...)
	require.Len(t, body, 34)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, ActionRegister, body))

	out := buf.Bytes()
	require.Len(t, out, HeaderSize+34)
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x22}, out[:8])
	assert.Equal(t, body, out[8:])
}

func TestPingPongBytes(t *testing.T) {
	token := bytes.Repeat([]byte{0x58}, 32)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, ActionPing, token))

	header, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, ActionPing, header.Action)
	assert.EqualValues(t, 32, header.Length)

	body, err := ReadBody(&buf, header.Length)
	require.NoError(t, err)
	assert.Equal(t, token, body)
}

func TestReadBodyTruncated(t *testing.T) {
	r := bytes.NewReader([]byte{0x01, 0x02})
	_, err := ReadBody(r, 10)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadHeaderCleanEOFBetweenMessages(t *testing.T) {
	r := bytes.NewReader(nil)
	_, err := ReadHeader(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadHeaderTruncatedMidHeader(t *testing.T) {
	r := bytes.NewReader([]byte{0x01, 0x00, 0x05})
	_, err := ReadHeader(r)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeFrameShortBuffer(t *testing.T) {
	_, _, err := DecodeFrame([]byte{0x01, 0x00})
	assert.ErrorIs(t, err, ErrTruncated)
}
