package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFunctionRequestRoundTrip(t *testing.T) {
	body := encodeFunctionBody(t, "add", [][]byte{{0x01}, {0x02, 0x03}})

	req, err := parseFunctionRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "add", req.Name)
	require.Len(t, req.Args, 2)
	assert.Equal(t, []byte{0x01}, req.Args[0])
	assert.Equal(t, []byte{0x02, 0x03}, req.Args[1])
}

func TestParseFunctionRequestZeroArgs(t *testing.T) {
	body := encodeFunctionBody(t, "ping", nil)

	req, err := parseFunctionRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Name)
	assert.Empty(t, req.Args)
}

func TestParseFunctionRequestTruncatedName(t *testing.T) {
	body := []byte{0x05, 0x61, 0x62}
	_, err := parseFunctionRequest(body)
	assert.Error(t, err)
}

func TestParseFunctionRequestTrailingBytes(t *testing.T) {
	body := append(encodeFunctionBody(t, "add", nil), 0xFF)
	_, err := parseFunctionRequest(body)
	assert.Error(t, err)
}

func TestEncodeFailureBodyTruncates(t *testing.T) {
	longCode := strings.Repeat("x", 300)
	longMessage := strings.Repeat("y", 70000)

	body := encodeFailureBody(longCode, longMessage)
	code, message := decodeFailureBody(t, body)
	assert.Len(t, code, maxCodeLen)
	assert.Len(t, message, maxMessageLen)
}

func TestEncodeProgressBodyShape(t *testing.T) {
	body := encodeProgressBody(0.5, "halfway")
	require.Len(t, body, 4+2+len("halfway"))
}
