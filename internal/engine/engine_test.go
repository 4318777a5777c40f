package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/dispatch"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/registry"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/valuecodec"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

func echoInvoker(ctx context.Context, args []interface{}, progress registry.ProgressFunc, fail registry.FailureFunc) (interface{}, error) {
	return args[0], nil
}

func newPipeEngine(t *testing.T) (*Engine, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close(); _ = client.Close() })

	reg := registry.New()
	require.NoError(t, reg.Register("echo", []valuecodec.Kind{valuecodec.KindInteger}, valuecodec.KindInteger, registry.CapabilityNone, echoInvoker))
	d := dispatch.New(reg, valuecodec.New(), nil)

	return New(server, d, nil), client
}

func readFrame(t *testing.T, conn net.Conn) wire.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	header, err := wire.ReadHeader(conn)
	require.NoError(t, err)
	body, err := wire.ReadBody(conn, header.Length)
	require.NoError(t, err)
	return wire.Frame{Header: header, Body: body}
}

func writeFrame(t *testing.T, conn net.Conn, action wire.Action, body []byte) {
	t.Helper()
	require.NoError(t, wire.WriteFrame(conn, action, body))
}

func TestEngineRegisterFrame(t *testing.T) {
	e, client := newPipeEngine(t)

	done := make(chan struct{})
	go func() {
		_ = e.Register("abcdefghijklmnopqrstuvwxyz012345")
		close(done)
	}()

	frame := readFrame(t, client)
	<-done

	assert.Equal(t, wire.ActionRegister, frame.Header.Action)
	assert.Equal(t, []byte{0x00, 0x00}, frame.Body[:2])
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz012345", string(frame.Body[2:]))
}

func TestEnginePingPong(t *testing.T) {
	e, client := newPipeEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = e.Run(ctx) }()
	<-e.Ready()

	token := bytes.Repeat([]byte{0x42}, 32)
	writeFrame(t, client, wire.ActionPing, token)

	frame := readFrame(t, client)
	assert.Equal(t, wire.ActionPong, frame.Header.Action)
	assert.Equal(t, token, frame.Body)
}

func encodeFunctionBody(name string, args ...[]byte) []byte {
	body := []byte{byte(len(name))}
	body = append(body, []byte(name)...)
	argCount := make([]byte, 2)
	binary.BigEndian.PutUint16(argCount, uint16(len(args)))
	body = append(body, argCount...)
	for _, arg := range args {
		argLen := make([]byte, 4)
		binary.BigEndian.PutUint32(argLen, uint32(len(arg)))
		body = append(body, argLen...)
		body = append(body, arg...)
	}
	return body
}

func TestEngineFunctionDispatch(t *testing.T) {
	e, client := newPipeEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = e.Run(ctx) }()
	<-e.Ready()

	codec := valuecodec.New()
	arg, err := codec.Encode(valuecodec.KindInteger, int64(7))
	require.NoError(t, err)

	body := encodeFunctionBody("echo", arg)

	writeFrame(t, client, wire.ActionFunction, body)

	frame := readFrame(t, client)
	assert.Equal(t, wire.ActionResult, frame.Header.Action)

	decoded, err := codec.Decode(valuecodec.KindInteger, frame.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(7), decoded)
}

func TestEnginePingWrongLengthIsFatal(t *testing.T) {
	e, client := newPipeEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()
	<-e.Ready()

	writeFrame(t, client, wire.ActionPing, []byte{0x01, 0x02})

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, wire.ErrProtocolViolation)
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return a protocol violation error")
	}
}

func TestEngineInboundServerOnlyActionIsFatal(t *testing.T) {
	e, client := newPipeEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()
	<-e.Ready()

	writeFrame(t, client, wire.ActionResult, []byte{0x01})

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, wire.ErrProtocolViolation)
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return a protocol violation error")
	}
}

func TestEngineSecondFunctionWhileInFlightIsFatal(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slowInvoker := func(ctx context.Context, args []interface{}, progress registry.ProgressFunc, fail registry.FailureFunc) (interface{}, error) {
		close(started)
		<-release
		return args[0], nil
	}

	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close(); _ = client.Close() })

	reg := registry.New()
	require.NoError(t, reg.Register("slow", []valuecodec.Kind{valuecodec.KindInteger}, valuecodec.KindInteger, registry.CapabilityNone, slowInvoker))
	d := dispatch.New(reg, valuecodec.New(), nil)
	e := New(server, d, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()
	<-e.Ready()

	codec := valuecodec.New()
	arg, err := codec.Encode(valuecodec.KindInteger, int64(1))
	require.NoError(t, err)
	body := encodeFunctionBody("slow", arg)

	writeFrame(t, client, wire.ActionFunction, body)
	<-started

	writeFrame(t, client, wire.ActionFunction, body)

	frame := readFrame(t, client)
	assert.Equal(t, wire.ActionFailure, frame.Header.Action)

	// Drain the first invocation's eventual Result frame so releasing it
	// below can't block the server goroutine on the unbuffered pipe.
	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := client.Read(buf); err != nil {
				return
			}
		}
	}()
	close(release)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, wire.ErrProtocolViolation)
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return a protocol violation error")
	}
}

func TestLoadEndpointValidatesPIDLength(t *testing.T) {
	t.Setenv("THINKNODE_HOST", "localhost")
	t.Setenv("THINKNODE_PORT", "9999")
	t.Setenv("THINKNODE_PID", "too-short")

	_, err := LoadEndpoint()
	assert.ErrorIs(t, err, ErrEnvInvalid)
}

func TestLoadEndpointRequiresAllVars(t *testing.T) {
	t.Setenv("THINKNODE_HOST", "")
	t.Setenv("THINKNODE_PORT", "")
	t.Setenv("THINKNODE_PID", "")

	_, err := LoadEndpoint()
	assert.ErrorIs(t, err, ErrEnvMissing)
}

func TestLoadEndpointSuccess(t *testing.T) {
	t.Setenv("THINKNODE_HOST", "127.0.0.1")
	t.Setenv("THINKNODE_PORT", "4000")
	t.Setenv("THINKNODE_PID", "abcdefghijklmnopqrstuvwxyz012345")

	ep, err := LoadEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", ep.Address())
}
