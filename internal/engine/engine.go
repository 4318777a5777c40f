// Package engine owns the TCP connection to the calculation supervisor:
// the serialized writer, the receive loop, and routing of inbound frames
// to the dispatcher or the ping handler. Grounded on the teacher's
// connection-framing helpers (internal/adapter/nfs/connection.go) for the
// read-loop shape, adapted from RPC record-marking to this protocol's
// fixed 8-byte header.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/dispatch"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/logger"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

// Metrics is the subset of metrics.ProviderMetrics the engine needs.
// Declared locally, same nil-disables convention as dispatch.Metrics.
type Metrics interface {
	RecordFrameSent(action wire.Action)
	RecordFrameReceived(action wire.Action)
	SetConnected(connected bool)
}

// Engine owns one connection's lifecycle: registration, the receive loop,
// and the serialized writer shared by the loop, dispatch workers, and
// progress/failure reporters.
type Engine struct {
	conn       net.Conn
	writeMu    sync.Mutex
	dispatcher *dispatch.Dispatcher
	metrics    Metrics

	inFlight atomic.Bool
	wg       sync.WaitGroup

	// ready is closed, exactly once via readyOnce, when the receive loop has
	// started, for the admin surface's /readyz check (testable property 8).
	readyOnce sync.Once
	ready     chan struct{}
}

// New builds an Engine around an already-connected conn. metrics may be
// nil.
func New(conn net.Conn, dispatcher *dispatch.Dispatcher, metrics Metrics) *Engine {
	return &Engine{
		conn:       conn,
		dispatcher: dispatcher,
		metrics:    metrics,
		ready:      make(chan struct{}),
	}
}

// WriteFrame serializes one frame to the connection. It implements
// dispatch.Writer.
func (e *Engine) WriteFrame(action wire.Action, body []byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := wire.WriteFrame(e.conn, action, body); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.RecordFrameSent(action)
	}
	return nil
}

// Ready returns a channel that is closed once the receive loop has started
// accepting frames.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Register sends the one Register frame the protocol requires at
// connection start: body = 0x00 0x00 || pid (as sent, no padding).
func (e *Engine) Register(pid string) error {
	body := append([]byte{0x00, 0x00}, []byte(pid)...)
	return e.WriteFrame(wire.ActionRegister, body)
}

// Run enters the receive loop: read a header, read its body, and route
// the frame. It returns nil only when the peer closes the connection
// cleanly between messages; any other condition (malformed frame,
// protocol violation, a second Function arriving mid-flight) returns a
// non-nil, fatal error per §7's policy table.
func (e *Engine) Run(ctx context.Context) error {
	if e.metrics != nil {
		e.metrics.SetConnected(true)
		defer e.metrics.SetConnected(false)
	}

	e.readyOnce.Do(func() { close(e.ready) })
	defer e.wg.Wait()

	for {
		header, err := wire.ReadHeader(e.conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		body, err := wire.ReadBody(e.conn, header.Length)
		if err != nil {
			return err
		}

		if e.metrics != nil {
			e.metrics.RecordFrameReceived(header.Action)
		}

		if err := e.route(ctx, header.Action, body); err != nil {
			return err
		}
	}
}

func (e *Engine) route(ctx context.Context, action wire.Action, body []byte) error {
	switch action {
	case wire.ActionFunction:
		return e.dispatchFunction(ctx, body)
	case wire.ActionPing:
		return e.handlePing(body)
	default:
		logger.ErrorCtx(ctx, "inbound frame carries a client-only action", logger.KeyAction, action.String())
		return fmt.Errorf("%w: unexpected inbound action %s", wire.ErrProtocolViolation, action)
	}
}

func (e *Engine) dispatchFunction(ctx context.Context, body []byte) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		_ = e.WriteFrame(wire.ActionFailure, protocolViolationFailureBody("a Function is already in flight on this connection"))
		return fmt.Errorf("%w: Function received while one is already running", wire.ErrProtocolViolation)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.inFlight.Store(false)

		if _, err := e.dispatcher.Dispatch(ctx, e, body); err != nil {
			// Dispatch fails only for an unparseable Function body, a fatal
			// protocol violation: closing the connection ends the receive loop.
			logger.ErrorCtx(ctx, "dispatch failed", logger.KeyError, err.Error())
			_ = e.conn.Close()
		}
	}()
	return nil
}

func (e *Engine) handlePing(body []byte) error {
	if len(body) != 32 {
		return fmt.Errorf("%w: ping body must be 32 bytes, got %d", wire.ErrProtocolViolation, len(body))
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.WriteFrame(wire.ActionPong, body); err != nil {
			logger.Error("write pong frame failed", logger.KeyError, err.Error())
		}
	}()
	return nil
}

func protocolViolationFailureBody(message string) []byte {
	code := "ProtocolViolation"
	buf := make([]byte, 1+len(code)+2+len(message))
	buf[0] = byte(len(code))
	copy(buf[1:], code)
	offset := 1 + len(code)
	buf[offset] = byte(len(message) >> 8)
	buf[offset+1] = byte(len(message))
	copy(buf[offset+2:], message)
	return buf
}

// Dial connects to endpoint with the given timeout and returns the raw
// connection; callers wrap it with New.
func Dial(ctx context.Context, endpoint Endpoint, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.DialContext(ctx, "tcp", endpoint.Address())
}
