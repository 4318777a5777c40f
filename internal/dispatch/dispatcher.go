// Package dispatch implements the per-request decode/invoke/emit pipeline
// triggered by an inbound Function frame, grounded on the teacher's
// HandlerResult dispatch pattern (internal/protocol/nfs/dispatch.go):
// resolve a handler, run it, turn its outcome into a wire-ready result.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/logger"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/registry"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/telemetry"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/valuecodec"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

// Metrics is the subset of metrics.ProviderMetrics the dispatcher needs.
// Declared locally so this package does not import the metrics package;
// any type with this method set (including a nil *metrics won't satisfy it,
// so the dispatcher takes a nil interface value to disable recording, the
// same nil-disables convention metrics.ProviderMetrics documents).
type Metrics interface {
	RecordFunctionStart(name string)
	RecordFunctionEnd(name string, outcome string, duration time.Duration)
}

// Dispatcher resolves, decodes, invokes, and emits the outcome of one
// Function request at a time. A Dispatcher is safe for reuse across
// requests; it holds no per-request state itself (that lives in
// cancellationToken, created fresh per call to Dispatch).
type Dispatcher struct {
	registry *registry.Registry
	codec    *valuecodec.Codec
	metrics  Metrics
}

// New builds a Dispatcher. metrics may be nil to disable recording. Spans
// are started via telemetry.StartSpan, which falls back to a no-op tracer
// if telemetry.Init was never called or was called with tracing disabled,
// so tracing is always safe to call into regardless of configuration
// (testable property 10).
func New(reg *registry.Registry, codec *valuecodec.Codec, metrics Metrics) *Dispatcher {
	return &Dispatcher{registry: reg, codec: codec, metrics: metrics}
}

// Outcome identifies how a dispatched request was resolved, for metrics and
// logging. It is always exactly one of OutcomeResult or OutcomeFailure.
type Outcome string

const (
	OutcomeResult  Outcome = "result"
	OutcomeFailure Outcome = "failure"
)

// Dispatch parses body as a Function request, resolves and invokes the
// named computation, and writes exactly one of a Result or Failure frame
// via w before returning. The returned error is non-nil only when body
// cannot be parsed as a Function request; no frame is written then, and the
// caller (the connection engine) treats it as fatal. A failed frame write is
// logged, not returned. Ordinary resolution/decode/invocation failures are
// reported as a Failure frame and returned as (OutcomeFailure, nil).
func (d *Dispatcher) Dispatch(ctx context.Context, w Writer, body []byte) (Outcome, error) {
	req, err := parseFunctionRequest(body)
	if err != nil {
		return "", errors.Join(wire.ErrProtocolViolation, err)
	}

	requestID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, "calc.dispatch", trace.WithAttributes(
		attribute.String("calc.function", req.Name),
		attribute.Int("calc.arg_count", len(req.Args)),
		attribute.String("calc.request_id", requestID),
	))
	defer span.End()

	sc := span.SpanContext()
	lc := logger.NewLogContext(requestID).WithFunction(req.Name).WithTrace(sc.TraceID().String(), sc.SpanID().String())
	ctx = logger.WithContext(ctx, lc)

	if d.metrics != nil {
		d.metrics.RecordFunctionStart(req.Name)
	}
	start := time.Now()

	outcome := d.dispatch(ctx, w, span, req)

	if outcome == OutcomeResult {
		span.SetStatus(codes.Ok, "")
	}
	if d.metrics != nil {
		d.metrics.RecordFunctionEnd(req.Name, string(outcome), time.Since(start))
	}
	return outcome, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, w Writer, span trace.Span, req *functionRequest) Outcome {
	descriptor, err := d.registry.Lookup(req.Name, len(req.Args))
	if err != nil {
		return d.fail(ctx, w, span, lookupErrorCode(err), err.Error())
	}

	args := make([]interface{}, len(req.Args))
	for i, raw := range req.Args {
		value, err := d.codec.Decode(descriptor.ParamKinds[i], raw)
		if err != nil {
			var decErr *valuecodec.DecodeError
			if errors.As(err, &decErr) {
				return d.fail(ctx, w, span, decErr.Kind, decErr.Message)
			}
			return d.fail(ctx, w, span, valuecodec.ErrKindMalformed, err.Error())
		}
		args[i] = value
	}

	token := &cancellationToken{}
	progress, failure := newReporters(ctx, w, span, token)

	result, err := descriptor.Invoker(ctx, args, progress, failure)
	if err != nil {
		if token.isCancelled() {
			// The invoker already reported its own Failure via the
			// failure reporter; do not emit a second one.
			return OutcomeFailure
		}
		token.cancel()
		code, message := classifyInvocationError(err)
		return d.fail(ctx, w, span, code, message)
	}

	if token.isCancelled() {
		return OutcomeFailure
	}

	encoded, err := d.codec.Encode(descriptor.ReturnKind, result)
	if err != nil {
		return d.fail(ctx, w, span, valuecodec.ErrKindTypeMismatch, err.Error())
	}

	if err := w.WriteFrame(wire.ActionResult, encoded); err != nil {
		logger.ErrorCtx(ctx, "write result frame failed", logger.KeyError, err.Error())
	}
	return OutcomeResult
}

func (d *Dispatcher) fail(ctx context.Context, w Writer, span trace.Span, code, message string) Outcome {
	if err := w.WriteFrame(wire.ActionFailure, encodeFailureBody(code, message)); err != nil {
		logger.ErrorCtx(ctx, "write failure frame failed", logger.KeyError, err.Error())
	}
	span.SetStatus(codes.Error, code+": "+message)
	return OutcomeFailure
}

func lookupErrorCode(err error) string {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return "NotFound"
	case errors.Is(err, registry.ErrArityMismatch):
		return "ArityMismatch"
	default:
		return "UserError"
	}
}

// classifyInvocationError unwraps err to its innermost cause. If that cause
// is a *valuecodec.FailureError, its Code/Message are used verbatim;
// otherwise the code is the generic "UserError" and the message is err's
// own (outermost) description.
func classifyInvocationError(err error) (code, message string) {
	cause := err
	for {
		next := errors.Unwrap(cause)
		if next == nil {
			break
		}
		cause = next
	}

	var fe *valuecodec.FailureError
	if errors.As(cause, &fe) {
		return fe.Code, fe.Message
	}
	return "UserError", err.Error()
}
