package dispatch

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/logger"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/registry"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

// Writer is the subset of the connection engine's serialized writer the
// dispatcher and its reporters need. The engine implements this directly;
// dispatch never touches net.Conn.
type Writer interface {
	WriteFrame(action wire.Action, body []byte) error
}

// cancellationToken is shared by a request's dispatcher goroutine and the
// reporters handed to its invoker. Its lifetime is exactly the
// Running->Idle interval of one request.
type cancellationToken struct {
	cancelled atomic.Bool
}

func (t *cancellationToken) cancel() {
	t.cancelled.Store(true)
}

func (t *cancellationToken) isCancelled() bool {
	return t.cancelled.Load()
}

// newReporters builds the Progress/Failure handles bound to one request.
// Both are safe for concurrent use; both become permanent no-ops once the
// token is cancelled.
func newReporters(ctx context.Context, w Writer, span trace.Span, token *cancellationToken) (registry.ProgressFunc, registry.FailureFunc) {
	progress := func(fraction float32, message string) {
		if token.isCancelled() {
			return
		}
		span.AddEvent("progress", trace.WithAttributes(
			attribute.Float64("calc.fraction", float64(fraction)),
			attribute.String("calc.message", message),
		))
		if err := w.WriteFrame(wire.ActionProgress, encodeProgressBody(fraction, message)); err != nil {
			logger.WarnCtx(ctx, "write progress frame failed", logger.KeyError, err.Error())
		}
	}

	failure := func(code, message string) {
		if token.isCancelled() {
			return
		}
		if err := w.WriteFrame(wire.ActionFailure, encodeFailureBody(code, message)); err != nil {
			logger.WarnCtx(ctx, "write failure frame failed", logger.KeyError, err.Error())
		}
		token.cancel()
	}

	return progress, failure
}
