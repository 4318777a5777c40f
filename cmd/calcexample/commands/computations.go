package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/thinknode/thinknode-provider-ipc-net/pkg/provider"
)

// registerComputations populates p with the demonstration computations this
// example binary exposes. A real provider would replace this with its own
// domain calculations.
func registerComputations(p *provider.Provider) error {
	registrations := []struct {
		name       string
		params     []provider.Kind
		ret        provider.Kind
		capability provider.Capability
		invoker    provider.Invoker
	}{
		{
			name:       "add",
			params:     []provider.Kind{provider.KindInteger, provider.KindInteger},
			ret:        provider.KindInteger,
			capability: provider.CapabilityNone,
			invoker:    addInvoker,
		},
		{
			name:       "concat",
			params:     []provider.Kind{provider.KindString, provider.KindString},
			ret:        provider.KindString,
			capability: provider.CapabilityNone,
			invoker:    concatInvoker,
		},
		{
			name:       "divide",
			params:     []provider.Kind{provider.KindFloat, provider.KindFloat},
			ret:        provider.KindFloat,
			capability: provider.CapabilityFailure,
			invoker:    divideInvoker,
		},
		{
			name:       "count-to",
			params:     []provider.Kind{provider.KindInteger},
			ret:        provider.KindInteger,
			capability: provider.CapabilityProgress,
			invoker:    countToInvoker,
		},
		{
			name:       "now",
			params:     []provider.Kind{},
			ret:        provider.KindTimestamp,
			capability: provider.CapabilityNone,
			invoker:    nowInvoker,
		},
	}

	for _, r := range registrations {
		if err := p.Register(r.name, r.params, r.ret, r.capability, r.invoker); err != nil {
			return fmt.Errorf("register %q: %w", r.name, err)
		}
	}
	return nil
}

func addInvoker(_ context.Context, args []interface{}, _ provider.ProgressFunc, _ provider.FailureFunc) (interface{}, error) {
	a := args[0].(int64)
	b := args[1].(int64)
	return a + b, nil
}

func concatInvoker(_ context.Context, args []interface{}, _ provider.ProgressFunc, _ provider.FailureFunc) (interface{}, error) {
	a := args[0].(string)
	b := args[1].(string)
	return a + b, nil
}

// divideInvoker reports a named failure for division by zero instead of
// letting the dispatcher fall back to the generic UserError code.
func divideInvoker(_ context.Context, args []interface{}, _ provider.ProgressFunc, fail provider.FailureFunc) (interface{}, error) {
	a := args[0].(float64)
	b := args[1].(float64)
	if b == 0 {
		fail("DivideByZero", "divisor must be non-zero")
		return nil, &provider.FailureError{Code: "DivideByZero", Message: "divisor must be non-zero"}
	}
	return a / b, nil
}

// countToInvoker reports fractional progress while counting up to n,
// demonstrating the Progress capability.
func countToInvoker(ctx context.Context, args []interface{}, progress provider.ProgressFunc, _ provider.FailureFunc) (interface{}, error) {
	n := args[0].(int64)
	if n <= 0 {
		return int64(0), nil
	}
	for i := int64(1); i <= n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		progress(float32(i)/float32(n), fmt.Sprintf("counted %d of %d", i, n))
		time.Sleep(time.Millisecond)
	}
	return n, nil
}

func nowInvoker(_ context.Context, _ []interface{}, _ provider.ProgressFunc, _ provider.FailureFunc) (interface{}, error) {
	return provider.NewTimestamp(time.Now()), nil
}
