// Package provider is the public entry point an embedding application
// uses: register named computations, then Start the runtime, which owns
// connecting to the calculation supervisor, registering, and servicing
// requests until a fatal error or context cancellation.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/adminserver"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/config"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/dispatch"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/engine"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/logger"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/metrics"
	prometheusmetrics "github.com/thinknode/thinknode-provider-ipc-net/internal/metrics/prometheus"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/registry"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/telemetry"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/valuecodec"
)

// Re-exported types so applications depend only on this package, not the
// internal packages that implement it.
type (
	Kind         = valuecodec.Kind
	Capability   = registry.Capability
	ProgressFunc = registry.ProgressFunc
	FailureFunc  = registry.FailureFunc
	Invoker      = registry.Invoker
	FailureError = valuecodec.FailureError
	Timestamp    = valuecodec.Timestamp
)

const (
	KindInteger   = valuecodec.KindInteger
	KindFloat     = valuecodec.KindFloat
	KindBoolean   = valuecodec.KindBoolean
	KindString    = valuecodec.KindString
	KindBytes     = valuecodec.KindBytes
	KindTimestamp = valuecodec.KindTimestamp
	KindRecord    = valuecodec.KindRecord
	KindArray     = valuecodec.KindArray
)

const (
	CapabilityNone     = registry.CapabilityNone
	CapabilityProgress = registry.CapabilityProgress
	CapabilityFailure  = registry.CapabilityFailure
	CapabilityBoth     = registry.CapabilityBoth
)

// Provider holds the static call registry an application populates before
// calling Start.
type Provider struct {
	registry *registry.Registry
	codec    *valuecodec.Codec
}

// NewTimestamp converts a time.Time to the wire Timestamp representation.
func NewTimestamp(t time.Time) Timestamp {
	return valuecodec.NewTimestamp(t)
}

// New returns an empty, unsealed Provider.
func New() *Provider {
	return &Provider{
		registry: registry.New(),
		codec:    valuecodec.New(),
	}
}

// Register adds a named computation. It must be called before Start; after
// Start seals the registry, Register always fails with registry.ErrSealed.
func (p *Provider) Register(name string, paramKinds []Kind, returnKind Kind, capability Capability, invoker Invoker) error {
	return p.registry.Register(name, paramKinds, returnKind, capability, invoker)
}

// Start initializes logging, telemetry, and metrics from cfg, connects to
// the supervisor (using THINKNODE_HOST/PORT/PID from the environment),
// registers, and runs the receive loop until ctx is cancelled or a fatal
// error occurs. It returns that fatal error, or nil on a clean shutdown.
func (p *Provider) Start(ctx context.Context, cfg config.Config) error {
	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		return fmt.Errorf("provider: init logging: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("provider: init telemetry: %w", err)
	}
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint)
	} else {
		logger.Info("telemetry disabled")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", logger.KeyError, err.Error())
		}
	}()

	promRegistry := metrics.Init(cfg.Metrics.Enabled)
	providerMetrics := prometheusmetrics.NewProviderMetrics()

	p.registry.Seal()

	endpoint, err := engine.LoadEndpoint()
	if err != nil {
		return fmt.Errorf("provider: load endpoint: %w", err)
	}

	conn, err := engine.Dial(ctx, endpoint, 10*time.Second)
	if err != nil {
		return fmt.Errorf("provider: connect to supervisor: %w", err)
	}
	defer conn.Close()

	dispatcher := dispatch.New(p.registry, p.codec, providerMetrics)
	eng := engine.New(conn, dispatcher, providerMetrics)

	if err := eng.Register(endpoint.PID); err != nil {
		return fmt.Errorf("provider: send register frame: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	// stop releases the admin server and the closer below once the receive
	// loop returns, including after a clean close by the supervisor.
	gctx, stop := context.WithCancel(gctx)
	defer stop()

	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		adminSrv = &http.Server{
			Addr:    cfg.Admin.ListenAddr,
			Handler: adminserver.NewRouter(eng, promRegistry),
		}
		group.Go(func() error {
			logger.Info("admin server listening", "addr", cfg.Admin.ListenAddr)
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		defer stop()
		err := eng.Run(gctx)
		if ctx.Err() != nil {
			// The read error comes from closing conn on cancellation.
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-gctx.Done()
		if adminSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = adminSrv.Shutdown(shutdownCtx)
		}
		_ = conn.Close()
		return nil
	})

	return group.Wait()
}
