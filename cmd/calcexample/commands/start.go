package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/config"
	"github.com/thinknode/thinknode-provider-ipc-net/pkg/provider"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Connect to the calculation supervisor and serve requests",
	Long: `Start loads configuration, connects to the calculation supervisor
named by THINKNODE_HOST/THINKNODE_PORT, registers this process using
THINKNODE_PID, and services function-invocation requests until interrupted.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	p := provider.New()
	if err := registerComputations(p); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx, *cfg)
	}()

	select {
	case sig := <-sigChan:
		_ = sig
		cancel()
		return <-done
	case err := <-done:
		return err
	}
}
