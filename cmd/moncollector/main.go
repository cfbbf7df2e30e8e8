// Command moncollector is a demo/ops CLI driving the collector's
// prepare->start->poll->stop lifecycle against a monitoring config file,
// printing filtered sample lines to stdout. The CLI itself (argument
// parsing, signal handling, logging setup) is explicitly outside the core's
// scope (spec §1) — it exists the same way the teacher's cmd/scouter-server
// exists alongside its own core packages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zbum/moncollector/internal/config"
	"github.com/zbum/moncollector/internal/domconfig"
	"github.com/zbum/moncollector/internal/logging"
	"github.com/zbum/moncollector/internal/orchestrator"
	"github.com/zbum/moncollector/internal/transport"
)

var (
	confFile   string
	monFile    string
	targetHint string
	pollEvery  time.Duration
)

// stdoutListener prints every delivered batch to stdout, matching the
// original's StdOutPrintMon reference listener.
type stdoutListener struct{}

func (stdoutListener) Deliver(batch string) {
	fmt.Print(batch)
}

func main() {
	root := &cobra.Command{
		Use:   "moncollector",
		Short: "Drive remote monitoring agents over SSH and stream filtered samples",
		RunE:  run,
	}
	root.Flags().StringVar(&confFile, "conf", "./moncollector.conf", "collector operational config file")
	root.Flags().StringVar(&monFile, "mon", "", "monitoring XML config file (required)")
	root.Flags().StringVar(&targetHint, "target", "", "target hostname substituted for [target]")
	root.Flags().DurationVar(&pollEvery, "poll-interval", 200*time.Millisecond, "poll cadence")
	root.MarkFlagRequired("mon")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// A stdout-only bootstrap logger backs the zap global (zap.L()) used by
	// internal/config during config.Load, before the
	// real log-dir-aware logger below can be built from the config it loads.
	bootstrap, _ := logging.New("", false, false, 0)
	zap.ReplaceGlobals(bootstrap)

	cfg, err := config.Load(confFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, rotatingWriter := logging.New(cfg.LogDir(), cfg.DefaultLogLevel() == "debug", cfg.LogRotationEnabled(), cfg.LogKeepDays())
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if rotatingWriter != nil {
		rotatingWriter.Start(ctx)
		defer rotatingWriter.Close()
	}

	f, err := os.Open(monFile)
	if err != nil {
		return fmt.Errorf("open monitoring config: %w", err)
	}
	defer f.Close()

	mon, err := domconfig.LoadXML(f)
	if err != nil {
		return fmt.Errorf("parse monitoring config: %w", err)
	}

	o := orchestrator.New(transport.SSHFactory{}, orchestrator.Options{
		PayloadDir:    cfg.PayloadDir(),
		ArtifactDir:   cfg.ArtifactDir(),
		ForceDebugEnv: cfg.ForceDebugEnv(),
	}, logger)

	if err := o.Prepare(ctx, mon, targetHint); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	o.AddListener(stdoutListener{})

	if err := o.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("received signal, stopping")
			o.Stop(ctx)
			logger.Info("artifacts", zap.Strings("paths", o.Artifacts()))
			return nil
		case <-ticker.C:
			if o.Poll() == 0 {
				logger.Info("all agents have exited")
				o.Stop(ctx)
				return nil
			}
		}
	}
}
