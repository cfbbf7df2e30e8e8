// Package orchestrator composes the Config Compiler, Agent Client, and
// Stream Multiplexer: prepare, start, poll-loop, stop, and own the
// accumulated artifact list (spec §4.6).
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/zbum/moncollector/internal/agent"
	"github.com/zbum/moncollector/internal/compiler"
	"github.com/zbum/moncollector/internal/domconfig"
	"github.com/zbum/moncollector/internal/stream"
	"github.com/zbum/moncollector/internal/transport"
)

// Options configures the Orchestrator's Agent Client instances.
type Options struct {
	PayloadDir    string
	ArtifactDir   string
	ForceDebugEnv bool
}

// Orchestrator composes prepare/start/poll/stop over one Config Compiler
// run. Each AgentHandle is owned exclusively by the Multiplexer from
// start() to reap; the artifact list is owned exclusively by the
// Orchestrator (spec §5).
type Orchestrator struct {
	factory transport.Factory
	opts    Options
	logger  *zap.Logger

	mux       *stream.Multiplexer
	clients   []*agent.Client
	handles   []*agent.Handle

	mu        sync.Mutex
	artifacts []string
}

// New creates an Orchestrator bound to a Transport factory.
func New(factory transport.Factory, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{factory: factory, opts: opts, logger: logger}
}

// AddListener registers a sink on the underlying Multiplexer. Must be
// called after Prepare (which constructs the Multiplexer with the
// compiled wanted-columns set).
func (o *Orchestrator) AddListener(l stream.Listener) {
	if o.mux != nil {
		o.mux.AddListener(l)
	}
}

// Prepare compiles the DOM into per-host specs, builds one Agent Client per
// spec bound to a fresh Transport, and installs each sequentially. Any
// install failure is fatal: no agent is started (spec §7).
func (o *Orchestrator) Prepare(ctx context.Context, mon *domconfig.Monitoring, targetHint string) error {
	specs, wanted, err := compiler.Compile(mon, targetHint)
	if err != nil {
		return err
	}

	logLevel := mon.EffectiveLogLevel()
	o.mux = stream.New(wanted, o.logger)

	for _, spec := range specs {
		t := o.factory.New(spec.Host, spec.Port)
		client := agent.NewClient(spec, t, agent.Options{
			PayloadDir:    o.opts.PayloadDir,
			ArtifactDir:   o.opts.ArtifactDir,
			ForceDebugEnv: o.opts.ForceDebugEnv,
			LogLevel:      logLevel,
		}, o.logger)

		cfgPath, err := client.Install(ctx)
		if err != nil {
			return fmt.Errorf("prepare: install failed: %w", err)
		}
		o.addArtifact(cfgPath)
		o.clients = append(o.clients, client)
	}

	return nil
}

// Start launches every Agent Client and registers its streams with the
// Multiplexer.
func (o *Orchestrator) Start(ctx context.Context) error {
	for _, client := range o.clients {
		handle, err := client.Start(ctx)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		o.handles = append(o.handles, handle)
		o.mux.Register(handle.Spec.Host, handle.Process)
	}
	return nil
}

// Poll ticks the Multiplexer once and returns the number of still-tracked
// output streams; the caller drives the polling cadence.
func (o *Orchestrator) Poll() int {
	return o.mux.Poll()
}

// Stop sends SIGINT to each agent's process group, then runs uninstall on
// each client, accumulating log paths into the artifact list. Idempotent:
// a process that has already exited is never re-signaled (spec §8
// testable property 5).
func (o *Orchestrator) Stop(ctx context.Context) {
	for _, h := range o.handles {
		if h.Process != nil {
			if err := h.Process.Signal(transport.SignalInterrupt); err != nil {
				o.logger.Warn("signal failed", zap.String("host", h.Spec.Host), zap.Error(err))
			}
		}
	}

	for _, client := range o.clients {
		logPath := client.Uninstall(ctx)
		o.addArtifact(logPath)
	}
}

// Artifacts returns the accumulated list of local filesystem paths produced
// during this run (temp configs from install, temp logs from uninstall).
func (o *Orchestrator) Artifacts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.artifacts...)
}

func (o *Orchestrator) addArtifact(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.artifacts = append(o.artifacts, path)
}
