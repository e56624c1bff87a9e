package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/capdag/capability"
	"github.com/kbukum/capdag/config"
	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/logger"
	"github.com/kbukum/capdag/observability"
	"github.com/kbukum/capdag/version"
)

// loadConfig reads configuration and installs the global and component
// loggers. The returned logger is the "cli" component.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var opts []config.LoaderOption
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}

	var cfg config.Config
	if err := config.LoadConfig("capdag", &cfg, opts...); err != nil {
		return nil, nil, err
	}

	dirs, err := cmd.Flags().GetStringSlice("pipelines")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pipelines flag: %w", err)
	}
	if len(dirs) > 0 {
		cfg.PipelineDirs = dirs
	}

	logger.Setup(&cfg.Logging, cfg.Name, "cli")
	return &cfg, logger.Get("cli"), nil
}

// telemetry holds the providers started for a run.
type telemetry struct {
	metrics  *observability.Metrics
	shutdown func(context.Context) error
}

// startTelemetry installs OTLP trace and metric providers when enabled.
func startTelemetry(ctx context.Context, cfg *config.Config) (*telemetry, error) {
	if !cfg.Telemetry.Enabled {
		return &telemetry{shutdown: func(context.Context) error { return nil }}, nil
	}

	ver := version.Get().Short()

	tc := observability.DefaultTracerConfig(cfg.Name)
	tc.ServiceVersion = ver
	tc.Environment = cfg.Environment
	tc.Insecure = cfg.Telemetry.Insecure
	tc.SampleRate = cfg.Telemetry.SampleRate
	if cfg.Telemetry.Endpoint != "" {
		tc.Endpoint = cfg.Telemetry.Endpoint
	}
	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		return nil, err
	}

	mc := observability.DefaultMeterConfig(cfg.Name)
	mc.ServiceVersion = ver
	mc.Environment = cfg.Environment
	mc.Insecure = cfg.Telemetry.Insecure
	mc.Interval = cfg.Telemetry.Interval
	mc.Endpoint = tc.Endpoint
	mp, err := observability.InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter("capdag"))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	return &telemetry{
		metrics: metrics,
		shutdown: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				return err
			}
			return mp.Shutdown(ctx)
		},
	}, nil
}

// newRegistry returns the built-in capabilities, instrumented when metrics
// are available.
func newRegistry(metrics *observability.Metrics) *dag.Registry {
	reg := dag.NewRegistry()
	capability.Register(reg)
	if metrics == nil {
		return reg
	}

	for _, name := range reg.List() {
		factory, _ := reg.Get(name)
		reg.Register(name, func(def dag.NodeDef) (dag.Node, error) {
			node, err := factory(def)
			if err != nil {
				return nil, err
			}
			return dag.WithMetrics(dag.WithTracing(node, "capdag"), metrics), nil
		})
	}
	return reg
}

// buildGraph loads the named pipeline and resolves it into a graph.
func buildGraph(cfg *config.Config, name string, reg *dag.Registry) (*dag.Graph, error) {
	loader := dag.NewFilePipelineLoader(cfg.PipelineDirs...)
	p, err := loader.Load(name)
	if err != nil {
		return nil, err
	}
	return dag.ResolvePipeline(p, reg, loader)
}
