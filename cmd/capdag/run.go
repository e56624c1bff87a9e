package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/capdag/config"
	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/logger"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Run a pipeline and print its terminal outputs as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runPipeline,
	}

	cmd.Flags().StringArrayP("input", "i", nil, "Initial input as id=<json> (repeatable)")
	cmd.Flags().Bool("parallel", false, "Run ready nodes concurrently")
	cmd.Flags().Int("workers", 0, "Parallel worker count (0 = GOMAXPROCS)")
	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rawInputs, err := cmd.Flags().GetStringArray("input")
	if err != nil {
		return fmt.Errorf("failed to get input flag: %w", err)
	}
	initial, err := parseInputs(rawInputs)
	if err != nil {
		return err
	}

	if parallel, _ := cmd.Flags().GetBool("parallel"); parallel {
		cfg.Engine.Mode = config.ModeParallel
	}
	if cmd.Flags().Changed("workers") {
		workers, _ := cmd.Flags().GetInt("workers")
		if workers < 0 {
			return errors.New(errors.ErrCodeInvalidArgument, "--workers must not be negative")
		}
		cfg.Engine.Workers = workers
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := startTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}
	defer func() {
		if err := tel.shutdown(cmd.Context()); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	g, err := buildGraph(cfg, args[0], newRegistry(tel.metrics))
	if err != nil {
		return err
	}

	engine := &dag.Engine{
		Mode:    dag.Mode(cfg.Engine.Mode),
		Workers: cfg.Engine.Workers,
		Logger:  logger.Get(logger.ComponentDAG).WithFields(logger.Fields(logger.FieldPipeline, args[0])),
		Metrics: tel.metrics,
	}
	res, err := engine.Process(ctx, g, initial)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Outputs)
}

// parseInputs decodes id=<json> pairs.
func parseInputs(raw []string) (map[string]any, error) {
	initial := make(map[string]any, len(raw))
	for _, kv := range raw {
		id, value, ok := strings.Cut(kv, "=")
		if !ok || id == "" {
			return nil, errors.New(errors.ErrCodeInvalidArgument, fmt.Sprintf("input %q must be id=<json>", kv))
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, errors.InvalidArgument(id, "input is not valid JSON").WithCause(err)
		}
		initial[id] = v
	}
	return initial, nil
}
