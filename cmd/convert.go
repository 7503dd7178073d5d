package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/metrics"
	"github.com/cthoyt/robot-obo-tool/internal/robot"
)

// RunConvertCmd performs a one-shot conversion: ensures the jar is cached,
// then shells out to ROBOT.
func RunConvertCmd(ctx context.Context, cfg *config.Config, req *robot.ConvertRequest) error {
	runner := newRunner(cfg)

	if _, err := runner.EnsureJar(ctx); err != nil {
		return err
	}

	format := req.Format
	if format == "" {
		format = "inferred"
	}

	start := time.Now()
	stdout, err := runner.Convert(ctx, req)
	if err != nil {
		metrics.ConversionFailures.WithLabelValues(format).Inc()
		return err
	}
	metrics.ConversionsTotal.WithLabelValues(format).Inc()
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())

	slog.Info("conversion completed",
		slog.String("input", req.InputPath),
		slog.String("output", req.OutputPath),
		slog.Duration("elapsed", time.Since(start)),
	)
	if stdout != "" {
		fmt.Print(stdout)
	}
	return nil
}

// RunRobotCmd passes args to ROBOT verbatim and prints its stdout.
func RunRobotCmd(ctx context.Context, cfg *config.Config, args []string) error {
	runner := newRunner(cfg)

	if _, err := runner.EnsureJar(ctx); err != nil {
		return err
	}

	stdout, err := runner.Call(ctx, args)
	if err != nil {
		return err
	}
	if stdout != "" {
		fmt.Print(stdout)
	}
	return nil
}
