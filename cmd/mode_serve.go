package cmd

import (
	"context"
	"log"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/httpsrv"
	"github.com/cthoyt/robot-obo-tool/internal/jobq"
	"github.com/cthoyt/robot-obo-tool/internal/metrics"
	"github.com/cthoyt/robot-obo-tool/internal/mirror"
	"github.com/cthoyt/robot-obo-tool/internal/shared"
	"github.com/cthoyt/robot-obo-tool/internal/store"

	"github.com/grafana/dskit/services"
)

const convertJobQueueSize = 64

// RunServeMode runs the HTTP control plane: async conversions backed by a
// job queue and sqlite history, plus the mirror pipeline when sources are
// configured.
func RunServeMode(ctx context.Context, cfg *config.Config) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := newRunner(cfg)
	if _, err := runner.EnsureJar(ctx); err != nil {
		//nolint:gocritic
		log.Fatalf("fetch robot.jar: %v", err)
	}

	st, err := store.NewConversionStore(cfg.Main.Directory)
	if err != nil {
		log.Fatalf("open conversion store: %v", err)
	}
	defer st.Close()

	jobs := jobq.NewJobQueue(convertJobQueueSize)
	jobs.Start(ctx)

	// mirror pipeline is optional in serve mode
	var pipeline *mirror.PipelineService
	if len(cfg.Mirror.Sources) > 0 && cfg.Mirror.Cron != "" {
		stor, err := shared.SetupStorage(&shared.SetupStorageOpts{
			BaseDir: cfg.Main.Directory,
			SubPath: "mirrors",
		})
		if err != nil {
			log.Fatalf("setup mirror storage: %v", err)
		}

		sup := mirror.NewSupervisor(cfg, stor, runner, &mirror.SupervisorOpts{
			WorkDir: filepath.Join(cfg.Main.Directory, "scratch"),
		})
		pipeline = mirror.NewPipelineService(sup)
		if err := services.StartAndAwaitRunning(ctx, pipeline); err != nil {
			log.Fatalf("start mirror pipeline: %v", err)
		}
		defer func() {
			if err := services.StopAndAwaitTerminated(context.Background(), pipeline); err != nil {
				slog.Error("stop mirror pipeline", slog.Any("err", err))
			}
		}()
	}

	metrics.StartHealthReporter(ctx)

	var wg sync.WaitGroup

	// HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		defer func() {
			if r := recover(); r != nil {
				slog.Error("http server panicked",
					slog.Any("panic", r),
					slog.String("goroutine", "http-server"),
				)
			}
		}()

		opts := &httpsrv.Opts{
			Converter: runner,
			Store:     st,
			Jobs:      jobs,
		}
		if pipeline != nil {
			opts.Mirror = pipeline
		}
		if err := httpsrv.NewServer(cfg, opts).Run(ctx); err != nil {
			slog.Error("http server failed", slog.Any("err", err))
			cancel()
		}
	}()

	// Wait for signal (context cancellation)
	<-ctx.Done()
	slog.Info("shutting down, waiting for goroutines...")

	// Wait for all goroutines to finish
	wg.Wait()
	slog.Info("all components shut down cleanly")
}
