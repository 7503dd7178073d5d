package cmd

import (
	"context"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/mirror"
	"github.com/cthoyt/robot-obo-tool/internal/shared"
)

// RunMirrorMode runs the cron-driven mirror loop without the HTTP control
// plane. One mirror round is executed immediately on startup so a fresh
// deployment does not wait for the first cron tick.
func RunMirrorMode(ctx context.Context, cfg *config.Config) {
	runner := newRunner(cfg)
	if _, err := runner.EnsureJar(ctx); err != nil {
		//nolint:gocritic
		log.Fatalf("fetch robot.jar: %v", err)
	}

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

	if err := sup.RunOnce(ctx); err != nil {
		slog.Error("initial mirror round failed", slog.Any("err", err))
	}

	if err := sup.Run(ctx); err != nil {
		log.Fatalf("mirror loop: %v", err)
	}
	slog.Info("mirror loop stopped")
}
