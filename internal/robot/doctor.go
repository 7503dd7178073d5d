package robot

import (
	"context"
	"log/slog"
	"os/exec"
)

// Check is the result of a single doctor probe.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Diagnose probes the pieces ROBOT needs to run, in dependency order:
// java on PATH, a working JRE, a cached jar, and a runnable `robot --help`.
// Later probes still run when earlier ones fail, so the report is complete.
func (r *Runner) Diagnose(ctx context.Context) []Check {
	var checks []Check

	javaPath, err := exec.LookPath(r.opts.JavaPath)
	if err != nil {
		r.log().Error("java is not on the PATH", slog.Any("err", err))
		checks = append(checks, Check{Name: "java-on-path", Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "java-on-path", OK: true, Detail: javaPath})
	}

	if err := exec.CommandContext(ctx, r.opts.JavaPath, "--help").Run(); err != nil {
		r.log().Error("java --help failed, the JRE might not be configured properly",
			slog.Any("err", err))
		checks = append(checks, Check{Name: "java-runs", Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "java-runs", OK: true})
	}

	jarPath, err := r.EnsureJar(ctx)
	if err != nil {
		r.log().Error("robot.jar could not be fetched", slog.Any("err", err))
		checks = append(checks, Check{Name: "jar-present", Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "jar-present", OK: true, Detail: jarPath})
	}

	if _, err := r.Call(ctx, []string{"--help"}); err != nil {
		r.log().Error("robot --help failed", slog.Any("err", err))
		checks = append(checks, Check{Name: "robot-runs", Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "robot-runs", OK: true})
	}

	return checks
}

// IsAvailable reports whether every doctor probe passed.
func (r *Runner) IsAvailable(ctx context.Context) bool {
	for _, c := range r.Diagnose(ctx) {
		if !c.OK {
			return false
		}
	}
	return true
}
