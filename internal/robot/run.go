package robot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/cthoyt/robot-obo-tool/internal/logger"
	"github.com/cthoyt/robot-obo-tool/internal/shared/x/strx"
)

// previewLength caps how much of stdout/stderr ends up in an Error message.
const previewLength = 500

// Error is returned when ROBOT exits non-zero. It keeps the full command,
// exit code and both output streams; the message shows truncated previews.
type Error struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *Error) Error() string {
	stdout := e.Stdout
	if stdout == "" {
		stdout = "<no stdout>"
	}
	stderr := e.Stderr
	if stderr == "" {
		stderr = "<no stderr>"
	}
	return fmt.Sprintf(
		"command `%s` returned non-zero exit status %d\n\nstderr:\n\n%s\n\nstdout:\n\n%s",
		strings.Join(e.Command, " "),
		e.ExitCode,
		strx.Indent(strx.Shorten(stderr, previewLength), "  "),
		strx.Indent(strx.Shorten(stdout, previewLength), "  "),
	)
}

// Call runs a ROBOT command and returns its stdout.
func (r *Runner) Call(ctx context.Context, args []string) (string, error) {
	jarPath, err := r.EnsureJar(ctx)
	if err != nil {
		return "", err
	}

	cmdArgs := append([]string{"-jar", jarPath}, args...)
	logger.DebugLazy(ctx, "running shell command", func() []slog.Attr {
		return []slog.Attr{
			slog.String("java", r.opts.JavaPath),
			slog.String("args", strings.Join(cmdArgs, " ")),
		}
	})

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.JavaPath, cmdArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &Error{
				Command:  append([]string{r.opts.JavaPath}, cmdArgs...),
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("run robot: %w", err)
	}

	return stdout.String(), nil
}

// RobotVersion returns the output of `robot --version`.
func (r *Runner) RobotVersion(ctx context.Context) (string, error) {
	out, err := r.Call(ctx, []string{"--version"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
