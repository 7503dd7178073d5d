// Package robot wraps the ROBOT ontology tool (https://robot.obolibrary.org):
// it keeps a cached copy of the robot.jar release artifact and shells out to
// `java -jar robot.jar ...`.
package robot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cthoyt/robot-obo-tool/internal/metrics"
	"github.com/cthoyt/robot-obo-tool/internal/shared/x/fsx"

	"github.com/go-resty/resty/v2"
)

// DefaultVersion is the ROBOT release downloaded when none is configured.
const DefaultVersion = "1.9.8"

const jarURLTemplate = "https://github.com/ontodev/robot/releases/download/v%s/robot.jar"

type Opts struct {
	Version         string
	CacheDir        string // default: $HOME/.data/robot
	JavaPath        string // default: "java"
	JarURL          string // override the release URL (mirrors, tests)
	DownloadTimeout time.Duration
}

type Runner struct {
	l    *slog.Logger
	opts *Opts
}

func NewRunner(opts *Opts) *Runner {
	if opts == nil {
		opts = &Opts{}
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.JavaPath == "" {
		opts.JavaPath = "java"
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 5 * time.Minute
	}
	return &Runner{
		l:    slog.With(slog.String("component", "robot")),
		opts: opts,
	}
}

func (r *Runner) log() *slog.Logger {
	if r.l != nil {
		return r.l
	}
	return slog.With(slog.String("component", "robot"))
}

func (r *Runner) Version() string {
	return r.opts.Version
}

// JarURL returns the release URL the jar is fetched from.
func (r *Runner) JarURL() string {
	if r.opts.JarURL != "" {
		return r.opts.JarURL
	}
	return fmt.Sprintf(jarURLTemplate, r.opts.Version)
}

// JarPath returns the local cache path of the jar: <cache-dir>/<version>/robot.jar
func (r *Runner) JarPath() (string, error) {
	cacheDir := r.opts.CacheDir
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		cacheDir = filepath.Join(home, ".data", "robot")
	}
	return filepath.Join(cacheDir, r.opts.Version, "robot.jar"), nil
}

// EnsureJar downloads the jar into the cache unless it is already there.
// The download goes through a temp file, so a partial fetch never shows up
// at the final path.
func (r *Runner) EnsureJar(ctx context.Context) (string, error) {
	jarPath, err := r.JarPath()
	if err != nil {
		return "", err
	}
	if fsx.FileExists(jarPath) {
		return jarPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(jarPath), 0o750); err != nil {
		return "", fmt.Errorf("create jar cache dir: %w", err)
	}

	url := r.JarURL()
	tmpPath := jarPath + ".partial"

	r.log().Info("downloading robot.jar",
		slog.String("url", url),
		slog.String("dest", jarPath),
	)

	client := resty.New()
	client.SetTimeout(r.opts.DownloadTimeout)
	client.SetRetryCount(2)

	start := time.Now()
	resp, err := client.R().
		SetContext(ctx).
		SetOutput(tmpPath).
		Get(url)
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("download robot.jar: %w", err)
	}
	if resp.IsError() {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("download robot.jar: %s returned status %d", url, resp.StatusCode())
	}

	if err := os.Rename(tmpPath, jarPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move robot.jar into cache: %w", err)
	}

	metrics.JarDownloads.Inc()
	metrics.JarDownloadDuration.Observe(time.Since(start).Seconds())

	if fi, err := os.Stat(jarPath); err == nil {
		r.log().Info("robot.jar downloaded",
			slog.String("path", jarPath),
			slog.String("size", fsx.ByteCountIEC(fi.Size())),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
	return jarPath, nil
}
