// Package mirror keeps a set of configured ontologies converted and
// archived in pluggable storage on a cron schedule.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/metrics"
	"github.com/cthoyt/robot-obo-tool/internal/owlstat"
	"github.com/cthoyt/robot-obo-tool/internal/robot"
	"github.com/cthoyt/robot-obo-tool/internal/shared/x/fsx"

	"github.com/hashmap-kz/storecrypt/pkg/storage"
	"github.com/robfig/cron/v3"
)

// Converter is the slice of *robot.Runner the mirror needs.
type Converter interface {
	Convert(ctx context.Context, req *robot.ConvertRequest) (string, error)
}

type SupervisorOpts struct {
	WorkDir string // scratch space for convert outputs before upload
}

type Supervisor struct {
	l           *slog.Logger
	cfg         *config.Config
	stor        storage.Storage
	conv        Converter
	opts        *SupervisorOpts
	storageName string

	// overridable in tests
	now func() time.Time
}

func NewSupervisor(cfg *config.Config, stor storage.Storage, conv Converter, opts *SupervisorOpts) *Supervisor {
	return &Supervisor{
		l:           slog.With(slog.String("component", "mirror-supervisor")),
		cfg:         cfg,
		stor:        stor,
		conv:        conv,
		opts:        opts,
		storageName: cfg.Storage.Name,
		now:         time.Now,
	}
}

func (s *Supervisor) log() *slog.Logger {
	if s.l != nil {
		return s.l
	}
	return slog.With(slog.String("component", "mirror-supervisor"))
}

// Run schedules mirror rounds until ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) error {
	// a crashed round can leave scratch dirs behind
	if notEmpty, err := fsx.DirExistsAndNotEmpty(s.opts.WorkDir); err == nil && notEmpty {
		s.log().Warn("removing stale scratch files", slog.String("dir", s.opts.WorkDir))
		if err := os.RemoveAll(s.opts.WorkDir); err != nil {
			s.log().Error("scratch dir cleanup failed", slog.Any("err", err))
		}
	}

	// POSIX compatible cron syntax: "* * * * *". Without support of seconds.
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	_, err := c.AddFunc(s.cfg.Mirror.Cron, func() {
		s.log().Info("starting scheduled mirror round")
		if err := s.RunOnce(ctx); err != nil {
			s.log().Error("mirror round failed", slog.Any("err", err))
		} else {
			s.log().Info("mirror round completed")
		}
	})
	if err != nil {
		return fmt.Errorf("add mirror cron %q: %w", s.cfg.Mirror.Cron, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// RunOnce converts every configured source and uploads the results into a
// dated directory, then applies retention.
func (s *Supervisor) RunOnce(ctx context.Context) error {
	metrics.MirrorRuns.Inc()

	mirrorID := s.now().UTC().Format("20060102150405")
	scratchDir := filepath.Join(s.opts.WorkDir, mirrorID)
	if err := os.MkdirAll(scratchDir, 0o750); err != nil {
		return fmt.Errorf("create mirror scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	m := &Manifest{
		ID:         mirrorID,
		MirroredAt: s.now().UTC(),
	}

	for _, src := range s.cfg.Mirror.Sources {
		entry, err := s.mirrorSource(ctx, mirrorID, scratchDir, src)
		if err != nil {
			s.log().Error("mirror source failed",
				slog.String("source", src.Name),
				slog.Any("err", err),
			)
			metrics.MirrorFailures.WithLabelValues(src.Name).Inc()
			continue
		}
		m.Sources = append(m.Sources, *entry)
	}

	if len(m.Sources) == 0 {
		return fmt.Errorf("mirror %s: no source succeeded", mirrorID)
	}

	if err := s.writeManifest(ctx, mirrorID, m); err != nil {
		return err
	}

	if s.cfg.Mirror.Retention.Enable {
		if err := s.retainMirrors(ctx); err != nil {
			s.log().Error("mirror retention failed", slog.Any("err", err))
		}
	}
	return nil
}

func (s *Supervisor) mirrorSource(
	ctx context.Context,
	mirrorID, scratchDir string,
	src config.MirrorSource,
) (*SourceEntry, error) {
	format := src.Format
	if format == "" {
		format = s.cfg.Mirror.OutputFormat
	}

	outName := src.Name + "." + format
	localPath := filepath.Join(scratchDir, outName)

	s.log().Info("mirroring source",
		slog.String("source", src.Name),
		slog.String("iri", src.IRI),
		slog.String("format", format),
	)

	req := &robot.ConvertRequest{
		InputPath:  src.IRI,
		OutputPath: localPath,
		Format:     format,
		Merge:      src.Merge,
		Reason:     src.Reason,
		NoCheck:    src.NoCheck,
	}
	start := time.Now()
	if _, err := s.conv.Convert(ctx, req); err != nil {
		return nil, err
	}
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())
	metrics.ConversionsTotal.WithLabelValues(format).Inc()

	entry := &SourceEntry{
		Name:   src.Name,
		IRI:    src.IRI,
		Format: format,
		File:   outName,
	}
	if fi, err := os.Stat(localPath); err == nil {
		entry.SizeBytes = fi.Size()
	}
	// class counts are only meaningful for RDF/XML outputs
	if strings.HasSuffix(outName, ".owl") || strings.HasSuffix(outName, ".owx") {
		if stats, err := owlstat.ScanFile(localPath); err == nil {
			entry.Classes = stats.Classes
			entry.OntologyIRI = stats.OntologyIRI
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open converted file: %w", err)
	}
	defer f.Close()

	if err := s.stor.Put(ctx, path.Join(mirrorID, outName), f); err != nil {
		return nil, fmt.Errorf("upload %s: %w", outName, err)
	}
	metrics.MirrorFilesUploaded.WithLabelValues(s.backendLabel()).Inc()
	return entry, nil
}

func (s *Supervisor) backendLabel() string {
	if s.storageName == "" {
		return config.StorageNameLocalFS
	}
	return s.storageName
}
