package mirror

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/cthoyt/robot-obo-tool/internal/metrics"
	"github.com/cthoyt/robot-obo-tool/internal/shared/x/strx"
)

// retainMirrors prunes dated mirrors beyond retention.keep_last, oldest
// first. Mirror IDs are timestamps, so lexical order is age order.
func (s *Supervisor) retainMirrors(ctx context.Context) error {
	keepLast := s.cfg.Mirror.Retention.KeepLast

	topLevel, err := s.stor.ListTopLevelDirs(ctx, "")
	if err != nil {
		return err
	}
	if len(topLevel) <= keepLast {
		return nil
	}

	sorted := strx.SortDesc(topLevel)
	for _, dir := range sorted[keepLast:] {
		id := filepath.Base(dir)
		s.log().Info("deleting expired mirror", slog.String("id", id))
		if err := s.stor.DeleteAll(ctx, dir); err != nil {
			return err
		}
		metrics.MirrorsDeleted.Inc()
	}
	return nil
}
