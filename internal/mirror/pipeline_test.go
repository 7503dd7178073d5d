package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/mirror/mock"

	"github.com/grafana/dskit/services"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, cron string) *PipelineService {
	t.Helper()

	cfg := testConfig(config.MirrorSource{Name: "pato", IRI: "https://example.org/pato.owl"})
	cfg.Mirror.Cron = cron

	sup := NewSupervisor(cfg, mock.NewInMemoryStorage(), &writingConverter{content: "x"},
		&SupervisorOpts{WorkDir: t.TempDir()})
	p := NewPipelineService(sup)

	require.NoError(t, services.StartAndAwaitRunning(context.Background(), p))
	t.Cleanup(func() {
		_ = services.StopAndAwaitTerminated(context.Background(), p)
	})
	return p
}

func TestPipelineService_PauseResume(t *testing.T) {
	p := newTestPipeline(t, "0 4 * * *")

	require.Eventually(t, p.IsRunning, time.Second, 10*time.Millisecond)

	p.Pause()
	require.Eventually(t, func() bool { return !p.IsRunning() }, time.Second, 10*time.Millisecond)

	p.Resume()
	require.Eventually(t, p.IsRunning, time.Second, 10*time.Millisecond)
}

func TestPipelineService_LoopFailureClearsRunning(t *testing.T) {
	// an unparsable cron expression makes the supervisor loop exit on its own
	p := newTestPipeline(t, "not-a-cron")

	require.Eventually(t, func() bool { return !p.IsRunning() }, time.Second, 10*time.Millisecond)
}
