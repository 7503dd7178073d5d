package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/mirror/mock"
	"github.com/cthoyt/robot-obo-tool/internal/robot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writingConverter pretends to be ROBOT: it writes fixed content to the
// requested output path.
type writingConverter struct {
	content  string
	failFor  string // source IRI that should fail
	requests []*robot.ConvertRequest
}

func (c *writingConverter) Convert(_ context.Context, req *robot.ConvertRequest) (string, error) {
	c.requests = append(c.requests, req)
	if c.failFor != "" && req.InputPath == c.failFor {
		return "", errors.New("conversion failed")
	}
	if err := os.WriteFile(req.OutputPath, []byte(c.content), 0o640); err != nil {
		return "", err
	}
	return "", nil
}

func testConfig(sources ...config.MirrorSource) *config.Config {
	return &config.Config{
		Mirror: config.MirrorConfig{
			Cron:         "0 4 * * *",
			OutputFormat: "obo",
			Sources:      sources,
			Retention:    config.RetentionConfig{Enable: true, KeepLast: 2},
		},
	}
}

func TestRunOnce_UploadsSourcesAndManifest(t *testing.T) {
	stor := mock.NewInMemoryStorage()
	conv := &writingConverter{content: "format-version: 1.2\n"}
	cfg := testConfig(
		config.MirrorSource{Name: "pato", IRI: "https://example.org/pato.owl"},
		config.MirrorSource{Name: "go", IRI: "https://example.org/go.owl", Format: "json", Merge: true},
	)

	sup := NewSupervisor(cfg, stor, conv, &SupervisorOpts{WorkDir: t.TempDir()})
	sup.now = func() time.Time { return time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC) }

	require.NoError(t, sup.RunOnce(context.Background()))

	const id = "20250301040000"
	assert.Contains(t, stor.Files, id+"/pato.obo")
	assert.Contains(t, stor.Files, id+"/go.json")
	assert.Contains(t, stor.Files, id+"/manifest.json")

	// default format comes from mirror.output_format, per-source overrides win
	require.Len(t, conv.requests, 2)
	assert.Equal(t, "obo", conv.requests[0].Format)
	assert.Equal(t, "json", conv.requests[1].Format)
	assert.True(t, conv.requests[1].Merge)

	m, err := sup.ReadManifest(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "pato", m.Sources[0].Name)
	assert.Equal(t, int64(len(conv.content)), m.Sources[0].SizeBytes)

	// scratch dir cleaned up
	entries, err := os.ReadDir(sup.opts.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunOnce_PartialFailureStillUploads(t *testing.T) {
	stor := mock.NewInMemoryStorage()
	conv := &writingConverter{content: "x", failFor: "https://example.org/broken.owl"}
	cfg := testConfig(
		config.MirrorSource{Name: "broken", IRI: "https://example.org/broken.owl"},
		config.MirrorSource{Name: "pato", IRI: "https://example.org/pato.owl"},
	)

	sup := NewSupervisor(cfg, stor, conv, &SupervisorOpts{WorkDir: t.TempDir()})
	sup.now = func() time.Time { return time.Date(2025, 3, 2, 4, 0, 0, 0, time.UTC) }
	require.NoError(t, sup.RunOnce(context.Background()))

	m, err := sup.ReadManifest(context.Background(), "20250302040000")
	require.NoError(t, err)
	require.Len(t, m.Sources, 1)
	assert.Equal(t, "pato", m.Sources[0].Name)
}

func TestRunOnce_AllSourcesFailed(t *testing.T) {
	stor := mock.NewInMemoryStorage()
	conv := &writingConverter{content: "x", failFor: "https://example.org/broken.owl"}
	cfg := testConfig(
		config.MirrorSource{Name: "broken", IRI: "https://example.org/broken.owl"},
	)

	sup := NewSupervisor(cfg, stor, conv, &SupervisorOpts{WorkDir: t.TempDir()})
	err := sup.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Empty(t, stor.Files)
}

func TestRun_CleansStaleScratch(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.MkdirAll(workDir+"/20240101000000", 0o750))
	require.NoError(t, os.WriteFile(workDir+"/20240101000000/leftover.obo", []byte("x"), 0o640))

	cfg := testConfig(config.MirrorSource{Name: "pato", IRI: "https://example.org/pato.owl"})
	sup := NewSupervisor(cfg, mock.NewInMemoryStorage(), &writingConverter{content: "x"},
		&SupervisorOpts{WorkDir: workDir})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, sup.Run(ctx))

	_, err := os.Stat(workDir)
	assert.True(t, os.IsNotExist(err), "stale scratch dir should have been removed")
}

func TestRetainMirrors_KeepsNewest(t *testing.T) {
	stor := mock.NewInMemoryStorage()
	ctx := context.Background()

	for i, id := range []string{"20250101000000", "20250102000000", "20250103000000", "20250104000000"} {
		_ = stor.Put(ctx, id+"/pato.obo", strings.NewReader(fmt.Sprintf("content-%d", i)))
		_ = stor.Put(ctx, id+"/manifest.json", strings.NewReader("{}"))
	}

	cfg := testConfig(config.MirrorSource{Name: "pato", IRI: "https://example.org/pato.owl"})
	sup := NewSupervisor(cfg, stor, &writingConverter{content: "x"}, &SupervisorOpts{WorkDir: t.TempDir()})

	require.NoError(t, sup.retainMirrors(ctx))

	dirs, err := stor.ListTopLevelDirs(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"20250103000000": true,
		"20250104000000": true,
	}, dirs)
}
