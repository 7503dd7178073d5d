package robot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureJar_DownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("fake-jar-bytes"))
	}))
	defer srv.Close()

	r := NewRunner(&Opts{
		Version:  "9.9.9",
		CacheDir: t.TempDir(),
		JarURL:   srv.URL + "/robot.jar",
	})

	p1, err := r.EnsureJar(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "fake-jar-bytes", string(data))

	// cached: no second request
	p2, err := r.EnsureJar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnsureJar_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	r := NewRunner(&Opts{
		Version:  "9.9.9",
		CacheDir: cacheDir,
		JarURL:   srv.URL + "/robot.jar",
	})

	_, err := r.EnsureJar(context.Background())
	require.Error(t, err)

	// no partial file left behind
	jarPath, err := r.JarPath()
	require.NoError(t, err)
	_, statErr := os.Stat(jarPath)
	assert.True(t, os.IsNotExist(statErr))
}
