package robot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnose_AllChecksFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRunner(&Opts{
		JavaPath: filepath.Join(t.TempDir(), "no-such-java"),
		CacheDir: t.TempDir(),
		JarURL:   srv.URL,
	})

	checks := r.Diagnose(context.Background())
	require.Len(t, checks, 4)

	// later checks still run when earlier ones fail
	wantOrder := []string{"java-on-path", "java-runs", "jar-present", "robot-runs"}
	for i, check := range checks {
		assert.Equal(t, wantOrder[i], check.Name)
		assert.False(t, check.OK, "check %s should fail", check.Name)
		assert.NotEmpty(t, check.Detail)
	}

	assert.False(t, r.IsAvailable(context.Background()))
}

func TestDiagnose_AllChecksPass(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell stub for java")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("jar-bytes"))
	}))
	defer srv.Close()

	javaStub := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(javaStub, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	r := NewRunner(&Opts{
		JavaPath: javaStub,
		CacheDir: t.TempDir(),
		JarURL:   srv.URL,
	})

	for _, check := range r.Diagnose(context.Background()) {
		assert.True(t, check.OK, "check %s should pass: %s", check.Name, check.Detail)
	}
	assert.True(t, r.IsAvailable(context.Background()))
}
