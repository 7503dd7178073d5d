package httpsrv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/jobq"
	"github.com/cthoyt/robot-obo-tool/internal/robot"
	"github.com/cthoyt/robot-obo-tool/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverter struct {
	fail     bool
	lastArgs atomic.Pointer[[]string]
}

func (f *fakeConverter) Convert(_ context.Context, req *robot.ConvertRequest) (string, error) {
	args, err := req.Args()
	if err != nil {
		return "", err
	}
	f.lastArgs.Store(&args)
	if f.fail {
		return "", errors.New("robot exploded")
	}
	return "ok", nil
}

func (f *fakeConverter) JarPath() (string, error) { return "/tmp/robot.jar", nil }
func (f *fakeConverter) Version() string          { return "1.9.8" }

type fakeMirror struct {
	running atomic.Bool
}

func (m *fakeMirror) Pause()          { m.running.Store(false) }
func (m *fakeMirror) Resume()         { m.running.Store(true) }
func (m *fakeMirror) IsRunning() bool { return m.running.Load() }

func newTestServer(t *testing.T, conv Converter, token string) (*Server, *store.ConversionStore) {
	t.Helper()

	st, err := store.NewConversionStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	jobs := jobq.NewJobQueue(8)
	jobs.Start(ctx)

	cfg := &config.Config{
		Main: config.MainConfig{
			ListenPort: 7074,
			Directory:  t.TempDir(),
			AuthToken:  token,
		},
	}
	return NewServer(cfg, &Opts{
		Converter: conv,
		Store:     st,
		Jobs:      jobs,
		Mirror:    &fakeMirror{},
	}), st
}

func waitForStatus(t *testing.T, st *store.ConversionStore, id int64, want string) *store.Conversion {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c, err := st.Get(id)
		require.NoError(t, err)
		if c.Status == want {
			return c
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("conversion %d never reached status %q", id, want)
	return nil
}

func TestHealthz_NoAuth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeConverter{}, "secret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus_RequiresToken(t *testing.T) {
	srv, _ := newTestServer(t, &fakeConverter{}, "secret")
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/tmp/robot.jar")
}

func TestConvert_Accepted(t *testing.T) {
	conv := &fakeConverter{}
	srv, st := newTestServer(t, conv, "")
	h := srv.Handler()

	body := `{"input":"https://example.org/pato.owl","output":"pato.obo","format":"obo","check":false}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	done := waitForStatus(t, st, 1, store.StatusDone)
	assert.Empty(t, done.Error)

	args := *conv.lastArgs.Load()
	assert.Contains(t, args, "-I")
	assert.Contains(t, args, "--check=false")
	assert.Contains(t, args, "obo")
}

func TestConvert_FailureRecorded(t *testing.T) {
	srv, st := newTestServer(t, &fakeConverter{fail: true}, "")
	h := srv.Handler()

	body := `{"input":"x.owl","output":"x.obo"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	failed := waitForStatus(t, st, 1, store.StatusFailed)
	assert.Contains(t, failed.Error, "robot exploded")
}

func TestConvert_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &fakeConverter{}, "")
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"input":"x.owl"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert",
		strings.NewReader(`{"input":"x.owl","output":"x.obo","input_flag":"-z"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversions_ListAndGet(t *testing.T) {
	srv, st := newTestServer(t, &fakeConverter{}, "")
	h := srv.Handler()

	require.NoError(t, st.Create(&store.Conversion{Input: "a.owl", Output: "a.obo"}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.owl")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversions/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversions/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMirror_PauseResume(t *testing.T) {
	srv, _ := newTestServer(t, &fakeConverter{}, "")
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mirror/resume", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.mirror.IsRunning())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mirror/pause", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, srv.mirror.IsRunning())
}
