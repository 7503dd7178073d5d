package httpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/jobq"
	"github.com/cthoyt/robot-obo-tool/internal/robot"
	"github.com/cthoyt/robot-obo-tool/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Converter is the slice of *robot.Runner the server needs.
type Converter interface {
	Convert(ctx context.Context, req *robot.ConvertRequest) (string, error)
	JarPath() (string, error)
	Version() string
}

// MirrorControl pauses and resumes the mirror pipeline.
type MirrorControl interface {
	Pause()
	Resume()
	IsRunning() bool
}

type Opts struct {
	Converter Converter
	Store     *store.ConversionStore
	Jobs      *jobq.JobQueue
	Mirror    MirrorControl // optional
}

type Server struct {
	srv       *http.Server
	l         *slog.Logger
	cfg       *config.Config
	converter Converter
	store     *store.ConversionStore
	jobs      *jobq.JobQueue
	mirror    MirrorControl
	limiter   *rate.Limiter
	startedAt time.Time
}

func NewServer(cfg *config.Config, opts *Opts) *Server {
	s := &Server{
		l:         slog.With(slog.String("component", "http-server")),
		cfg:       cfg,
		converter: opts.Converter,
		store:     opts.Store,
		jobs:      opts.Jobs,
		mirror:    opts.Mirror,
		limiter:   rate.NewLimiter(5, 10), // 5 req/sec, burst 10
		startedAt: time.Now(),
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Main.ListenPort),
		Handler:           s.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed separately for tests.
func (s *Server) Handler() http.Handler {
	middlewares := []Middleware{
		s.safeHandlerMiddleware,
		s.loggingMiddleware,
		s.rateLimitMiddleware,
	}
	if s.cfg.Main.AuthToken != "" {
		middlewares = append(middlewares, s.tokenAuthMiddleware)
	} else {
		s.l.Warn("no auth token configured, API endpoints are unauthenticated")
	}
	secureChain := MiddlewareChain(middlewares...)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /status", secureChain(http.HandlerFunc(s.statusHandler)))
	mux.Handle("POST /convert", secureChain(http.HandlerFunc(s.convertHandler)))
	mux.Handle("GET /conversions", secureChain(http.HandlerFunc(s.listConversionsHandler)))
	mux.Handle("GET /conversions/{id}", secureChain(http.HandlerFunc(s.getConversionHandler)))

	if s.mirror != nil {
		mux.Handle("POST /mirror/pause", secureChain(http.HandlerFunc(s.mirrorPauseHandler)))
		mux.Handle("POST /mirror/resume", secureChain(http.HandlerFunc(s.mirrorResumeHandler)))
	}

	if s.cfg.Metrics.Enable {
		s.l.Debug("enable metric endpoints")
		mux.Handle("/metrics", promhttp.Handler())
	}
	if s.cfg.Dev.Pprof.Enable {
		s.l.Debug("enable pprof endpoints")
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.l.Info("shutting down HTTP server")
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.l.Error("error during HTTP server shutdown", slog.Any("err", err))
		}
	}()

	s.l.Info("HTTP server listening", slog.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
