package httpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cthoyt/robot-obo-tool/internal/jobq"
	"github.com/cthoyt/robot-obo-tool/internal/metrics"
	"github.com/cthoyt/robot-obo-tool/internal/robot"
	"github.com/cthoyt/robot-obo-tool/internal/store"
)

type convertDTO struct {
	Input     string   `json:"input"`
	Output    string   `json:"output"`
	InputFlag string   `json:"input_flag,omitempty"`
	Format    string   `json:"format,omitempty"`
	Merge     bool     `json:"merge,omitempty"`
	Reason    bool     `json:"reason,omitempty"`
	Check     *bool    `json:"check,omitempty"` // default true
	Debug     bool     `json:"debug,omitempty"`
	ExtraArgs []string `json:"extra_args,omitempty"`
}

type statusDTO struct {
	Version       string `json:"version"`
	RobotVersion  string `json:"robot_version"`
	JarPath       string `json:"jar_path"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	MirrorRunning *bool  `json:"mirror_running,omitempty"`
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	jarPath, err := s.converter.JarPath()
	if err != nil {
		jarPath = fmt.Sprintf("<unresolved: %v>", err)
	}
	st := statusDTO{
		Version:       appVersion(),
		RobotVersion:  s.converter.Version(),
		JarPath:       jarPath,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.mirror != nil {
		running := s.mirror.IsRunning()
		st.MirrorRunning = &running
	}
	WriteJSON(w, http.StatusOK, st)
}

func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	var dto convertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if dto.Input == "" || dto.Output == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "input and output are required"})
		return
	}

	// one-shot outputs land under the configured work directory
	output := dto.Output
	if !filepath.IsAbs(output) {
		output = filepath.Join(s.cfg.Main.Directory, output)
	}

	req := &robot.ConvertRequest{
		InputPath:  dto.Input,
		OutputPath: output,
		InputFlag:  dto.InputFlag,
		Format:     dto.Format,
		Merge:      dto.Merge,
		Reason:     dto.Reason,
		NoCheck:    dto.Check != nil && !*dto.Check,
		Debug:      dto.Debug,
		ExtraArgs:  dto.ExtraArgs,
	}
	if _, err := req.Args(); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec := &store.Conversion{
		Input:  dto.Input,
		Output: output,
		Format: dto.Format,
	}
	if err := s.store.Create(rec); err != nil {
		s.l.Error("create conversion record", slog.Any("err", err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}

	jobName := fmt.Sprintf("convert-%d", rec.ID)
	err := s.jobs.Submit(jobName, func(ctx context.Context) error {
		return s.runConversion(ctx, rec.ID, req)
	})
	if err != nil {
		if errors.Is(err, jobq.ErrJobQueueFull) {
			_ = s.store.Finish(rec.ID, "job queue full", 0)
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "job queue full"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]any{
		"id":     rec.ID,
		"status": rec.Status,
	})
}

func (s *Server) runConversion(ctx context.Context, id int64, req *robot.ConvertRequest) error {
	if err := s.store.SetRunning(id); err != nil {
		return err
	}

	start := time.Now()
	_, err := s.converter.Convert(ctx, req)
	elapsed := time.Since(start)

	metrics.ConversionDuration.Observe(elapsed.Seconds())
	format := req.Format
	if format == "" {
		format = "inferred"
	}
	if err != nil {
		metrics.ConversionFailures.WithLabelValues(format).Inc()
		return s.store.Finish(id, err.Error(), elapsed)
	}
	metrics.ConversionsTotal.WithLabelValues(format).Inc()
	return s.store.Finish(id, "", elapsed)
}

func (s *Server) listConversionsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	conversions, err := s.store.List(limit)
	if err != nil {
		s.l.Error("list conversions", slog.Any("err", err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	if conversions == nil {
		conversions = []*store.Conversion{}
	}
	WriteJSON(w, http.StatusOK, conversions)
}

func (s *Server) getConversionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	c, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		s.l.Error("get conversion", slog.Any("err", err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (s *Server) mirrorPauseHandler(w http.ResponseWriter, _ *http.Request) {
	s.mirror.Pause()
	WriteJSON(w, http.StatusOK, map[string]string{"mirror": "pausing"})
}

func (s *Server) mirrorResumeHandler(w http.ResponseWriter, _ *http.Request) {
	s.mirror.Resume()
	WriteJSON(w, http.StatusOK, map[string]string{"mirror": "resuming"})
}
