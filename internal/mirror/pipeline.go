package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/grafana/dskit/services"
)

type pipelineCmd int

const (
	pipelineCmdStart pipelineCmd = iota + 1
	pipelineCmdStop
)

// PipelineService wraps the mirror supervisor in a dskit service so the
// HTTP control plane can pause and resume the cron loop. The supervisor
// starts as soon as the service is running.
type PipelineService struct {
	*services.BasicService
	log     *slog.Logger
	sup     *Supervisor
	ctrlCh  chan pipelineCmd
	mu      sync.Mutex
	running bool
}

func NewPipelineService(sup *Supervisor) *PipelineService {
	s := &PipelineService{
		log:    slog.With(slog.String("component", "mirror-pipeline")),
		sup:    sup,
		ctrlCh: make(chan pipelineCmd, 1),
	}
	s.BasicService = services.NewBasicService(nil, s.run, nil).
		WithName("mirror-pipeline")
	return s
}

func (s *PipelineService) run(ctx context.Context) error {
	var loopCancel context.CancelFunc
	var loopDone chan error

	stopLoop := func() {
		if loopCancel != nil {
			loopCancel()
			loopCancel = nil
		}
		// a nil channel blocks forever, so stale exits are never observed
		loopDone = nil
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}
	defer stopLoop()

	startLoop := func() {
		if loopCancel != nil {
			// Already running
			return
		}
		s.log.Info("starting mirror cron loop")

		var loopCtx context.Context
		loopCtx, loopCancel = context.WithCancel(ctx)

		done := make(chan error, 1)
		loopDone = done

		s.mu.Lock()
		s.running = true
		s.mu.Unlock()

		go func() {
			done <- s.sup.Run(loopCtx)
		}()
	}

	startLoop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("mirror pipeline context canceled, stopping")
			return nil
		case err := <-loopDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("mirror loop failed", slog.Any("err", err))
			} else {
				s.log.Info("mirror loop stopped")
			}
			stopLoop()
		case cmd := <-s.ctrlCh:
			switch cmd {
			case pipelineCmdStart:
				startLoop()
			case pipelineCmdStop:
				s.log.Info("stopping mirror cron loop")
				stopLoop()
			}
		}
	}
}

// Public API used by HTTP / CLI:

func (s *PipelineService) Pause() {
	select {
	case s.ctrlCh <- pipelineCmdStop:
	default:
		s.log.Warn("Pause: ctrlCh full, dropping request")
	}
}

func (s *PipelineService) Resume() {
	select {
	case s.ctrlCh <- pipelineCmdStart:
	default:
		s.log.Warn("Resume: ctrlCh full, dropping request")
	}
}

func (s *PipelineService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
