package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pricewatch/internal/domain"
	"pricewatch/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrCycleInProgress is returned when a run is requested while another cycle
// is still going. Cycles must not overlap: concurrent cycles could
// double-append history or double-fire alerts inside the cooldown window.
var ErrCycleInProgress = errors.New("a check cycle is already running")

// Scheduler triggers check cycles on a cron schedule and serializes them
// with manual runs.
type Scheduler struct {
	engine *service.CheckEngine
	logger *zap.Logger
	cron   *cron.Cron

	mu      sync.Mutex
	running bool

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler around the engine. Start must be called to begin
// scheduled runs; RunNow works either way.
func New(engine *service.CheckEngine, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		engine:  engine,
		logger:  logger,
		cron:    cron.New(),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Start registers the cron entry and starts the ticker. An empty spec
// disables scheduled runs entirely.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.logger.Info("Scheduled price checks disabled")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunNow(s.baseCtx); err != nil {
			if errors.Is(err, ErrCycleInProgress) {
				s.logger.Warn("Skipping scheduled check, previous cycle still running")
				return
			}
			s.logger.Error("Scheduled check cycle failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule check cycle: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduled price checks started", zap.String("schedule", spec))
	return nil
}

// RunNow runs one cycle immediately, unless one is already in flight.
func (s *Scheduler) RunNow(ctx context.Context) (*domain.CycleReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrCycleInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return s.engine.RunCycle(ctx)
}

// Stop halts scheduled runs and cancels any in-flight cycle. The engine
// stops between products, so already-processed products keep their updates.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	s.cancel()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}
