package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const defaultProcessorInterval = 5 * time.Minute

// batchProcessor is the part of Pipeline the processor drives.
type batchProcessor interface {
	ProcessPending(ctx context.Context, limit int) (*domain.BatchReport, error)
}

// ProcessorService drains pending documents on a fixed schedule. Runs never overlap:
// a tick that arrives while a batch is in flight is skipped.
type ProcessorService struct {
	pipeline batchProcessor
	limit    int
	logger   *zap.Logger

	interval time.Duration
	timeout  time.Duration
	running  sync.Mutex
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewProcessorService(p batchProcessor, limit int, logger *zap.Logger) *ProcessorService {
	return &ProcessorService{
		pipeline: p,
		limit:    limit,
		logger:   logger,
		interval: defaultProcessorInterval,
		timeout:  30 * time.Minute,
		stopCh:   make(chan struct{}),
	}
}

func (s *ProcessorService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Start runs the processor in a background goroutine.
func (s *ProcessorService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("document processor started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
				if _, err := s.RunOnce(ctx, s.limit); err != nil && !errors.Is(err, ErrProcessorBusy) {
					s.logger.Error("scheduled processing failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("document processor stopped")
				return
			}
		}
	}()
}

// Stop waits for the current batch to finish.
func (s *ProcessorService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunOnce processes one batch now. It returns ErrProcessorBusy if a batch is
// already running.
func (s *ProcessorService) RunOnce(ctx context.Context, limit int) (*domain.BatchReport, error) {
	if !s.running.TryLock() {
		return nil, ErrProcessorBusy
	}
	defer s.running.Unlock()
	return s.pipeline.ProcessPending(ctx, limit)
}
