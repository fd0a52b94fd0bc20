package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const recorderQueueSize = 256

// LedgerTask is one deferred best-effort write.
type LedgerTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// RecorderService drains deferred ledger writes off the request path.
// Failures are logged, never retried and never surfaced to the request that
// enqueued them.
type RecorderService struct {
	logger *zap.Logger

	tasks  chan LedgerTask
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewRecorderService(logger *zap.Logger) *RecorderService {
	return &RecorderService{
		logger: logger,
		tasks:  make(chan LedgerTask, recorderQueueSize),
		stopCh: make(chan struct{}),
	}
}

// Enqueue hands a task to the background worker. When the queue is full the
// task is dropped with a warning: a lost learning write must never block or
// fail a routing response.
func (s *RecorderService) Enqueue(t LedgerTask) {
	select {
	case s.tasks <- t:
	default:
		s.logger.Warn("recorder queue full, dropping ledger task", zap.String("task", t.Name))
	}
}

// Start runs the drain loop in a background goroutine.
func (s *RecorderService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("ledger recorder started")

		for {
			select {
			case t := <-s.tasks:
				s.run(t)
			case <-s.stopCh:
				// Drain whatever is already queued before exiting.
				for {
					select {
					case t := <-s.tasks:
						s.run(t)
					default:
						s.logger.Info("ledger recorder stopped")
						return
					}
				}
			}
		}
	}()
}

// Stop gracefully stops the recorder after draining queued tasks.
func (s *RecorderService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *RecorderService) run(t LedgerTask) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := t.Run(ctx); err != nil {
		s.logger.Warn("deferred ledger write failed", zap.String("task", t.Name), zap.Error(err))
	}
}
