package service

import (
	"context"
	"sync"
	"time"

	"github.com/relayhq/dispatch/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultDecayInterval = 6 * time.Hour

	decayOlderThanDays   = 30
	decayFactor          = 0.9
	decayImportanceFloor = 0.1
)

// DecayService periodically ages the memory corpus: importance of old
// memories decays, and entries that fall below the floor are pruned so
// enrichment keeps surfacing material that still matters.
type DecayService struct {
	memories domain.MemoryStore
	logger   *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewDecayService(memories domain.MemoryStore, logger *zap.Logger) *DecayService {
	return &DecayService{
		memories: memories,
		logger:   logger,
		interval: defaultDecayInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *DecayService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the decay pass on a periodic schedule in a background goroutine.
func (s *DecayService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("memory decay worker started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				s.RunDecay(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("memory decay worker stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the decay worker.
func (s *DecayService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *DecayService) RunDecay(ctx context.Context) {
	decayed, err := s.memories.DecayImportance(ctx, decayOlderThanDays, decayFactor)
	if err != nil {
		s.logger.Error("failed to decay memory importance", zap.Error(err))
	} else if decayed > 0 {
		s.logger.Info("decayed memory importance", zap.Int64("count", decayed))
	}

	pruned, err := s.memories.DeleteBelowImportance(ctx, decayImportanceFloor)
	if err != nil {
		s.logger.Error("failed to prune low-importance memories", zap.Error(err))
	} else if pruned > 0 {
		s.logger.Info("pruned low-importance memories", zap.Int64("count", pruned))
	}
}
