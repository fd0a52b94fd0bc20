package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/store"
)

var ErrAgentConflict = errors.New("agent with this name already exists")

// AgentService covers the out-of-band agent lifecycle: creation and reads.
// Score mutation happens only through the ledger.
type AgentService struct {
	agents domain.AgentStore
	scores domain.TaskScoreStore
}

func NewAgentService(agents domain.AgentStore, scores domain.TaskScoreStore) *AgentService {
	return &AgentService{agents: agents, scores: scores}
}

func (s *AgentService) Create(ctx context.Context, a *domain.Agent) error {
	err := s.agents.Create(ctx, a)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrAgentConflict
		}
		return err
	}
	return nil
}

func (s *AgentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	a, err := s.agents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AgentService) Specializations(ctx context.Context, id uuid.UUID, limit int) ([]domain.TaskScore, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.scores.TopByAgent(ctx, id, limit)
}
