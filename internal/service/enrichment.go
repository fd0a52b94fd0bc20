package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"go.uber.org/zap"
)

const (
	maxPriorityAgents       = 5
	memoriesPerAgent        = 3
	specializationsPerAgent = 3
)

// AgentEnrichment is the grounding context gathered for one candidate
// agent. Degraded marks the un-ranked fallback path.
type AgentEnrichment struct {
	Agent           domain.Agent             `json:"agent"`
	Memories        []domain.MemoryWithScore `json:"memories"`
	Specializations []domain.TaskScore       `json:"specializations"`
	Degraded        bool                     `json:"degraded"`
}

// EnrichmentService assembles memory and specialization context for the
// reasoning tier. A failed lookup for one agent degrades that agent's
// section and never aborts the request.
type EnrichmentService struct {
	agents   domain.AgentStore
	memories domain.MemoryStore
	scores   domain.TaskScoreStore
	embedder domain.EmbeddingClient
	logger   *zap.Logger
}

func NewEnrichmentService(agents domain.AgentStore, memories domain.MemoryStore, scores domain.TaskScoreStore, embedder domain.EmbeddingClient, logger *zap.Logger) *EnrichmentService {
	return &EnrichmentService{
		agents:   agents,
		memories: memories,
		scores:   scores,
		embedder: embedder,
		logger:   logger,
	}
}

// Enrich gathers context for up to 5 priority agents: the seed list when
// non-empty, otherwise the globally highest-success-rate agents. Per-agent
// fetches run concurrently; sibling failures are independent.
func (s *EnrichmentService) Enrich(ctx context.Context, query string, priority []uuid.UUID) ([]AgentEnrichment, error) {
	agents, err := s.priorityAgents(ctx, priority)
	if err != nil {
		return nil, fmt.Errorf("resolve priority agents: %w", err)
	}
	if len(agents) == 0 {
		return nil, nil
	}

	// One embedding per request; a failure here degrades every agent to
	// the un-ranked listing rather than failing the call.
	var queryEmbedding []float32
	if s.embedder != nil {
		queryEmbedding, err = s.embedder.Embed(ctx, query)
		if err != nil {
			s.logger.Warn("query embedding failed, using un-ranked memory listing", zap.Error(err))
			queryEmbedding = nil
		}
	}

	results := make([]AgentEnrichment, len(agents))
	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent domain.Agent) {
			defer wg.Done()
			results[i] = s.enrichAgent(ctx, agent, queryEmbedding)
		}(i, agent)
	}
	wg.Wait()

	return results, nil
}

func (s *EnrichmentService) priorityAgents(ctx context.Context, priority []uuid.UUID) ([]domain.Agent, error) {
	if len(priority) == 0 {
		return s.agents.TopBySuccessRate(ctx, maxPriorityAgents)
	}

	if len(priority) > maxPriorityAgents {
		priority = priority[:maxPriorityAgents]
	}
	agents := make([]domain.Agent, 0, len(priority))
	for _, id := range priority {
		a, err := s.agents.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("priority agent lookup failed, skipping",
				zap.String("agent_id", id.String()), zap.Error(err))
			continue
		}
		agents = append(agents, *a)
	}
	return agents, nil
}

func (s *EnrichmentService) enrichAgent(ctx context.Context, agent domain.Agent, queryEmbedding []float32) AgentEnrichment {
	e := AgentEnrichment{Agent: agent}

	if len(queryEmbedding) > 0 {
		memories, err := s.memories.Relevant(ctx, agent.ID, queryEmbedding, memoriesPerAgent)
		if err == nil {
			e.Memories = memories
		} else {
			s.logger.Warn("relevance lookup failed, falling back to recent memories",
				zap.String("agent_id", agent.ID.String()), zap.Error(err))
			e.Degraded = true
		}
	} else {
		e.Degraded = true
	}

	if e.Degraded {
		recent, err := s.memories.Recent(ctx, agent.ID, memoriesPerAgent)
		if err != nil {
			s.logger.Warn("recent memory fallback failed, skipping memories",
				zap.String("agent_id", agent.ID.String()), zap.Error(err))
		}
		for _, m := range recent {
			e.Memories = append(e.Memories, domain.MemoryWithScore{Memory: m})
		}
	}

	specs, err := s.scores.TopByAgent(ctx, agent.ID, specializationsPerAgent)
	if err != nil {
		s.logger.Warn("specialization lookup failed, skipping",
			zap.String("agent_id", agent.ID.String()), zap.Error(err))
		e.Degraded = true
	} else {
		e.Specializations = specs
	}

	return e
}
