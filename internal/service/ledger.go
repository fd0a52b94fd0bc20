package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/store"
	"go.uber.org/zap"
)

const (
	synergySuccessNudge   = 0.02
	synergyFailurePenalty = 0.01
	synergySuccessSeed    = 0.55
	synergyFailureSeed    = 0.45

	skillGainedConfidenceBar = 0.8
)

var ErrAgentNotFound = errors.New("agent not found")

// LedgerService closes the learning loop: it persists performance records,
// derives importance-weighted memories, and updates specialization and
// relationship scores from observed outcomes. Everything past the primary
// append is best-effort.
type LedgerService struct {
	performance   domain.PerformanceStore
	memories      domain.MemoryStore
	scores        domain.TaskScoreStore
	agents        domain.AgentStore
	relationships domain.RelationshipStore
	events        domain.LearningEventStore
	embedder      domain.EmbeddingClient
	logger        *zap.Logger
}

func NewLedgerService(
	performance domain.PerformanceStore,
	memories domain.MemoryStore,
	scores domain.TaskScoreStore,
	agents domain.AgentStore,
	relationships domain.RelationshipStore,
	events domain.LearningEventStore,
	embedder domain.EmbeddingClient,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		performance:   performance,
		memories:      memories,
		scores:        scores,
		agents:        agents,
		relationships: relationships,
		events:        events,
		embedder:      embedder,
		logger:        logger,
	}
}

// RecordPerformance appends the immutable record, then synthesizes a memory
// and folds the outcome into specialization and agent aggregates. Only the
// primary append can fail the call; the derived writes are logged and
// absorbed, so a retry of the whole call is safe.
func (s *LedgerService) RecordPerformance(ctx context.Context, rec *domain.PerformanceRecord) error {
	if err := s.performance.Create(ctx, rec); err != nil {
		return fmt.Errorf("append performance record: %w", err)
	}

	memory := s.synthesizeMemory(ctx, rec)
	if err := s.memories.Create(ctx, memory); err != nil {
		s.logger.Warn("failed to write derived memory",
			zap.String("agent_id", rec.AgentID.String()), zap.Error(err))
	}

	if _, err := s.scores.Upsert(ctx, rec.AgentID, rec.TaskType, rec.Success, rec.Confidence); err != nil {
		s.logger.Warn("failed to upsert task score",
			zap.String("agent_id", rec.AgentID.String()),
			zap.String("task_type", rec.TaskType), zap.Error(err))
	}

	if err := s.agents.RecordCompletion(ctx, rec.AgentID, rec.Success); err != nil {
		s.logger.Warn("failed to update agent aggregates",
			zap.String("agent_id", rec.AgentID.String()), zap.Error(err))
	}

	return nil
}

func (s *LedgerService) synthesizeMemory(ctx context.Context, rec *domain.PerformanceRecord) *domain.Memory {
	memType := domain.MemoryTypeSuccess
	content := fmt.Sprintf("Completed %s task: %s (confidence %.2f, %dms)",
		rec.TaskType, rec.TaskDescription, rec.Confidence, rec.ExecutionMs)
	if !rec.Success {
		memType = domain.MemoryTypeError
		errClass := "unclassified"
		if rec.ErrorClass != nil {
			errClass = *rec.ErrorClass
		}
		content = fmt.Sprintf("Failed %s task: %s (%s, confidence %.2f)",
			rec.TaskType, rec.TaskDescription, errClass, rec.Confidence)
	}

	m := &domain.Memory{
		AgentID:    rec.AgentID,
		Type:       memType,
		Content:    content,
		Context:    rec.Context,
		Importance: memType.InitialImportance(),
	}

	if s.embedder != nil {
		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			s.logger.Warn("failed to embed derived memory, storing without embedding",
				zap.String("agent_id", rec.AgentID.String()), zap.Error(err))
		} else {
			m.Embedding = embedding
		}
	}
	return m
}

// UpdateRelationship folds one joint-task outcome into the pair's edge.
// Argument order does not matter: the pair is canonicalized before any read
// or write, so updates from either direction hit the same row.
func (s *LedgerService) UpdateRelationship(ctx context.Context, a, b uuid.UUID, success bool) (*domain.Relationship, error) {
	agentA, agentB := domain.CanonicalPair(a, b)

	outcome := float32(0)
	if success {
		outcome = 1
	}

	rel, err := s.relationships.Get(ctx, agentA, agentB)
	switch {
	case errors.Is(err, store.ErrNotFound):
		seed := synergyFailureSeed
		if success {
			seed = synergySuccessSeed
		}
		rel = &domain.Relationship{
			AgentA:           agentA,
			AgentB:           agentB,
			SynergyScore:     float32(seed),
			InteractionCount: 1,
			SuccessRate:      outcome,
		}
	case err != nil:
		return nil, fmt.Errorf("load relationship: %w", err)
	default:
		n := float32(rel.InteractionCount)
		rel.SuccessRate = domain.Clamp01((rel.SuccessRate*n + outcome) / (n + 1))
		if success {
			rel.SynergyScore = domain.Clamp01(rel.SynergyScore + synergySuccessNudge)
		} else {
			rel.SynergyScore = domain.Clamp01(rel.SynergyScore - synergyFailurePenalty)
		}
		rel.InteractionCount++
	}

	if err := s.relationships.Upsert(ctx, rel); err != nil {
		return nil, fmt.Errorf("upsert relationship: %w", err)
	}
	return rel, nil
}

// RecordSkillGained appends a learning event when a reasoning-tier
// recommendation is confident enough to count as a skill signal. Below the
// bar it is a no-op.
func (s *LedgerService) RecordSkillGained(ctx context.Context, agentID uuid.UUID, taskType string, confidence float32) error {
	if confidence < skillGainedConfidenceBar {
		return nil
	}
	return s.events.Create(ctx, &domain.LearningEvent{
		AgentID:    agentID,
		TaskType:   taskType,
		Confidence: confidence,
		Source:     "tier3_recommendation",
	})
}

// RecordInteraction stores an orchestration event as an interaction memory
// for the chosen agent.
func (s *LedgerService) RecordInteraction(ctx context.Context, agentID uuid.UUID, content string, context map[string]any) error {
	m := &domain.Memory{
		AgentID:    agentID,
		Type:       domain.MemoryTypeInteraction,
		Content:    content,
		Context:    context,
		Importance: domain.MemoryTypeInteraction.InitialImportance(),
	}
	if s.embedder != nil {
		if embedding, err := s.embedder.Embed(ctx, content); err == nil {
			m.Embedding = embedding
		}
	}
	return s.memories.Create(ctx, m)
}
