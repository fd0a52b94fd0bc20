package domain

import (
	"context"

	"github.com/google/uuid"
)

type AgentStore interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	ListActive(ctx context.Context) ([]Agent, error)
	TopBySuccessRate(ctx context.Context, limit int) ([]Agent, error)
	// RecordCompletion atomically bumps the agent's aggregate counters.
	RecordCompletion(ctx context.Context, id uuid.UUID, success bool) error
}

type TaskScoreStore interface {
	// RankByTaskType returns scores for a task type ordered by
	// specialization_score descending.
	RankByTaskType(ctx context.Context, taskType string, limit int) ([]TaskScore, error)
	TopByAgent(ctx context.Context, agentID uuid.UUID, limit int) ([]TaskScore, error)
	// Upsert folds one observed outcome into the (agent, task type) row.
	Upsert(ctx context.Context, agentID uuid.UUID, taskType string, success bool, confidence float32) (*TaskScore, error)
}

type PerformanceStore interface {
	Create(ctx context.Context, r *PerformanceRecord) error
}

type MemoryStore interface {
	Create(ctx context.Context, m *Memory) error
	// Relevant ranks an agent's memories against a query embedding.
	Relevant(ctx context.Context, agentID uuid.UUID, embedding []float32, limit int) ([]MemoryWithScore, error)
	// Recent is the un-ranked fallback when relevance lookup is unavailable.
	Recent(ctx context.Context, agentID uuid.UUID, limit int) ([]Memory, error)
	DecayImportance(ctx context.Context, olderThanDays int, factor float32) (int64, error)
	DeleteBelowImportance(ctx context.Context, floor float32) (int64, error)
}

type RelationshipStore interface {
	// Get looks up the edge for a canonically ordered pair.
	Get(ctx context.Context, agentA, agentB uuid.UUID) (*Relationship, error)
	// Upsert writes the full row, inserting or replacing scores atomically.
	Upsert(ctx context.Context, r *Relationship) error
}

type LearningEventStore interface {
	Create(ctx context.Context, e *LearningEvent) error
}

type ConversationStore interface {
	Append(ctx context.Context, userID, sessionID, role, content string) error
	// RecentTurns returns up to limit turns, oldest first.
	RecentTurns(ctx context.Context, userID, sessionID string, limit int) ([]ContextTurn, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionClient is the external reasoning-tier collaborator: role-tagged
// messages in, free-form text out.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
