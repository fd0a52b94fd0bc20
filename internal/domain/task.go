package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoutingTier identifies which stage of the pipeline produced a plan.
type RoutingTier string

const (
	TierDeterministic RoutingTier = "tier1"
	TierSeeded        RoutingTier = "tier2"
	TierReasoning     RoutingTier = "tier3"
)

// Intent is the output of rule-based classification of a raw query.
type Intent struct {
	TaskType    string  `json:"task_type"`
	Domain      string  `json:"domain"`
	Confidence  float32 `json:"confidence"`
	RequiresLLM bool    `json:"requires_llm"`
}

// TaskScore is one row of the per-agent, per-task-type competence table.
// It is the primary read path for the deterministic router.
type TaskScore struct {
	AgentID             uuid.UUID `json:"agent_id"`
	TaskType            string    `json:"task_type"`
	SpecializationScore float32   `json:"specialization_score"`
	SuccessCount        int       `json:"success_count"`
	AvgConfidence       float32   `json:"avg_confidence"`
	RequiresLLMFallback bool      `json:"requires_llm_fallback"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// PerformanceRecord is an immutable append-only log entry for one task outcome.
type PerformanceRecord struct {
	ID              uuid.UUID      `json:"id"`
	AgentID         uuid.UUID      `json:"agent_id"`
	TaskType        string         `json:"task_type"`
	TaskDescription string         `json:"task_description"`
	Success         bool           `json:"success"`
	ExecutionMs     int64          `json:"execution_ms"`
	Confidence      float32        `json:"confidence"`
	ErrorClass      *string        `json:"error_class,omitempty"`
	Context         map[string]any `json:"context,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// LearningEvent marks a skill-gained signal, written when a reasoning-tier
// recommendation carries confidence >= 0.8. Feeds longer-horizon
// specialization recalculation outside this service.
type LearningEvent struct {
	ID         uuid.UUID `json:"id"`
	AgentID    uuid.UUID `json:"agent_id"`
	TaskType   string    `json:"task_type"`
	Confidence float32   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Clamp01 bounds score-like values to [0,1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
