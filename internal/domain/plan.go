package domain

import "github.com/google/uuid"

// AgentAssignment is one entry of an orchestration plan.
type AgentAssignment struct {
	AgentID             uuid.UUID `json:"agent_id"`
	Role                string    `json:"role"`
	Confidence          float32   `json:"confidence"`
	RequiresApproval    bool      `json:"requires_approval"`
	Reasoning           string    `json:"reasoning,omitempty"`
	SpecializationMatch float32   `json:"specialization_match"`
}

// OrchestrationPlan is the structured output of a routing decision. It is
// transient: constructed per request and persisted only as a side effect of
// ledger memory writes.
type OrchestrationPlan struct {
	Assignments   []AgentAssignment `json:"assignments"`
	Summary       string            `json:"summary"`
	TaskType      string            `json:"task_type"`
	RoutingTier   RoutingTier       `json:"routing_tier"`
	RoutingTimeMs int64             `json:"routing_time_ms"`
	LLMBypassed   bool              `json:"llm_bypassed"`
}

// ContextTurn is one turn of recent conversation history.
type ContextTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
