package domain

import (
	"time"

	"github.com/google/uuid"
)

type AgentStatus string

const (
	AgentStatusActive  AgentStatus = "active"
	AgentStatusPaused  AgentStatus = "paused"
	AgentStatusRetired AgentStatus = "retired"
)

func ValidAgentStatus(s string) bool {
	switch AgentStatus(s) {
	case AgentStatusActive, AgentStatusPaused, AgentStatusRetired:
		return true
	}
	return false
}

type SpecializationLevel string

const (
	LevelNovice     SpecializationLevel = "novice"
	LevelApprentice SpecializationLevel = "apprentice"
	LevelAdept      SpecializationLevel = "adept"
	LevelExpert     SpecializationLevel = "expert"
)

// LevelForTaskCount maps a completed-task count to a specialization level.
func LevelForTaskCount(n int) SpecializationLevel {
	switch {
	case n >= 100:
		return LevelExpert
	case n >= 40:
		return LevelAdept
	case n >= 10:
		return LevelApprentice
	default:
		return LevelNovice
	}
}

// Agent is created out-of-band and mutated only by the learning ledger.
type Agent struct {
	ID                  uuid.UUID           `json:"id"`
	Name                string              `json:"name"`
	Sector              string              `json:"sector"`
	Capabilities        []string            `json:"capabilities,omitempty"`
	Status              AgentStatus         `json:"status"`
	TotalTasksCompleted int                 `json:"total_tasks_completed"`
	SuccessRate         float32             `json:"success_rate"`
	SpecializationLevel SpecializationLevel `json:"specialization_level"`
	LearningVelocity    float32             `json:"learning_velocity"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
