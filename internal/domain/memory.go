package domain

import (
	"time"

	"github.com/google/uuid"
)

type MemoryType string

const (
	MemoryTypeSuccess     MemoryType = "success"
	MemoryTypeError       MemoryType = "error"
	MemoryTypeInteraction MemoryType = "interaction"
)

func ValidMemoryType(t string) bool {
	switch MemoryType(t) {
	case MemoryTypeSuccess, MemoryTypeError, MemoryTypeInteraction:
		return true
	}
	return false
}

// Error outcomes are scarcer and more informative than successes, so they
// are retained with higher importance.
func (t MemoryType) InitialImportance() float32 {
	switch t {
	case MemoryTypeError:
		return 0.8
	case MemoryTypeSuccess:
		return 0.6
	default:
		return 0.5
	}
}

// Memory is an importance-weighted record of a past task outcome or
// interaction, derived from a PerformanceRecord or an orchestration event.
type Memory struct {
	ID         uuid.UUID      `json:"id"`
	AgentID    uuid.UUID      `json:"agent_id"`
	Type       MemoryType     `json:"type"`
	Content    string         `json:"content"`
	Context    map[string]any `json:"context,omitempty"`
	Importance float32        `json:"importance"`
	Embedding  []float32      `json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MemoryWithScore annotates a memory with a retrieval relevance score.
type MemoryWithScore struct {
	Memory
	Relevance float32 `json:"relevance"`
}
