package domain

import (
	"time"

	"github.com/google/uuid"
)

// Relationship is an undirected edge between two agents. AgentA is always
// the smaller id of the pair so updates from either direction hit the same
// row.
type Relationship struct {
	ID               uuid.UUID `json:"id"`
	AgentA           uuid.UUID `json:"agent_a"`
	AgentB           uuid.UUID `json:"agent_b"`
	SynergyScore     float32   `json:"synergy_score"`
	InteractionCount int       `json:"interaction_count"`
	SuccessRate      float32   `json:"success_rate"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanonicalPair orders two agent ids so that the byte-wise smaller one
// comes first.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytesLess(b, a) {
		return b, a
	}
	return a, b
}

func bytesLess(a, b uuid.UUID) bool {
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
