package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/domain"
)

type RelationshipStore struct {
	db *pgxpool.Pool
}

func NewRelationshipStore(db *pgxpool.Pool) *RelationshipStore {
	return &RelationshipStore{db: db}
}

// Get expects a canonically ordered pair; callers go through
// domain.CanonicalPair first.
func (s *RelationshipStore) Get(ctx context.Context, agentA, agentB uuid.UUID) (*domain.Relationship, error) {
	r := &domain.Relationship{}
	err := s.db.QueryRow(ctx,
		`SELECT id, agent_a, agent_b, synergy_score, interaction_count, success_rate, updated_at
		 FROM agent_relationships
		 WHERE agent_a = $1 AND agent_b = $2`,
		agentA, agentB,
	).Scan(&r.ID, &r.AgentA, &r.AgentB, &r.SynergyScore, &r.InteractionCount, &r.SuccessRate, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// Upsert writes the computed scores for an unordered pair. The unique
// constraint on (agent_a, agent_b) plus canonical ordering guarantees both
// update directions land on the same row.
func (s *RelationshipStore) Upsert(ctx context.Context, r *domain.Relationship) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO agent_relationships (agent_a, agent_b, synergy_score, interaction_count, success_rate)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (agent_a, agent_b) DO UPDATE SET
		   synergy_score = EXCLUDED.synergy_score,
		   interaction_count = EXCLUDED.interaction_count,
		   success_rate = EXCLUDED.success_rate,
		   updated_at = NOW()
		 RETURNING id, updated_at`,
		r.AgentA, r.AgentB, r.SynergyScore, r.InteractionCount, r.SuccessRate,
	).Scan(&r.ID, &r.UpdatedAt)
}
