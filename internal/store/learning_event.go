package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/domain"
)

type LearningEventStore struct {
	db *pgxpool.Pool
}

func NewLearningEventStore(db *pgxpool.Pool) *LearningEventStore {
	return &LearningEventStore{db: db}
}

func (s *LearningEventStore) Create(ctx context.Context, e *domain.LearningEvent) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO learning_events (agent_id, task_type, confidence, source)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.AgentID, e.TaskType, e.Confidence, e.Source,
	).Scan(&e.ID, &e.CreatedAt)
}
