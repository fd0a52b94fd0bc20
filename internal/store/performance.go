package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/domain"
)

// PerformanceStore appends to the immutable performance log. Records are
// written once per outcome; there are no update or delete paths.
type PerformanceStore struct {
	db *pgxpool.Pool
}

func NewPerformanceStore(db *pgxpool.Pool) *PerformanceStore {
	return &PerformanceStore{db: db}
}

func (s *PerformanceStore) Create(ctx context.Context, r *domain.PerformanceRecord) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO performance_records (agent_id, task_type, task_description, success, execution_ms, confidence, error_class, context)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		r.AgentID, r.TaskType, r.TaskDescription, r.Success, r.ExecutionMs,
		r.Confidence, r.ErrorClass, r.Context,
	).Scan(&r.ID, &r.CreatedAt)
}
