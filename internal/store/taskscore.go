package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/domain"
)

type TaskScoreStore struct {
	db *pgxpool.Pool
}

func NewTaskScoreStore(db *pgxpool.Pool) *TaskScoreStore {
	return &TaskScoreStore{db: db}
}

const taskScoreColumns = `agent_id, task_type, specialization_score, success_count, avg_confidence, requires_llm_fallback, updated_at`

func (s *TaskScoreStore) RankByTaskType(ctx context.Context, taskType string, limit int) ([]domain.TaskScore, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+taskScoreColumns+`
		 FROM task_scores
		 WHERE task_type = $1
		 ORDER BY specialization_score DESC, success_count DESC
		 LIMIT $2`,
		taskType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTaskScores(rows)
}

func (s *TaskScoreStore) TopByAgent(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.TaskScore, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+taskScoreColumns+`
		 FROM task_scores
		 WHERE agent_id = $1
		 ORDER BY specialization_score DESC
		 LIMIT $2`,
		agentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTaskScores(rows)
}

// Upsert folds one observed outcome into the (agent, task_type) row with a
// single atomic statement. The specialization score and avg_confidence are
// streaming means over total_count observations; success_count tracks
// successes alone.
func (s *TaskScoreStore) Upsert(ctx context.Context, agentID uuid.UUID, taskType string, success bool, confidence float32) (*domain.TaskScore, error) {
	outcome := 0
	if success {
		outcome = 1
	}
	ts := &domain.TaskScore{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO task_scores (agent_id, task_type, specialization_score, success_count, total_count, avg_confidence)
		 VALUES ($1, $2, $3, $3, 1, $4)
		 ON CONFLICT (agent_id, task_type) DO UPDATE SET
		   specialization_score = LEAST(GREATEST(
		     (task_scores.specialization_score * task_scores.total_count + $3) / (task_scores.total_count + 1), 0), 1),
		   success_count = task_scores.success_count + $3,
		   avg_confidence = LEAST(GREATEST(
		     (task_scores.avg_confidence * task_scores.total_count + $4) / (task_scores.total_count + 1), 0), 1),
		   total_count = task_scores.total_count + 1,
		   updated_at = NOW()
		 RETURNING `+taskScoreColumns,
		agentID, taskType, outcome, confidence,
	).Scan(&ts.AgentID, &ts.TaskType, &ts.SpecializationScore, &ts.SuccessCount,
		&ts.AvgConfidence, &ts.RequiresLLMFallback, &ts.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func collectTaskScores(rows pgx.Rows) ([]domain.TaskScore, error) {
	var scores []domain.TaskScore
	for rows.Next() {
		var ts domain.TaskScore
		if err := rows.Scan(&ts.AgentID, &ts.TaskType, &ts.SpecializationScore,
			&ts.SuccessCount, &ts.AvgConfidence, &ts.RequiresLLMFallback, &ts.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, ts)
	}
	return scores, rows.Err()
}
