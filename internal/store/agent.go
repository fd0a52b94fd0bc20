package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/domain"
)

type AgentStore struct {
	db *pgxpool.Pool
}

func NewAgentStore(db *pgxpool.Pool) *AgentStore {
	return &AgentStore{db: db}
}

const agentColumns = `id, name, sector, capabilities, status, total_tasks_completed, success_rate, specialization_level, learning_velocity, created_at, updated_at`

func scanAgent(row pgx.Row, a *domain.Agent) error {
	return row.Scan(&a.ID, &a.Name, &a.Sector, &a.Capabilities, &a.Status,
		&a.TotalTasksCompleted, &a.SuccessRate, &a.SpecializationLevel,
		&a.LearningVelocity, &a.CreatedAt, &a.UpdatedAt)
}

func (s *AgentStore) Create(ctx context.Context, a *domain.Agent) error {
	if a.Status == "" {
		a.Status = domain.AgentStatusActive
	}
	if a.SpecializationLevel == "" {
		a.SpecializationLevel = domain.LevelNovice
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO agents (name, sector, capabilities, status, success_rate, specialization_level, learning_velocity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		a.Name, a.Sector, a.Capabilities, a.Status, a.SuccessRate, a.SpecializationLevel, a.LearningVelocity,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *AgentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	a := &domain.Agent{}
	err := scanAgent(s.db.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id), a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AgentStore) ListActive(ctx context.Context) ([]domain.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE status = $1 ORDER BY name`,
		domain.AgentStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAgents(rows)
}

func (s *AgentStore) TopBySuccessRate(ctx context.Context, limit int) ([]domain.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+agentColumns+` FROM agents
		 WHERE status = $1
		 ORDER BY success_rate DESC, total_tasks_completed DESC
		 LIMIT $2`,
		domain.AgentStatusActive, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAgents(rows)
}

func collectAgents(rows pgx.Rows) ([]domain.Agent, error) {
	var agents []domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := scanAgent(rows, &a); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// RecordCompletion folds one outcome into the agent's aggregate counters in
// a single statement so concurrent writers cannot lose updates.
func (s *AgentStore) RecordCompletion(ctx context.Context, id uuid.UUID, success bool) error {
	outcome := 0
	if success {
		outcome = 1
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE agents
		 SET success_rate = LEAST(GREATEST((success_rate * total_tasks_completed + $2) / (total_tasks_completed + 1), 0), 1),
		     total_tasks_completed = total_tasks_completed + 1,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, outcome,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
