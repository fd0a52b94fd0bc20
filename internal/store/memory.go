package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/relayhq/dispatch/internal/domain"
)

type MemoryStore struct {
	db *pgxpool.Pool
}

func NewMemoryStore(db *pgxpool.Pool) *MemoryStore {
	return &MemoryStore{db: db}
}

func (s *MemoryStore) Create(ctx context.Context, m *domain.Memory) error {
	var embedding *pgvector.Vector
	if len(m.Embedding) > 0 {
		v := pgvector.NewVector(m.Embedding)
		embedding = &v
	}

	if m.Importance == 0 {
		m.Importance = m.Type.InitialImportance()
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO agent_memories (agent_id, type, content, context, importance, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		m.AgentID, m.Type, m.Content, m.Context, m.Importance, embedding,
	).Scan(&m.ID, &m.CreatedAt)
}

// Relevant ranks an agent's memories by cosine similarity to the query
// embedding, weighted by importance so rare failure memories surface first.
func (s *MemoryStore) Relevant(ctx context.Context, agentID uuid.UUID, embedding []float32, limit int) ([]domain.MemoryWithScore, error) {
	if limit <= 0 {
		limit = 3
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT id, agent_id, type, content, context, importance, created_at,
		        (1 - (embedding <=> $2)) * importance AS relevance
		 FROM agent_memories
		 WHERE agent_id = $1 AND embedding IS NOT NULL
		 ORDER BY relevance DESC
		 LIMIT $3`,
		agentID, vec, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("relevant memories query: %w", err)
	}
	defer rows.Close()

	var results []domain.MemoryWithScore
	for rows.Next() {
		var ms domain.MemoryWithScore
		if err := rows.Scan(&ms.ID, &ms.AgentID, &ms.Type, &ms.Content, &ms.Context,
			&ms.Importance, &ms.CreatedAt, &ms.Relevance); err != nil {
			return nil, fmt.Errorf("scan relevant memory row: %w", err)
		}
		results = append(results, ms)
	}
	return results, rows.Err()
}

func (s *MemoryStore) Recent(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.Memory, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, agent_id, type, content, context, importance, created_at
		 FROM agent_memories
		 WHERE agent_id = $1
		 ORDER BY importance DESC, created_at DESC
		 LIMIT $2`,
		agentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []domain.Memory
	for rows.Next() {
		var m domain.Memory
		if err := rows.Scan(&m.ID, &m.AgentID, &m.Type, &m.Content, &m.Context,
			&m.Importance, &m.CreatedAt); err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func (s *MemoryStore) DecayImportance(ctx context.Context, olderThanDays int, factor float32) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE agent_memories
		 SET importance = GREATEST(importance * $2, 0)
		 WHERE created_at < NOW() - ($1 || ' days')::interval`,
		fmt.Sprintf("%d", olderThanDays), factor,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *MemoryStore) DeleteBelowImportance(ctx context.Context, floor float32) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM agent_memories WHERE importance < $1`,
		floor,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
