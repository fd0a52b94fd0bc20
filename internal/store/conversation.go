package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/domain"
)

type ConversationStore struct {
	db *pgxpool.Pool
}

func NewConversationStore(db *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) Append(ctx context.Context, userID, sessionID, role, content string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO conversation_turns (user_id, session_id, role, content)
		 VALUES ($1, NULLIF($2, ''), $3, $4)`,
		userID, sessionID, role, content,
	)
	return err
}

// RecentTurns returns the last limit turns for a user (scoped to a session
// when one is given), oldest first so the transcript reads top-down.
func (s *ConversationStore) RecentTurns(ctx context.Context, userID, sessionID string, limit int) ([]domain.ContextTurn, error) {
	rows, err := s.db.Query(ctx,
		`SELECT role, content FROM (
		   SELECT role, content, created_at
		   FROM conversation_turns
		   WHERE user_id = $1 AND ($2 = '' OR session_id = $2)
		   ORDER BY created_at DESC
		   LIMIT $3
		 ) t ORDER BY created_at ASC`,
		userID, sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.ContextTurn
	for rows.Next() {
		var t domain.ContextTurn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
