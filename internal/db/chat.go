package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/types"
)

// SaveChatMessage appends a message to a user's conversation log. The log is
// append-only; messages are never edited or removed.
func (db *DB) SaveChatMessage(ctx context.Context, userID uuid.UUID, role, content string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO chat_messages (user_id, role, content) VALUES ($1, $2, $3)`,
		userID, role, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// GetChatHistory retrieves the most recent messages for a user in
// chronological order. A limit of 0 means no limit.
func (db *DB) GetChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]types.ChatMessage, error) {
	query := `SELECT role, content FROM chat_messages
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var messages []types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}

	// Rows come back newest-first for the LIMIT; replay order is oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
