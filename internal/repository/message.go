package repository

import (
	"context"

	"chatapp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Insert persists one message and returns it with the server-assigned
// creation time. Seen always starts false.
func (r *MessageRepository) Insert(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	m := &model.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING seen, created_at
	`, m.ID, senderID, receiverID, content).Scan(&m.Seen, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MarkSeen flips seen to true for every listed message still unseen.
// Unknown or already-seen ids are skipped. Returns the number of rows
// actually updated.
func (r *MessageRepository) MarkSeen(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE messages SET seen = TRUE
		WHERE id = ANY($1) AND seen = FALSE
	`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListConversation returns every message exchanged between the two users,
// in both directions, oldest first.
func (r *MessageRepository) ListConversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, seen, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Seen, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
