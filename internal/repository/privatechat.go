package repository

import (
	"context"
	"errors"

	"chatapp-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSelfChat      = errors.New("a user cannot start a chat with themselves")
	ErrDuplicateChat = errors.New("chat between these users already exists")
)

type PrivateChatRepository struct {
	pool *pgxpool.Pool
}

func NewPrivateChatRepository(pool *pgxpool.Pool) *PrivateChatRepository {
	return &PrivateChatRepository{pool: pool}
}

// Create pairs two users. The pair is unordered; the unique index over
// LEAST/GREATEST rejects the reversed duplicate as well.
func (r *PrivateChatRepository) Create(ctx context.Context, user1ID, user2ID string) (*model.PrivateChat, error) {
	if user1ID == user2ID {
		return nil, ErrSelfChat
	}

	pc := &model.PrivateChat{User1ID: user1ID, User2ID: user2ID}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO private_chats (user1_id, user2_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at
	`, user1ID, user2ID).Scan(&pc.ID, &pc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDuplicateChat
		}
		return nil, err
	}
	return pc, nil
}

// ListForUser returns every chat the user participates in, newest first.
func (r *PrivateChatRepository) ListForUser(ctx context.Context, userID string) ([]model.PrivateChat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user1_id, user2_id, created_at
		FROM private_chats
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []model.PrivateChat
	for rows.Next() {
		var pc model.PrivateChat
		if err := rows.Scan(&pc.ID, &pc.User1ID, &pc.User2ID, &pc.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, pc)
	}
	return chats, rows.Err()
}
