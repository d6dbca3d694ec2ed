package model

import "time"

// Message is a stored chat message between two users. Seen only ever flips
// false -> true, via the bulk mark-seen operation.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"created_at"`
}

// PrivateChat pairs two distinct users. The pair is unordered: (A,B) and
// (B,A) denote the same chat.
type PrivateChat struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatPostRequest struct {
	Message string `json:"message"`
}

type PrivateChatCreateRequest struct {
	UserID string `json:"user_id"`
}
