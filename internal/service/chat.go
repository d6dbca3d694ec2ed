package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"chatapp-backend/internal/model"

	"github.com/google/uuid"
)

var (
	ErrEmptyContent     = errors.New("message content is empty")
	ErrUserNotFound     = errors.New("sender or receiver not found")
	ErrStoreUnavailable = errors.New("message store unavailable")
)

// UserStore resolves user identities for sender/receiver validation.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// MessageStore is the durable record of conversation messages.
type MessageStore interface {
	Insert(ctx context.Context, senderID, receiverID, content string) (*model.Message, error)
	MarkSeen(ctx context.Context, ids []string) (int64, error)
	ListConversation(ctx context.Context, userA, userB string) ([]model.Message, error)
}

// ChatService owns the single write path for chat content. Every writer —
// a live websocket session or a REST creation endpoint — goes through Send,
// which validates, persists, and then fans the message out to whoever is
// connected to the conversation group right now.
type ChatService struct {
	users    UserStore
	messages MessageStore
	hub      *Hub
}

func NewChatService(users UserStore, messages MessageStore, hub *Hub) *ChatService {
	return &ChatService{users: users, messages: messages, hub: hub}
}

// Send validates and persists one message, then delivers it to the live
// members of the conversation group. exclude is the originating connection
// when the writer is a live session (so it never sees its own echo) and nil
// for out-of-band writers.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, content string, exclude *Client) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, lookupErr(err)
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, lookupErr(err)
	}

	msg, err := s.messages.Insert(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.hub.Deliver(ConversationKey(senderID, receiverID), model.ConversationBroadcast{
		Message:    msg.Content,
		Sender:     sender.Name,
		ReceiverID: receiverID,
		MessageID:  msg.ID,
		Seen:       false,
	}, exclude)

	return msg, nil
}

// MarkSeen flags the listed messages as seen. Ids that do not parse, do not
// exist, or are already seen are skipped; the rest of the batch still goes
// through.
func (s *ChatService) MarkSeen(ctx context.Context, ids []string) (int64, error) {
	valid := ids[:0:0]
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			log.Printf("[Chat] mark seen: skipping invalid id %q", id)
			continue
		}
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		return 0, nil
	}

	n, err := s.messages.MarkSeen(ctx, valid)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// ListConversation returns the full two-sided history between two users,
// oldest first.
func (s *ChatService) ListConversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	msgs, err := s.messages.ListConversation(ctx, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return msgs, nil
}

func lookupErr(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
