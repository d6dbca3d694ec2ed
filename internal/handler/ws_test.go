package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chatapp-backend/internal/model"
	"chatapp-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	aliceID = "0d9aa897-5cc2-4c39-b0e4-5d0c3a7ce40e"
	bobID   = "78f915cf-31cb-4dbb-b6ad-af29c0bfd842"
)

type stubUsers map[string]*model.User

func (s stubUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, model.ErrNotFound
}

type stubMessages struct {
	stored []*model.Message
	seen   []string
}

func (s *stubMessages) Insert(_ context.Context, senderID, receiverID, content string) (*model.Message, error) {
	m := &model.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	s.stored = append(s.stored, m)
	return m, nil
}

func (s *stubMessages) MarkSeen(_ context.Context, ids []string) (int64, error) {
	s.seen = append(s.seen, ids...)
	return int64(len(ids)), nil
}

func (s *stubMessages) ListConversation(_ context.Context, _, _ string) ([]model.Message, error) {
	return nil, nil
}

func newSessionFixture(t *testing.T) (*WSHandler, *stubMessages, *service.Client, *service.Client) {
	t.Helper()
	users := stubUsers{
		aliceID: {ID: aliceID, Name: "Alice"},
		bobID:   {ID: bobID, Name: "Bob"},
	}
	messages := &stubMessages{}
	hub := service.NewHub()
	h := NewWSHandler(hub, service.NewChatService(users, messages, hub), nil)

	sender := &service.Client{UserID: aliceID, Name: "Alice", Send: make(chan []byte, 8)}
	receiver := &service.Client{UserID: bobID, Name: "Bob", Send: make(chan []byte, 8)}
	group := service.ConversationKey(aliceID, bobID)
	hub.Register(group, sender)
	hub.Register(group, receiver)

	return h, messages, sender, receiver
}

func recvFrame(t *testing.T, c *service.Client) map[string]any {
	t.Helper()
	select {
	case data := <-c.Send:
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	default:
		t.Fatal("expected a frame, got none")
		return nil
	}
}

func TestConversationFrame_MalformedInputIsNotFatal(t *testing.T) {
	req := require.New(t)
	h, messages, sender, receiver := newSessionFixture(t)

	// Malformed JSON: no message, no broadcast, session keeps going
	h.conversationFrame(sender, bobID, []byte(`{"message":`))
	req.Empty(messages.stored)
	req.Empty(receiver.Send)
	req.Empty(sender.Send)

	// The very next frame on the same session still persists and fans out
	h.conversationFrame(sender, bobID, []byte(`{"message":"hi"}`))
	req.Len(messages.stored, 1)
	req.Equal("hi", messages.stored[0].Content)

	got := recvFrame(t, receiver)
	req.Equal("hi", got["message"])
	req.Equal("Alice", got["sender"])
	req.Empty(sender.Send, "sender must not receive its own echo")
}

func TestConversationFrame_BlankSendIsDropped(t *testing.T) {
	req := require.New(t)
	h, messages, sender, receiver := newSessionFixture(t)

	h.conversationFrame(sender, bobID, []byte(`{"message":"   "}`))

	req.Empty(messages.stored)
	req.Empty(receiver.Send)
}

func TestConversationFrame_MarkSeenProducesNoBroadcast(t *testing.T) {
	req := require.New(t)
	h, messages, sender, receiver := newSessionFixture(t)

	id := uuid.NewString()
	raw, err := json.Marshal(map[string]any{"action": "mark_seen", "message_ids": []string{id}})
	req.NoError(err)

	h.conversationFrame(sender, bobID, raw)

	req.Equal([]string{id}, messages.seen)
	req.Empty(receiver.Send)
	req.Empty(sender.Send)
}

func TestConversationFrame_UnknownActionIgnored(t *testing.T) {
	req := require.New(t)
	h, messages, sender, receiver := newSessionFixture(t)

	h.conversationFrame(sender, bobID, []byte(`{"action":"dance"}`))

	req.Empty(messages.stored)
	req.Empty(messages.seen)
	req.Empty(receiver.Send)
}

func TestRoomFrame_MalformedAndBlankDropped(t *testing.T) {
	req := require.New(t)
	users := stubUsers{}
	hub := service.NewHub()
	h := NewWSHandler(hub, service.NewChatService(users, &stubMessages{}, hub), nil)

	group := service.RoomKey("general")
	sender := &service.Client{Name: "Alice", Send: make(chan []byte, 8)}
	other := &service.Client{Name: "Bob", Send: make(chan []byte, 8)}
	hub.Register(group, sender)
	hub.Register(group, other)

	h.roomFrame(sender, "general", group, []byte(`not json`))
	h.roomFrame(sender, "general", group, []byte(`{"message":"  "}`))
	req.Empty(other.Send)
	req.Empty(sender.Send)

	h.roomFrame(sender, "general", group, []byte(`{"message":"hello","sender":"Alice"}`))
	got := recvFrame(t, other)
	req.Equal("hello", got["message"])
	req.Equal("Alice", got["sender"])
	req.NotEmpty(got["timestamp"])
	req.Empty(sender.Send)
}
