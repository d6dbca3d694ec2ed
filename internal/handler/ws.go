package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"chatapp-backend/internal/model"
	"chatapp-backend/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

type WSHandler struct {
	hub     *service.Hub
	chatSvc *service.ChatService
	authSvc *service.AuthService
}

func NewWSHandler(hub *service.Hub, chatSvc *service.ChatService, authSvc *service.AuthService) *WSHandler {
	return &WSHandler{hub: hub, chatSvc: chatSvc, authSvc: authSvc}
}

// UpgradeRoom admits a connection into a named room. An invalid or missing
// token does not reject the socket; the connection is admitted anonymous.
func (h *WSHandler) UpgradeRoom(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID, name := h.identify(c.Query("token"))
	c.Locals("user_id", userID)
	c.Locals("user_name", name)
	return websocket.New(h.handleRoom)(c)
}

// UpgradeConversation admits a connection into the pairwise conversation
// with the user named in the path.
func (h *WSHandler) UpgradeConversation(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := uuid.Parse(c.Params("user_id")); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}
	userID, name := h.identify(c.Query("token"))
	c.Locals("user_id", userID)
	c.Locals("user_name", name)
	return websocket.New(h.handleConversation)(c)
}

// identify resolves the bearer token from the query string. Lenient
// admission: any failure yields the anonymous identity instead of a
// handshake rejection.
func (h *WSHandler) identify(token string) (string, string) {
	if token == "" {
		return "", "Anonymous"
	}
	userID, name, err := h.authSvc.ValidateAccessToken(token)
	if err != nil {
		return "", "Anonymous"
	}
	if name == "" {
		name = "Unknown"
	}
	return userID, name
}

func (h *WSHandler) handleRoom(conn *websocket.Conn) {
	room := conn.Params("room")
	group := service.RoomKey(room)
	name, _ := conn.Locals("user_name").(string)
	userID, _ := conn.Locals("user_id").(string)

	client := &service.Client{
		Conn:   conn,
		UserID: userID,
		Name:   name,
		Send:   make(chan []byte, sendBuffer),
	}

	h.hub.Register(group, client)
	defer h.hub.Drop(client)

	go h.writePump(client)

	// Welcome goes to the joining connection only, never the group
	h.hub.Send(client, model.Welcome{
		Message: fmt.Sprintf("Welcome to chat %s", room),
		Sender:  "System",
	})

	h.readLoop(conn, func(raw []byte) {
		h.roomFrame(client, room, group, raw)
	})
}

// roomFrame handles one inbound named-room frame. No inbound input is
// fatal: malformed or blank frames are dropped and the session stays up.
func (h *WSHandler) roomFrame(client *service.Client, room, group string, raw []byte) {
	var frame model.RoomFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Printf("WS: drop malformed room frame in %s: %v", room, err)
		return
	}
	if strings.TrimSpace(frame.Message) == "" {
		return
	}
	sender := frame.Sender
	if sender == "" {
		sender = "Anonymous"
	}
	h.hub.Deliver(group, model.RoomBroadcast{
		Message:   frame.Message,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}, client)
}

func (h *WSHandler) handleConversation(conn *websocket.Conn) {
	otherID := conn.Params("user_id")
	userID, _ := conn.Locals("user_id").(string)
	name, _ := conn.Locals("user_name").(string)

	// One canonical derivation shared with the post-append bridge, so a
	// persisted message can never miss a correctly-joined subscriber.
	group := service.ConversationKey(userID, otherID)

	client := &service.Client{
		Conn:   conn,
		UserID: userID,
		Name:   name,
		Send:   make(chan []byte, sendBuffer),
	}

	h.hub.Register(group, client)
	defer h.hub.Drop(client)

	go h.writePump(client)

	h.hub.Send(client, model.Welcome{
		Message: "Welcome to your conversation!",
		Sender:  name,
	})

	h.readLoop(conn, func(raw []byte) {
		h.conversationFrame(client, otherID, raw)
	})
}

// conversationFrame handles one inbound conversation frame. Malformed
// input, unknown actions, and failed appends all drop just that frame;
// only a transport close ends the session.
func (h *WSHandler) conversationFrame(client *service.Client, otherID string, raw []byte) {
	frame, err := model.DecodeFrame(raw)
	if err != nil {
		log.Printf("WS: drop malformed frame from %s: %v", client.Name, err)
		return
	}

	// Frames already accepted run to completion even if the socket
	// closes mid-persist.
	ctx := context.Background()

	switch f := frame.(type) {
	case model.MarkSeen:
		if _, err := h.chatSvc.MarkSeen(ctx, f.MessageIDs); err != nil {
			log.Printf("WS: mark seen failed for %s: %v", client.Name, err)
		}
	case model.ChatSend:
		if _, err := h.chatSvc.Send(ctx, client.UserID, otherID, f.Message, client); err != nil {
			log.Printf("WS: send from %s dropped: %v", client.Name, err)
		}
	case model.Unknown:
		log.Printf("WS: unknown action %q from %s", f.Action, client.Name)
	}
}

// readLoop processes inbound frames strictly in arrival order until the
// transport closes. No inbound error short of transport close ends the
// session.
func (h *WSHandler) readLoop(conn *websocket.Conn, handle func(raw []byte)) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		handle(raw)
	}
}

// writePump drains the client's send channel onto the socket and keeps the
// connection alive with pings. Exits when the hub closes the channel or a
// write fails.
func (h *WSHandler) writePump(c *service.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
