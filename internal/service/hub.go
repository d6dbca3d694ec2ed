package service

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client is one live connection. The pointer itself is the connection
// handle: two sockets authenticated as the same user are distinct members,
// and broadcast self-exclusion compares handles, not user ids.
type Client struct {
	Conn   *websocket.Conn
	UserID string
	Name   string
	Send   chan []byte
}

// Hub tracks which live connections belong to which group and fans events
// out to them. Membership is in-memory only; durability is the message
// store's job, not the hub's.
type Hub struct {
	mu      sync.Mutex
	groups  map[string]map[*Client]bool
	members map[*Client]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		groups:  make(map[string]map[*Client]bool),
		members: make(map[*Client]map[string]bool),
	}
}

// Register adds the client to the group. Idempotent per client/group pair.
func (h *Hub) Register(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][c] = true

	if h.members[c] == nil {
		h.members[c] = make(map[string]bool)
	}
	h.members[c][group] = true

	log.Printf("WS: %s joined %s (members: %d)", c.displayName(), group, len(h.groups[group]))
}

// Unregister removes the client from one group. Safe to call when the
// client is not a member.
func (h *Hub) Unregister(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.groups[group]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.groups, group)
		}
	}
	if set, ok := h.members[c]; ok {
		delete(set, group)
		if len(set) == 0 {
			delete(h.members, c)
		}
	}
}

// Drop removes the client from every group it joined and closes its send
// channel. Called once on disconnect; repeated calls are no-ops.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *Client) {
	set, ok := h.members[c]
	if !ok {
		return
	}
	for group := range set {
		delete(h.groups[group], c)
		if len(h.groups[group]) == 0 {
			delete(h.groups, group)
		}
	}
	delete(h.members, c)
	close(c.Send)
	log.Printf("WS: %s disconnected (online: %d)", c.displayName(), len(h.members))
}

// Deliver sends the payload to every member of the group except exclude.
// A member whose send buffer is full or gone is evicted from all groups;
// one bad subscriber never blocks delivery to the rest. At-most-once,
// best-effort: nothing is queued for connections not live right now.
func (h *Hub) Deliver(group string, payload any, exclude *Client) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("WS: marshal payload for %s: %v", group, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var dead []*Client
	for c := range h.groups[group] {
		if c == exclude {
			continue
		}
		select {
		case c.Send <- data:
		default:
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		h.dropLocked(c)
	}
}

// Send delivers a payload to a single client, e.g. the join welcome. The
// membership check and the channel write happen under the hub lock, so a
// concurrent eviction or shutdown closing the channel cannot race the send.
func (h *Hub) Send(c *Client, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.members[c]; !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// GroupSize reports the current member count of a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[group])
}

func (h *Hub) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.members)
}

// CloseAll drops every client. Used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.members {
		h.dropLocked(c)
	}
}

func (c *Client) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "anonymous"
}
