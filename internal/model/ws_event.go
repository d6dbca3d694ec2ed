package model

import (
	"encoding/json"
	"time"
)

// Inbound frames decode into an explicit variant at the boundary so sessions
// switch on a type, not on a raw action string.

type Frame interface{ frame() }

// ChatSend is a plain conversation message from the client.
type ChatSend struct {
	Message string `json:"message"`
}

// MarkSeen asks the server to flag the listed messages as seen.
type MarkSeen struct {
	MessageIDs []string `json:"message_ids"`
}

// Unknown carries an action the server does not recognize.
type Unknown struct {
	Action string `json:"action"`
}

func (ChatSend) frame() {}
func (MarkSeen) frame() {}
func (Unknown) frame()  {}

const actionMarkSeen = "mark_seen"

// DecodeFrame parses an inbound conversation frame. Malformed JSON returns
// an error; the caller drops the frame and keeps the connection open.
func DecodeFrame(data []byte) (Frame, error) {
	var raw struct {
		Action     string   `json:"action"`
		Message    string   `json:"message"`
		MessageIDs []string `json:"message_ids"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Action {
	case "":
		return ChatSend{Message: raw.Message}, nil
	case actionMarkSeen:
		return MarkSeen{MessageIDs: raw.MessageIDs}, nil
	default:
		return Unknown{Action: raw.Action}, nil
	}
}

// RoomFrame is the inbound shape on the named-room endpoint.
type RoomFrame struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// RoomBroadcast is what room members receive.
type RoomBroadcast struct {
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationBroadcast is what the other side of a conversation receives
// after a message is persisted.
type ConversationBroadcast struct {
	Message    string `json:"message"`
	Sender     string `json:"sender"`
	ReceiverID string `json:"receiver_id"`
	MessageID  string `json:"message_id"`
	Seen       bool   `json:"seen"`
}

// Welcome is sent to the joining connection only, never broadcast.
type Welcome struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}
