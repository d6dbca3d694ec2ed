package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeFrame_ChatSend(t *testing.T) {
	req := require.New(t)

	frame, err := DecodeFrame([]byte(`{"message":"hi there"}`))
	req.NoError(err)

	send, ok := frame.(ChatSend)
	req.True(ok)
	req.Equal("hi there", send.Message)
}

func TestDecodeFrame_MarkSeen(t *testing.T) {
	req := require.New(t)

	frame, err := DecodeFrame([]byte(`{"action":"mark_seen","message_ids":["a","b"]}`))
	req.NoError(err)

	seen, ok := frame.(MarkSeen)
	req.True(ok)
	req.Equal([]string{"a", "b"}, seen.MessageIDs)
}

func TestDecodeFrame_UnknownAction(t *testing.T) {
	req := require.New(t)

	frame, err := DecodeFrame([]byte(`{"action":"dance","message":"ignored"}`))
	req.NoError(err)

	unknown, ok := frame.(Unknown)
	req.True(ok)
	req.Equal("dance", unknown.Action)
}

func TestDecodeFrame_MalformedJSON(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"message":`))
	require.Error(t, err)
}

func TestDecodeFrame_EmptyChatSendStillDecodes(t *testing.T) {
	// Blank content is a validation concern, not a decode failure
	frame, err := DecodeFrame([]byte(`{}`))
	require.NoError(t, err)
	_, ok := frame.(ChatSend)
	require.True(t, ok)
}
