package service

// ConversationKey derives the group key for a one-to-one conversation.
// The two ids are sorted first, so key(a,b) == key(b,a) and both
// participants converge on the same group without coordination. Every
// path that addresses a conversation (live join, post-append fan-out)
// must go through this function.
func ConversationKey(userA, userB string) string {
	lo, hi := userA, userB
	if hi < lo {
		lo, hi = hi, lo
	}
	return "conversation_" + lo + "_" + hi
}

// RoomKey derives the group key for a named room.
func RoomKey(room string) string {
	return "chat_" + room
}
