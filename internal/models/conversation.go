package models

// ConversationKind tells rooms from direct threads in a conversation listing.
type ConversationKind string

const (
	ConversationRoom ConversationKind = "room"
	ConversationUser ConversationKind = "user"
)

// Conversation is one entry of the combined chat list.
type Conversation struct {
	Name string           `json:"name"`
	Kind ConversationKind `json:"kind"`
}

// ChatTarget is the thread a message is sent to: a user for direct
// messages or a room.
type ChatTarget = Conversation
