package models

import (
	"sort"
	"strings"
	"time"
)

// MessageType distinguishes text from file messages.
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// ConversationKeySeparator joins the two usernames of a direct thread key.
const ConversationKeySeparator = "_"

// Message is an append-only entry of a direct thread or a room.
type Message struct {
	// ID is a random UUID; messages imported from older snapshots may lack one.
	ID string `json:"id,omitempty"`

	From string `json:"from"`

	// To is set for direct messages only.
	To string `json:"to,omitempty"`

	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`

	Text string `json:"text,omitempty"`

	// Filename and Data describe a file message; Data is a data URL.
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Attachment is a file payload handed to the store by the input collaborator.
type Attachment struct {
	Filename string
	Data     string
}

// DirectMessages maps a conversation key to its ordered thread.
// Persisted under the "direct_messages" key.
type DirectMessages map[string][]Message

// ConversationKey returns the canonical key of the thread between a and b;
// argument order does not matter.
func ConversationKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ConversationKeySeparator)
}

// Partner returns the counterpart of user in a direct thread, taken from the
// messages themselves so usernames containing the separator stay unambiguous.
// ok is false when user takes no part in the thread.
func Partner(thread []Message, user string) (partner string, ok bool) {
	for _, m := range thread {
		switch user {
		case m.From:
			return m.To, true
		case m.To:
			return m.From, true
		}
	}
	return "", false
}
