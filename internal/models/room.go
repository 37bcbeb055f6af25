package models

import "slices"

// Room is a named, password-gated multi-party thread. The name is the key
// of the Rooms map.
type Room struct {
	Password     string    `json:"password"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
}

// HasParticipant reports whether username is a member of the room.
func (r *Room) HasParticipant(username string) bool {
	return slices.Contains(r.Participants, username)
}

// Rooms maps room name to Room. Persisted under the "rooms" key.
type Rooms map[string]*Room
