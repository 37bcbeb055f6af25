// Package collections stores the durable gophchat collections. Each
// collection is one JSON document addressed by a fixed key, read and written
// as a whole, the same per-key layout the browser client keeps.
package collections

import "context"

// Keys of the persisted collections.
const (
	KeyAccounts       = "accounts"
	KeyFriends        = "friends"
	KeyFriendRequests = "friend_requests"
	KeyRooms          = "rooms"
	KeyDirectMessages = "direct_messages"
)

// AllKeys lists every collection key in a stable order.
var AllKeys = []string{KeyAccounts, KeyFriends, KeyFriendRequests, KeyRooms, KeyDirectMessages}

// Repository reads and writes raw collection documents.
//
// Get returns (nil, nil) when the collection has never been written.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
