// Package metadata keeps process-local values that are not part of the
// durable collections and never travel in a snapshot, such as the session
// of the running client.
package metadata

import "context"

// KeySession holds the JSON encoded session of the last logged in user.
const KeySession = "session"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
