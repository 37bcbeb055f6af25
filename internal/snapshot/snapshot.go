// Package snapshot converts the durable collections to and from the
// single JSON document used to move a whole installation to another device.
//
// The document is field-wise: each top-level field carries one collection
// verbatim. Export always writes every field, with {} for a collection that
// was never stored. Importing overwrites every collection that is present and
// leaves the others alone; nothing is merged.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/repositories/collections"
)

// Document is the wire form of a snapshot. Field names follow the browser
// client so its exports import unchanged.
type Document struct {
	Users          json.RawMessage `json:"users"`
	Messages       json.RawMessage `json:"messages"`
	Rooms          json.RawMessage `json:"rooms"`
	Friends        json.RawMessage `json:"friends"`
	FriendRequests json.RawMessage `json:"friend_requests"`
}

// State holds raw collection documents by collection key. A key that is
// missing was never written.
type State map[string][]byte

// field binds a document field to its collection and to the shape the
// collection must decode into.
type field struct {
	key   string
	get   func(d *Document) *json.RawMessage
	shape func() any
}

var fields = []field{
	{collections.KeyAccounts, func(d *Document) *json.RawMessage { return &d.Users }, func() any { return &models.Accounts{} }},
	{collections.KeyDirectMessages, func(d *Document) *json.RawMessage { return &d.Messages }, func() any { return &models.DirectMessages{} }},
	{collections.KeyRooms, func(d *Document) *json.RawMessage { return &d.Rooms }, func() any { return &models.Rooms{} }},
	{collections.KeyFriends, func(d *Document) *json.RawMessage { return &d.Friends }, func() any { return &models.UserSets{} }},
	{collections.KeyFriendRequests, func(d *Document) *json.RawMessage { return &d.FriendRequests }, func() any { return &models.UserSets{} }},
}

var emptyCollection = json.RawMessage(`{}`)

// absent reports whether a field carries no collection: missing, null, or a
// falsy scalar (false, "", 0) as written by older clients.
func absent(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return true
	}
	switch raw[0] {
	case '{', '[':
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	}
	return false
}

// Export renders state as a plain JSON snapshot. Every collection is
// written; one missing from state is exported empty so that importing the
// snapshot elsewhere clears it there too.
func Export(state State) ([]byte, error) {
	var doc Document
	for _, f := range fields {
		raw, ok := state[f.key]
		if !ok || absent(raw) {
			raw = emptyCollection
		}
		*f.get(&doc) = json.RawMessage(raw)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return out, nil
}

// Parse decodes a snapshot given as plain JSON or in armored form and checks
// that every present field has the shape of its collection.
func Parse(blob []byte) (*Document, error) {
	plain, err := Decode(blob)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(plain)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: snapshot must be a JSON object", common.ErrorParse)
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorParse, err)
	}

	for _, f := range fields {
		raw := f.get(&doc)
		if absent(*raw) {
			*raw = nil
			continue
		}
		if err := json.Unmarshal(*raw, f.shape()); err != nil {
			return nil, fmt.Errorf("%w: field for %s: %v", common.ErrorParse, f.key, err)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, *raw); err != nil {
			return nil, fmt.Errorf("%w: field for %s: %v", common.ErrorParse, f.key, err)
		}
		*raw = buf.Bytes()
	}
	return &doc, nil
}

// Apply returns current with every collection present in blob replaced.
// current is not modified; on error it is the only valid state.
func Apply(current State, blob []byte) (State, error) {
	doc, err := Parse(blob)
	if err != nil {
		return nil, err
	}

	next := maps.Clone(current)
	if next == nil {
		next = State{}
	}
	for _, f := range fields {
		if raw := *f.get(doc); raw != nil {
			next[f.key] = []byte(raw)
		}
	}
	return next, nil
}
