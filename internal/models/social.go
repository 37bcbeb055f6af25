package models

import "slices"

// UserSets maps a username to a set of usernames, stored as a JSON array to
// stay compatible with existing snapshots. It backs both the friendship
// graph ("friends") and the pending request queues ("friend_requests"),
// where the key is the recipient and the values are the requesters.
type UserSets map[string][]string

// Has reports whether member is in owner's set.
func (s UserSets) Has(owner, member string) bool {
	return slices.Contains(s[owner], member)
}

// Add appends member to owner's set. It returns false when member was
// already present.
func (s UserSets) Add(owner, member string) bool {
	if s.Has(owner, member) {
		return false
	}
	s[owner] = append(s[owner], member)
	return true
}

// Remove drops member from owner's set. It returns false when nothing was
// removed. An emptied set is kept as an empty list.
func (s UserSets) Remove(owner, member string) bool {
	list, ok := s[owner]
	if !ok {
		return false
	}
	kept := slices.DeleteFunc(slices.Clone(list), func(u string) bool { return u == member })
	if len(kept) == len(list) {
		return false
	}
	s[owner] = kept
	return true
}

// Members returns a copy of owner's set, never nil.
func (s UserSets) Members(owner string) []string {
	out := make([]string, 0, len(s[owner]))
	return append(out, s[owner]...)
}

// Owners returns, sorted, every key whose set contains member.
func (s UserSets) Owners(member string) []string {
	out := make([]string, 0)
	for owner, list := range s {
		if slices.Contains(list, member) {
			out = append(out, owner)
		}
	}
	slices.Sort(out)
	return out
}
