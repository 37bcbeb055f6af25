package models

import "time"

// Account is a registered local identity.
type Account struct {
	// Username is unique and case-sensitive.
	Username string `json:"username"`

	// Password holds whatever the configured credential verifier sealed:
	// the plain password by default.
	Password string `json:"password"`

	CreatedAt time.Time `json:"createdAt"`
}

// Accounts maps username to Account. Persisted under the "accounts" key.
type Accounts map[string]Account

// Session identifies the authenticated user. It is passed explicitly to
// every store operation and never exported in a snapshot.
type Session struct {
	Username string `json:"username"`
}
