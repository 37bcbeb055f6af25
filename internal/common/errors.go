// Package common defines sentinel errors shared by the gophchat stores and
// the CLI. Callers should use errors.Is to match these values; operations
// wrap them with a human-readable detail, e.g.
//
//	fmt.Errorf("%w: username must be at least 3 characters", common.ErrorValidation)
package common

import "errors"

var (
	// Input errors: empty or too short fields, missing chat target.
	ErrorValidation = errors.New("validation error")

	// Referenced account, room or friend request is absent.
	ErrorNotFound = errors.New("not found")

	// Duplicate username, room name, request or friendship.
	ErrorConflict = errors.New("conflict")

	// Password mismatch for an account or a room.
	ErrorAuth = errors.New("authentication failed")

	// Malformed snapshot blob.
	ErrorParse = errors.New("parse error")

	// Operation requires a session (or room membership) the caller does not have.
	ErrorUnauthorized = errors.New("unauthorized")
)
