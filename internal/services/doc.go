// Package services implements the gophchat stores on top of the local
// collections: identity (accounts and session), the social graph (friends
// and friend requests), conversations (direct threads and rooms) and the
// snapshot transfer.
//
// Every mutating operation is a read-modify-write of the durable
// collections run through a shared dbx.Serializer, so no operation works
// on a stale copy and a failed write leaves the previous state in place.
//
// Operations take the caller's *models.Session explicitly. Failures wrap
// the sentinels of package common; match them with errors.Is.
package services
