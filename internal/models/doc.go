// Package models defines the records persisted by gophchat: accounts, the
// friendship graph and request queues, direct threads, rooms and messages.
//
// JSON field names match the collections written by the browser
// client, so a snapshot exported there imports here unchanged.
package models
