// Package cli provides the interactive gophchat command-line client.
//
// It wires configuration, the local SQLite store and the services, then runs
// a REPL over stdin. The CLI also plays the collaborators the stores leave
// out: it reads attachments from disk (with the size ceiling), prompts for
// passwords and carries snapshots to files, stdout or an S3 bucket.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
