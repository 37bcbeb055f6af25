package cli

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/filex"
	"github.com/dmitrijs2005/gophchat/internal/netx"
	"github.com/dmitrijs2005/gophchat/internal/snapshot"
)

// maxSnapshotSize bounds snapshots read from files or stdin.
const maxSnapshotSize = 64 << 20

const (
	exportUsage = "export <file|-|s3[:key]|url> [armor]"
	importUsage = "import <file|-|s3[:key]|url>"
	shareUsage  = "share [key] [ttl]"
)

// s3Key reports whether dest names the bucket ("s3" or "s3:<key>") and the
// object key, empty for the configured default.
func s3Key(dest string) (string, bool) {
	if dest == "s3" {
		return "", true
	}
	if key, ok := strings.CutPrefix(dest, "s3:"); ok {
		return key, true
	}
	return "", false
}

func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 || (len(args) == 2 && args[1] != "armor") {
		return a.usage(exportUsage)
	}
	dest := args[0]
	armored := len(args) == 2

	blob, err := a.snaps.Export(ctx)
	if err != nil {
		return a.report(err)
	}
	contentType := "application/json"
	if armored {
		blob = []byte(snapshot.Armor(blob))
		contentType = "text/plain"
	}

	if key, ok := s3Key(dest); ok {
		store, err := a.newStore(ctx)
		if err != nil {
			return a.report(err)
		}
		if err := store.Put(ctx, key, blob, contentType); err != nil {
			return a.report(err)
		}
		printlnFn("Snapshot uploaded")
		return nil
	}

	if netx.IsURL(dest) {
		if err := netx.Put(ctx, dest, blob, contentType); err != nil {
			return a.report(err)
		}
		printlnFn("Snapshot uploaded")
		return nil
	}

	if err := filex.WriteSnapshot(dest, a.stdout, blob); err != nil {
		return a.report(err)
	}
	if dest != filex.Stdio {
		printlnFn("Snapshot written to", dest)
	}
	return nil
}

// Import overwrites the local collections present in the snapshot. Plain
// and armored snapshots are both accepted.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(importUsage)
	}
	src := args[0]

	var blob []byte
	var err error
	if key, ok := s3Key(src); ok {
		store, serr := a.newStore(ctx)
		if serr != nil {
			return a.report(serr)
		}
		blob, err = store.Get(ctx, key)
	} else if netx.IsURL(src) {
		blob, err = netx.Get(ctx, src, maxSnapshotSize)
	} else if src == filex.Stdio {
		var line string
		line, err = GetSimpleText(a.lines, "Paste snapshot", a.stdout)
		if err == nil {
			blob, err = filex.ReadSnapshot(src, strings.NewReader(line), maxSnapshotSize)
		}
	} else {
		blob, err = filex.ReadSnapshot(src, nil, maxSnapshotSize)
	}
	if err != nil {
		return a.report(err)
	}

	if err := a.snaps.Import(ctx, blob); err != nil {
		return a.report(err)
	}
	a.current = nil
	printlnFn("Snapshot imported")
	a.checkSessionAccount(ctx)
	return nil
}

// checkSessionAccount warns when an import dropped the account of the
// logged-in user. The session is kept; the next login decides.
func (a *App) checkSessionAccount(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	ok, err := a.identity.HasAccount(ctx, a.session.Username)
	if err != nil || ok {
		return
	}
	a.log.Warn(ctx, "session user missing after import", "user", a.session.Username)
	printlnFn("Warning: account", a.session.Username, "is not in the imported data; log out and sign in again")
}

// Share prints a presigned link to a snapshot object uploaded with
// "export s3". The other device imports it with "import <link>".
func (a *App) Share(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return a.usage(shareUsage)
	}
	var key string
	var ttl time.Duration
	if len(args) > 0 {
		key = args[0]
	}
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return a.usage(shareUsage)
		}
		ttl = d
	}

	store, err := a.newStore(ctx)
	if err != nil {
		return a.report(err)
	}
	link, err := store.PresignGet(ctx, key, ttl)
	if err != nil {
		return a.report(err)
	}
	printlnFn(link)
	return nil
}
