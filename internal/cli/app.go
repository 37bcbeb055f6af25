package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/config"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/filex"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/objectstore"
	"github.com/dmitrijs2005/gophchat/internal/services"
	"github.com/dmitrijs2005/gophchat/internal/storage"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// snapshotStore is the remote side of "export s3" and "import s3".
type snapshotStore interface {
	Put(ctx context.Context, key string, blob []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type App struct {
	config   *config.Config
	db       *sql.DB
	log      logging.Logger
	identity services.IdentityService
	social   services.SocialService
	chats    services.ConversationService
	snaps    services.SnapshotService

	session *models.Session
	current *models.ChatTarget

	lines  *bufio.Scanner
	stdout io.Writer

	newStore func(ctx context.Context) (snapshotStore, error)
}

// NewApp opens the database named in c and restores the previous session.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)
	return newApp(ctx, c, log, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, stdin io.Reader, stdout io.Writer) (*App, error) {
	verifier, err := cryptox.NewVerifier(c.PasswordScheme)
	if err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	s := dbx.NewSerializer(db)
	a := &App{
		config:   c,
		db:       db,
		log:      log,
		identity: services.NewIdentityService(s, verifier, timex.UTCNow, log),
		social:   services.NewSocialService(s, log),
		chats:    services.NewConversationService(s, verifier, timex.UTCNow, log),
		snaps:    services.NewSnapshotService(s, log),
		lines:    bufio.NewScanner(stdin),
		stdout:   stdout,
	}
	a.lines.Buffer(make([]byte, 0, 64*1024), maxSnapshotSize)
	a.newStore = func(ctx context.Context) (snapshotStore, error) {
		return objectstore.New(ctx, c.S3, log)
	}

	sess, err := a.identity.RestoreSession(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.session = sess
	return a, nil
}

// Run starts the REPL and closes the database when the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to gophchat (type 'help' for commands)")
	if a.isLoggedIn() {
		printlnFn("Logged in as", a.session.Username)
	}
	runREPL(ctx, a, a.getStatus, a.lines)
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	s := a.session.Username
	if a.current != nil {
		s += " " + targetLabel(*a.current)
	}
	return fmt.Sprintf("(%s)", s)
}

func targetLabel(t models.ChatTarget) string {
	if t.Kind == models.ConversationRoom {
		return "#" + t.Name
	}
	return "@" + t.Name
}

// report prints err for the user and hands it back so handlers can
// `return a.report(err)`.
func (a *App) report(err error) error {
	printlnFn("Error:", err.Error())
	return err
}

func (a *App) usage(text string) error {
	printlnFn("Usage:", text)
	return errUsage
}
