package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/storage"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type env struct {
	db       *dbx.Serializer
	identity IdentityService
	social   SocialService
	chats    ConversationService
	snaps    SnapshotService
}

func newEnvWith(t *testing.T, verifier cryptox.CredentialVerifier) *env {
	t.Helper()

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "gophchat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := dbx.NewSerializer(db)
	log := logging.Discard()
	clock := timex.Fixed(testNow)

	return &env{
		db:       s,
		identity: NewIdentityService(s, verifier, clock, log),
		social:   NewSocialService(s, log),
		chats:    NewConversationService(s, verifier, clock, log),
		snaps:    NewSnapshotService(s, log),
	}
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, cryptox.PlainVerifier{})
}

// signup creates each user and returns the session of the last one.
func (e *env) signup(t *testing.T, users ...string) *models.Session {
	t.Helper()
	var sess *models.Session
	for _, u := range users {
		var err error
		sess, err = e.identity.Signup(context.Background(), u, u+"-secret")
		require.NoError(t, err)
	}
	return sess
}

func (e *env) befriend(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.social.SendFriendRequest(ctx, &models.Session{Username: a}, b))
	require.NoError(t, e.social.AcceptFriendRequest(ctx, &models.Session{Username: b}, a))
}

func as(user string) *models.Session {
	return &models.Session{Username: user}
}
