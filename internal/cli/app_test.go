package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/config"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/snapshot"
)

type memStore struct {
	objects map[string][]byte
	lastCT  string
}

func (m *memStore) Put(ctx context.Context, key string, blob []byte, contentType string) error {
	m.objects[key] = append([]byte(nil), blob...)
	m.lastCT = contentType
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (m *memStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key + "?ttl=" + ttl.String(), nil
}

type testApp struct {
	*App
	out    *[]string
	stdout *bytes.Buffer
	store  *memStore
}

// newTestApp builds an App on a fresh database; input feeds prompts and
// passwords line by line.
func newTestApp(t *testing.T, dbPath string, input ...string) *testApp {
	t.Helper()
	out := silence(t)
	stubTerminal(t, false, nil, nil)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if dbPath == "" {
		dbPath = filepath.Join(t.TempDir(), "nested", "gophchat.db")
	}
	cfg.DatabasePath = dbPath
	cfg.MaxFileSize = 16

	var stdout bytes.Buffer
	stdin := strings.NewReader(strings.Join(input, "\n") + "\n")
	app, err := newApp(context.Background(), cfg, logging.Discard(), stdin, &stdout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	store := &memStore{objects: map[string][]byte{}}
	app.newStore = func(ctx context.Context) (snapshotStore, error) { return store, nil }

	return &testApp{App: app, out: out, stdout: &stdout, store: store}
}

func (ta *testApp) printed(s string) bool {
	for _, line := range *ta.out {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func TestApp_SignupLoginFriendsAndChat(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "", "bob-secret", "alice-secret", "bob-secret")

	require.NoError(t, a.Signup(ctx, []string{"bob"}))
	require.NoError(t, a.Signup(ctx, []string{"alice"}))
	assert.Equal(t, "(alice)", a.getStatus())

	require.NoError(t, a.AddFriend(ctx, []string{"bob"}))
	require.Error(t, a.AddFriend(ctx, []string{"bob"}))
	assert.True(t, a.printed("Error: conflict"))
	require.ErrorIs(t, a.AddFriend(ctx, nil), errUsage)

	require.NoError(t, a.Login(ctx, []string{"bob"}))
	require.NoError(t, a.Requests(ctx))
	assert.True(t, a.printed("Incoming: alice"))
	require.NoError(t, a.Accept(ctx, []string{"alice"}))

	require.NoError(t, a.Open(ctx, []string{"alice"}))
	assert.Equal(t, "(bob @alice)", a.getStatus())
	require.NoError(t, a.Send(ctx, "hi alice"))
	require.ErrorIs(t, a.Send(ctx, ""), errUsage)

	thread, err := a.chats.DirectThread(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "hi alice", thread[0].Text)

	require.NoError(t, a.Chats(ctx))
	assert.True(t, a.printed("@alice"))

	require.NoError(t, a.Logout(ctx))
	assert.Equal(t, "", a.getStatus())
	require.Error(t, a.WhoAmI(ctx))
	require.Error(t, a.Friends(ctx))
}

func TestApp_LoginErrors(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "", "alice-secret", "nope", "wrong-pass")

	require.NoError(t, a.Signup(ctx, []string{"alice"}))
	require.Error(t, a.Login(ctx, []string{"ghost"}))
	assert.True(t, a.printed("user not found"))
	require.Error(t, a.Login(ctx, []string{"alice"}))
	assert.True(t, a.printed("incorrect password"))
	assert.Equal(t, "(alice)", a.getStatus(), "failed login keeps the session")
}

func TestApp_RestoresSession(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "gophchat.db")

	first := newTestApp(t, dbPath, "alice-secret")
	require.NoError(t, first.Signup(ctx, []string{"alice"}))
	require.NoError(t, first.Close())

	second := newTestApp(t, dbPath)
	require.True(t, second.isLoggedIn())
	require.NoError(t, second.WhoAmI(ctx))
	assert.True(t, second.printed("alice"))
}

func TestApp_Rooms(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "", "alice-secret", "prompted-pw")

	require.NoError(t, a.Signup(ctx, []string{"alice"}))
	require.NoError(t, a.CreateRoom(ctx, []string{"general"}))
	require.NoError(t, a.JoinRoom(ctx, []string{"general", "prompted-pw"}))
	require.Error(t, a.JoinRoom(ctx, []string{"general", "bad"}))
	require.NoError(t, a.Invite(ctx, []string{"general", "bob"}))

	require.NoError(t, a.Members(ctx, []string{"general"}))
	assert.True(t, a.printed("Members: alice, bob"))

	require.NoError(t, a.Open(ctx, []string{"#general"}))
	require.NoError(t, a.Send(ctx, "hello room"))
	require.NoError(t, a.History(ctx))
	assert.True(t, a.printed("alice: hello room"))

	require.NoError(t, a.LeaveRoom(ctx, []string{"general"}))
	assert.Nil(t, a.current)
	require.Error(t, a.Send(ctx, "anyone?"))
}

func TestApp_SendFile(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "", "alice-secret")
	require.NoError(t, a.Signup(ctx, []string{"alice"}))

	dir := t.TempDir()
	small := filepath.Join(dir, "hi.txt")
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(small, []byte("hi"), 0o600))
	require.NoError(t, os.WriteFile(big, bytes.Repeat([]byte("x"), 17), 0o600))

	require.Error(t, a.SendFile(ctx, []string{small}), "no conversation open")

	a.current = &models.ChatTarget{Name: "bob", Kind: models.ConversationUser}
	require.NoError(t, a.SendFile(ctx, []string{small}))
	require.Error(t, a.SendFile(ctx, []string{big}))
	assert.True(t, a.printed("file is larger than"))

	thread, err := a.chats.DirectThread(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "hi.txt", thread[0].Filename)
}

func TestApp_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestApp(t, "", "alice-secret")
	require.NoError(t, src.Signup(ctx, []string{"alice"}))
	require.NoError(t, src.CreateRoom(ctx, []string{"general", "pw"}))

	file := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, src.Export(ctx, []string{file}))
	require.NoError(t, src.Export(ctx, []string{"-", "armor"}))
	assert.True(t, strings.HasPrefix(src.stdout.String(), snapshot.ArmorPrefix))
	require.NoError(t, src.Export(ctx, []string{"s3:backup.json"}))
	assert.Equal(t, "application/json", src.store.lastCT)
	require.ErrorIs(t, src.Export(ctx, []string{"-", "zip"}), errUsage)

	armored := strings.TrimSpace(src.stdout.String())

	fromFile := newTestApp(t, "")
	require.NoError(t, fromFile.Import(ctx, []string{file}))
	members, err := fromFile.chats.RoomParticipants(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, members)

	fromStdin := newTestApp(t, "", armored)
	require.NoError(t, fromStdin.Import(ctx, []string{"-"}))
	_, err = fromStdin.identity.Login(ctx, "alice", "alice-secret")
	require.NoError(t, err)

	fromS3 := newTestApp(t, "")
	fromS3.store.objects = src.store.objects
	require.NoError(t, fromS3.Import(ctx, []string{"s3:backup.json"}))
	require.Error(t, fromS3.Import(ctx, []string{"s3"}))

	bad := newTestApp(t, "", "[1,2]")
	require.Error(t, bad.Import(ctx, []string{"-"}))
	assert.True(t, bad.printed("parse error"))
}

func TestApp_ImportWarnsWhenSessionAccountIsGone(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	keeps := filepath.Join(dir, "keeps.json")
	drops := filepath.Join(dir, "drops.json")
	require.NoError(t, os.WriteFile(keeps, []byte(`{"users":{"alice":{"username":"alice","password":"alice-secret","createdAt":"2024-01-01T00:00:00Z"}}}`), 0o600))
	require.NoError(t, os.WriteFile(drops, []byte(`{"users":{"bob":{"username":"bob","password":"bob-secret","createdAt":"2024-01-01T00:00:00Z"}}}`), 0o600))

	a := newTestApp(t, "", "alice-secret")
	require.NoError(t, a.Signup(ctx, []string{"alice"}))

	require.NoError(t, a.Import(ctx, []string{keeps}))
	assert.False(t, a.printed("Warning: account"))

	require.NoError(t, a.Import(ctx, []string{drops}))
	assert.True(t, a.printed("Warning: account alice is not in the imported data"))
	assert.True(t, a.isLoggedIn(), "session is kept")
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "5 MiB", sizeLabel(5<<20))
	assert.Equal(t, "16 bytes", sizeLabel(16))
}

func TestApp_ShareAndURLTransfer(t *testing.T) {
	ctx := context.Background()

	var served []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			served, _ = io.ReadAll(r.Body)
			return
		}
		_, _ = w.Write(served)
	}))
	defer ts.Close()

	src := newTestApp(t, "", "alice-secret")
	require.NoError(t, src.Signup(ctx, []string{"alice"}))
	require.NoError(t, src.Export(ctx, []string{ts.URL + "/upload", "armor"}))
	require.True(t, strings.HasPrefix(string(served), snapshot.ArmorPrefix))

	require.NoError(t, src.Share(ctx, []string{"backup.json", "1h"}))
	assert.True(t, src.printed("https://signed.example/backup.json?ttl=1h0m0s"))
	require.ErrorIs(t, src.Share(ctx, []string{"k", "soon"}), errUsage)

	dst := newTestApp(t, "")
	require.NoError(t, dst.Import(ctx, []string{ts.URL + "/download"}))
	_, err := dst.identity.Login(ctx, "alice", "alice-secret")
	require.NoError(t, err)
}
