package services

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/repositories/collections"
	"github.com/dmitrijs2005/gophchat/internal/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// IdentityService owns accounts and the session of the running client.
//
// Contract:
//   - Signup: validate, create the account, start a session for it.
//   - Login: start a session when the password matches.
//   - Logout: forget the session; accounts stay.
//   - RestoreSession: the session left by the previous run, or nil.
//   - HasAccount: whether username is a stored account.
type IdentityService interface {
	Signup(ctx context.Context, username, password string) (*models.Session, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	RestoreSession(ctx context.Context) (*models.Session, error)
	HasAccount(ctx context.Context, username string) (bool, error)
}

type identityService struct {
	db       *dbx.Serializer
	verifier cryptox.CredentialVerifier
	clock    timex.Clock
	log      logging.Logger
}

func NewIdentityService(db *dbx.Serializer, verifier cryptox.CredentialVerifier, clock timex.Clock, log logging.Logger) IdentityService {
	return &identityService{db: db, verifier: verifier, clock: clock, log: log.With("component", "identity")}
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", common.ErrorValidation, MinUsernameLength)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}
	return nil
}

func saveSession(ctx context.Context, r metadata.Repository, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.Set(ctx, metadata.KeySession, raw)
}

func (s *identityService) Signup(ctx context.Context, username, password string) (*models.Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	sealed, err := s.verifier.Seal(password)
	if err != nil {
		return nil, fmt.Errorf("failed to seal password: %w", err)
	}

	sess := &models.Session{Username: username}
	err = s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		accounts, err := loadAccounts(ctx, repo)
		if err != nil {
			return err
		}
		if _, ok := accounts[username]; ok {
			return fmt.Errorf("%w: username already exists", common.ErrorConflict)
		}

		accounts[username] = models.Account{Username: username, Password: sealed, CreatedAt: s.clock()}
		if err := collections.Save(ctx, repo, collections.KeyAccounts, accounts); err != nil {
			return err
		}
		return saveSession(ctx, metadata.NewSQLiteRepository(tx), sess)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account created", "username", username)
	return sess, nil
}

func (s *identityService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	sess := &models.Session{Username: username}
	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		accounts, err := loadAccounts(ctx, collections.NewSQLiteRepository(tx))
		if err != nil {
			return err
		}

		account, ok := accounts[username]
		if !ok {
			return fmt.Errorf("%w: user %q", common.ErrorNotFound, username)
		}
		if !s.verifier.Verify(account.Password, password) {
			return fmt.Errorf("%w: incorrect password", common.ErrorAuth)
		}

		return saveSession(ctx, metadata.NewSQLiteRepository(tx), sess)
	})
	if err != nil {
		s.log.Warn(ctx, "login failed", "username", username, "error", err)
		return nil, err
	}

	s.log.Info(ctx, "logged in", "username", username)
	return sess, nil
}

func (s *identityService) Logout(ctx context.Context) error {
	return s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.KeySession)
	})
}

func (s *identityService) RestoreSession(ctx context.Context) (*models.Session, error) {
	var raw []byte
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		raw, err = metadata.NewSQLiteRepository(db).Get(ctx, metadata.KeySession)
		return err
	})
	if err != nil || raw == nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Username == "" {
		s.log.Warn(ctx, "ignoring unreadable session", "error", err)
		return nil, nil
	}
	return &sess, nil
}

func (s *identityService) HasAccount(ctx context.Context, username string) (bool, error) {
	var found bool
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		accounts, err := loadAccounts(ctx, collections.NewSQLiteRepository(db))
		if err != nil {
			return err
		}
		_, found = accounts[username]
		return nil
	})
	return found, err
}
