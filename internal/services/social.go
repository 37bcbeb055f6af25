package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/repositories/collections"
)

// SocialService owns the friendship graph and the friend request queues.
// The session user is the sender of outgoing requests and the recipient of
// incoming ones.
//
// Friendship becomes symmetric only through AcceptFriendRequest.
// RemoveFriend edits the caller's own list only; the other side keeps its
// edge until it removes it too.
type SocialService interface {
	SendFriendRequest(ctx context.Context, sess *models.Session, to string) error
	CancelFriendRequest(ctx context.Context, sess *models.Session, to string) error
	AcceptFriendRequest(ctx context.Context, sess *models.Session, from string) error
	DeclineFriendRequest(ctx context.Context, sess *models.Session, from string) error
	RemoveFriend(ctx context.Context, sess *models.Session, other string) error

	IncomingRequests(ctx context.Context, sess *models.Session) ([]string, error)
	OutgoingRequests(ctx context.Context, sess *models.Session) ([]string, error)
	Friends(ctx context.Context, sess *models.Session) ([]string, error)
}

type socialService struct {
	db  *dbx.Serializer
	log logging.Logger
}

func NewSocialService(db *dbx.Serializer, log logging.Logger) SocialService {
	return &socialService{db: db, log: log.With("component", "social")}
}

func (s *socialService) SendFriendRequest(ctx context.Context, sess *models.Session, to string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	from := sess.Username

	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		accounts, err := loadAccounts(ctx, repo)
		if err != nil {
			return err
		}
		if _, ok := accounts[to]; !ok {
			return fmt.Errorf("%w: user %q", common.ErrorNotFound, to)
		}
		if to == from {
			return fmt.Errorf("%w: cannot friend yourself", common.ErrorValidation)
		}

		friends, err := loadUserSets(ctx, repo, collections.KeyFriends)
		if err != nil {
			return err
		}
		if friends.Has(from, to) {
			return fmt.Errorf("%w: already friends", common.ErrorConflict)
		}

		requests, err := loadUserSets(ctx, repo, collections.KeyFriendRequests)
		if err != nil {
			return err
		}
		if !requests.Add(to, from) {
			return fmt.Errorf("%w: request already sent", common.ErrorConflict)
		}
		return collections.Save(ctx, repo, collections.KeyFriendRequests, requests)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "friend request sent", "from", from, "to", to)
	return nil
}

// dequeue removes from out of owner's request queue and reports whether it
// was there. The queue is saved only when it changed.
func dequeue(ctx context.Context, repo collections.Repository, owner, from string) (bool, error) {
	requests, err := loadUserSets(ctx, repo, collections.KeyFriendRequests)
	if err != nil {
		return false, err
	}
	if !requests.Remove(owner, from) {
		return false, nil
	}
	return true, collections.Save(ctx, repo, collections.KeyFriendRequests, requests)
}

func (s *socialService) CancelFriendRequest(ctx context.Context, sess *models.Session, to string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := dequeue(ctx, collections.NewSQLiteRepository(tx), to, sess.Username)
		return err
	})
}

func (s *socialService) AcceptFriendRequest(ctx context.Context, sess *models.Session, from string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	self := sess.Username

	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		found, err := dequeue(ctx, repo, self, from)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: no friend request from %q", common.ErrorNotFound, from)
		}

		friends, err := loadUserSets(ctx, repo, collections.KeyFriends)
		if err != nil {
			return err
		}
		friends.Add(self, from)
		friends.Add(from, self)
		return collections.Save(ctx, repo, collections.KeyFriends, friends)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "friend request accepted", "user", self, "from", from)
	return nil
}

func (s *socialService) DeclineFriendRequest(ctx context.Context, sess *models.Session, from string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := dequeue(ctx, collections.NewSQLiteRepository(tx), sess.Username, from)
		return err
	})
}

func (s *socialService) RemoveFriend(ctx context.Context, sess *models.Session, other string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		friends, err := loadUserSets(ctx, repo, collections.KeyFriends)
		if err != nil {
			return err
		}
		if !friends.Remove(sess.Username, other) {
			return nil
		}
		return collections.Save(ctx, repo, collections.KeyFriends, friends)
	})
}

func (s *socialService) readSets(ctx context.Context, key string) (models.UserSets, error) {
	var sets models.UserSets
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		sets, err = loadUserSets(ctx, collections.NewSQLiteRepository(db), key)
		return err
	})
	return sets, err
}

func (s *socialService) IncomingRequests(ctx context.Context, sess *models.Session) ([]string, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	requests, err := s.readSets(ctx, collections.KeyFriendRequests)
	if err != nil {
		return nil, err
	}
	return requests.Members(sess.Username), nil
}

// OutgoingRequests scans every queue for the session user.
func (s *socialService) OutgoingRequests(ctx context.Context, sess *models.Session) ([]string, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	requests, err := s.readSets(ctx, collections.KeyFriendRequests)
	if err != nil {
		return nil, err
	}
	return requests.Owners(sess.Username), nil
}

func (s *socialService) Friends(ctx context.Context, sess *models.Session) ([]string, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	friends, err := s.readSets(ctx, collections.KeyFriends)
	if err != nil {
		return nil, err
	}
	return friends.Members(sess.Username), nil
}
