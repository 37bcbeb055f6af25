package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/repositories/collections"
)

func requireSession(sess *models.Session) error {
	if sess == nil || sess.Username == "" {
		return fmt.Errorf("%w: not logged in", common.ErrorUnauthorized)
	}
	return nil
}

func loadAccounts(ctx context.Context, r collections.Repository) (models.Accounts, error) {
	accounts := models.Accounts{}
	if err := collections.Load(ctx, r, collections.KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = models.Accounts{}
	}
	return accounts, nil
}

func loadUserSets(ctx context.Context, r collections.Repository, key string) (models.UserSets, error) {
	sets := models.UserSets{}
	if err := collections.Load(ctx, r, key, &sets); err != nil {
		return nil, err
	}
	if sets == nil {
		sets = models.UserSets{}
	}
	return sets, nil
}

func loadRooms(ctx context.Context, r collections.Repository) (models.Rooms, error) {
	rooms := models.Rooms{}
	if err := collections.Load(ctx, r, collections.KeyRooms, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = models.Rooms{}
	}
	for name, room := range rooms {
		if room == nil {
			delete(rooms, name)
		}
	}
	return rooms, nil
}

func loadDirectMessages(ctx context.Context, r collections.Repository) (models.DirectMessages, error) {
	threads := models.DirectMessages{}
	if err := collections.Load(ctx, r, collections.KeyDirectMessages, &threads); err != nil {
		return nil, err
	}
	if threads == nil {
		threads = models.DirectMessages{}
	}
	return threads, nil
}
