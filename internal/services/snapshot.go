package services

import (
	"bytes"
	"context"
	"slices"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/repositories/collections"
	"github.com/dmitrijs2005/gophchat/internal/snapshot"
)

// SnapshotService moves the whole durable state in and out as one document.
// The session is never part of it.
type SnapshotService interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, blob []byte) error
}

type snapshotService struct {
	db  *dbx.Serializer
	log logging.Logger
}

func NewSnapshotService(db *dbx.Serializer, log logging.Logger) SnapshotService {
	return &snapshotService{db: db, log: log.With("component", "snapshot")}
}

func readState(ctx context.Context, repo collections.Repository) (snapshot.State, error) {
	stored, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	state := snapshot.State{}
	for _, key := range collections.AllKeys {
		if raw, ok := stored[key]; ok {
			state[key] = raw
		}
	}
	return state, nil
}

func (s *snapshotService) Export(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		state, err := readState(ctx, collections.NewSQLiteRepository(db))
		if err != nil {
			return err
		}
		out, err = snapshot.Export(state)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "snapshot exported", "bytes", len(out))
	return out, nil
}

// Import replaces every collection present in blob within one transaction:
// either all of them change or none does.
func (s *snapshotService) Import(ctx context.Context, blob []byte) error {
	var replaced []string
	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		current, err := readState(ctx, repo)
		if err != nil {
			return err
		}
		next, err := snapshot.Apply(current, blob)
		if err != nil {
			return err
		}

		for _, key := range collections.AllKeys {
			raw, ok := next[key]
			if !ok {
				continue
			}
			if old, had := current[key]; had && bytes.Equal(old, raw) {
				continue
			}
			if err := repo.Set(ctx, key, raw); err != nil {
				return err
			}
			replaced = append(replaced, key)
		}
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "snapshot rejected", "error", err)
		return err
	}

	slices.Sort(replaced)
	s.log.Info(ctx, "snapshot imported", "collections", replaced)
	return nil
}
