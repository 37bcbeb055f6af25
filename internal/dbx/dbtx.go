// Package dbx holds the small database/sql abstractions the repositories
// share: DBTX, satisfied by both *sql.DB and *sql.Tx, a transaction helper,
// and Serializer, which runs read-modify-write units one at a time.
package dbx

import (
	"context"
	"database/sql"
	"sync"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with it and commits when fn returns
// nil. On error or panic the transaction is rolled back; panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := collections.NewSQLiteRepository(tx)
//	    return repo.Set(ctx, "rooms", data)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Serializer runs units of work against db strictly one after another, each
// in its own transaction. Every unit reads the durable state, so two
// callbacks finishing back to back never lose each other's writes.
type Serializer struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSerializer returns a Serializer bound to db.
func NewSerializer(db *sql.DB) *Serializer {
	return &Serializer{db: db}
}

// Do runs fn inside a transaction while holding the serializer lock.
func (s *Serializer) Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WithTx(ctx, s.db, nil, fn)
}

// View runs fn against the database without a transaction. Reads still take
// the lock so they never observe a half-applied unit from this process.
func (s *Serializer) View(ctx context.Context, fn func(ctx context.Context, db DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, s.db)
}

// DB exposes the underlying handle.
func (s *Serializer) DB() *sql.DB {
	return s.db
}
