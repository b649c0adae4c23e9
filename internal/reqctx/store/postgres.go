package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/penxle/penxle-go/internal/pkg/pkgdb"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
	"golang.org/x/sync/singleflight"
)

const (
	findSessionQuery = `SELECT user_id, profile_id FROM sessions WHERE id = $1`

	lookupTimeout = 5 * time.Second
)

// Querier is the read side of *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore reads sessions from the sessions table.
//
// Inside a request transaction (pkgdb.WithTx) the lookup runs on that
// transaction's connection. Otherwise concurrent lookups of the same id share
// one pool query, which runs detached from any single caller's cancellation.
type PostgresStore struct {
	db    Querier
	group singleflight.Group
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindSession(ctx context.Context, id string) (entity.SessionRecord, error) {
	if tx, ok := pkgdb.TxFromContext(ctx); ok {
		return find(ctx, tx, id)
	}

	ch := s.group.DoChan(id, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		return find(qctx, s.db, id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return entity.SessionRecord{}, res.Err
		}
		return res.Val.(entity.SessionRecord), nil
	case <-ctx.Done():
		return entity.SessionRecord{}, ctx.Err()
	}
}

func find(ctx context.Context, q Querier, id string) (entity.SessionRecord, error) {
	var (
		rec       entity.SessionRecord
		profileID sql.NullString
	)

	err := q.QueryRowContext(ctx, findSessionQuery, id).Scan(&rec.UserID, &profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.SessionRecord{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.SessionRecord{}, err
	}

	rec.ProfileID = profileID.String
	return rec, nil
}
