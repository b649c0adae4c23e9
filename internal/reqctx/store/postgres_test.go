package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/penxle/penxle-go/internal/pkg/pkgdb"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_FindSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := regexp.QuoteMeta(findSessionQuery)
	mock.ExpectQuery(query).WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "profile_id"}).AddRow("u1", "p1"))
	mock.ExpectQuery(query).WithArgs("s2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "profile_id"}).AddRow("u2", nil))
	mock.ExpectQuery(query).WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "profile_id"}))
	mock.ExpectQuery(query).WithArgs("s3").
		WillReturnError(errors.New("connection reset"))

	s := NewPostgresStore(db)
	ctx := context.Background()

	rec, err := s.FindSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionRecord{UserID: "u1", ProfileID: "p1"}, rec)

	rec, err = s.FindSession(ctx, "s2")
	require.NoError(t, err)
	require.Equal(t, entity.SessionRecord{UserID: "u2"}, rec)

	_, err = s.FindSession(ctx, "gone")
	require.ErrorIs(t, err, pkgerror.ErrNotFound)

	_, err = s.FindSession(ctx, "s3")
	require.EqualError(t, err, "connection reset")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindSession_CanceledCallerDoesNotFailOthers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(findSessionQuery)).WithArgs("s1").
		WillDelayFor(300 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "profile_id"}).AddRow("u1", "p1"))

	s := NewPostgresStore(db)

	first, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.FindSession(first, "s1")
		firstErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	type result struct {
		rec entity.SessionRecord
		err error
	}
	second := make(chan result, 1)
	go func() {
		rec, err := s.FindSession(context.Background(), "s1")
		second <- result{rec: rec, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	got := <-second
	require.NoError(t, got.err)
	require.Equal(t, entity.SessionRecord{UserID: "u1", ProfileID: "p1"}, got.rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindSession_UsesContextTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(findSessionQuery)).WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "profile_id"}).AddRow("u1", "p1"))
	mock.ExpectCommit()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tx, err := pkgdb.Begin(ctx, db, sql.LevelRepeatableRead)
	require.NoError(t, err)

	rec, err := NewPostgresStore(db).FindSession(pkgdb.WithTx(ctx, tx), "s1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionRecord{UserID: "u1", ProfileID: "p1"}, rec)

	require.NoError(t, pkgdb.Finish(tx, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
