package reqctx

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/penxle/penxle-go/internal/pkg/pkgrouter"
	"github.com/penxle/penxle-go/internal/pkg/pkgroutine"
	"github.com/stretchr/testify/require"
)

type mapConfig map[string]string

func (c mapConfig) GetInt(string) int64 { return 0 }
func (c mapConfig) GetBool(string) bool { return false }
func (c mapConfig) GetString(key string) string { return c[key] }
func (c mapConfig) GetArray(string) []string { return nil }
func (c mapConfig) Close() error { return nil }

func (c mapConfig) GetBinary(key string) []byte {
	b, _ := base64.StdEncoding.DecodeString(c[key])
	return b
}

func seed(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sessions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sessions:\n  - id: s1\n    user_id: u1\n    profile_id: p1\n"), 0o600))
	return path
}

func TestNewStoreStrategy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := pkgroutine.NewManager(8)
	router := pkgrouter.NewRouter(pkgrouter.Options{})
	stop, err := New(Dependency{
		Config:    mapConfig{"session.seed_file": seed(t)},
		Goroutine: runner,
		Router:    router,
		DB:        db,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "penxle-sid", Value: "s1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, stop(context.Background()))
	require.NoError(t, runner.Wait())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewTokenStrategy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	secret := []byte("access-token-secret")
	router := pkgrouter.NewRouter(pkgrouter.Options{})
	stop, err := New(Dependency{
		Config: mapConfig{
			"session.strategy":     StrategyToken,
			"session.token.secret": base64.StdEncoding.EncodeToString(secret),
			"session.seed_file":    seed(t),
		},
		Router: router,
		DB:     db,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, stop(context.Background())) }()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "s1"}).SignedString(secret)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "penxle-at", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewErrors(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(Dependency{Config: mapConfig{}, Router: pkgrouter.NewRouter(pkgrouter.Options{})})
	require.ErrorIs(t, err, ErrMissingDatabase)

	_, err = New(Dependency{
		Config: mapConfig{"session.strategy": StrategyToken},
		Router: pkgrouter.NewRouter(pkgrouter.Options{}),
		DB:     db,
	})
	require.ErrorIs(t, err, ErrMissingTokenSecret)

	_, err = New(Dependency{
		Config: mapConfig{"session.seed_file": filepath.Join(t.TempDir(), "missing.yaml")},
		Router: pkgrouter.NewRouter(pkgrouter.Options{}),
		DB:     db,
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}
