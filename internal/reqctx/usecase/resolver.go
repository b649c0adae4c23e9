package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
)

// ErrMissingSessionID is returned for a valid token that names no session.
var ErrMissingSessionID = errors.New("session token has no jti")

// SessionStore looks up server-side session records.
type SessionStore interface {
	FindSession(ctx context.Context, id string) (entity.SessionRecord, error)
}

// SessionResolver turns a request credential into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, credential string) (entity.Session, error)
}

// StoreResolver treats the credential as an opaque session id.
type StoreResolver struct {
	store SessionStore
}

func NewStoreResolver(store SessionStore) *StoreResolver {
	return &StoreResolver{store: store}
}

func (r *StoreResolver) Resolve(ctx context.Context, credential string) (entity.Session, error) {
	return lookup(ctx, r.store, credential)
}

// TokenResolver treats the credential as an HS256 access token whose jti is
// the session id.
type TokenResolver struct {
	store  SessionStore
	secret []byte
	parser *jwt.Parser
}

func NewTokenResolver(store SessionStore, secret []byte) *TokenResolver {
	return &TokenResolver{
		store:  store,
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (r *TokenResolver) Resolve(ctx context.Context, credential string) (entity.Session, error) {
	var claims jwt.RegisteredClaims
	if _, err := r.parser.ParseWithClaims(credential, &claims, r.key); err != nil {
		return entity.Session{}, fmt.Errorf("decode access token: %w", err)
	}

	if claims.ID == "" {
		return entity.Session{}, ErrMissingSessionID
	}

	return lookup(ctx, r.store, claims.ID)
}

func (r *TokenResolver) key(*jwt.Token) (any, error) {
	return r.secret, nil
}

func lookup(ctx context.Context, store SessionStore, id string) (entity.Session, error) {
	rec, err := store.FindSession(ctx, id)
	if err != nil {
		return entity.Session{}, err
	}

	return entity.Session{
		ID:        id,
		UserID:    rec.UserID,
		ProfileID: rec.ProfileID,
	}, nil
}
