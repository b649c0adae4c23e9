package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/penxle/penxle-go/internal/pkg/pkgdb"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/pkg/pkglog"
	"github.com/penxle/penxle-go/internal/pkg/pkguid"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
)

// DefaultCookie carries the session credential when none is configured.
const DefaultCookie = "penxle-sid"

var ErrMissingDependency = errors.New("request context: missing database")

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	DB       pkgdb.Beginner
	Resolver SessionResolver
	Events   Publisher
	ID       pkguid.NumberID
	Clock    Clock
	Cookie   string
}

// Builder assembles a RequestContext for every inbound request.
type Builder struct {
	db       pkgdb.Beginner
	resolver SessionResolver
	events   Publisher
	id       pkguid.NumberID
	clock    Clock
	cookie   string
}

func New(dep Dependency) *Builder {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	cookie := dep.Cookie
	if cookie == "" {
		cookie = DefaultCookie
	}

	return &Builder{
		db:       dep.DB,
		resolver: dep.Resolver,
		events:   dep.Events,
		id:       dep.ID,
		clock:    clock,
		cookie:   cookie,
	}
}

// Cookie returns the name of the credential cookie.
func (b *Builder) Cookie() string {
	return b.cookie
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Build begins the request transaction, then resolves the session from the
// credential cookie through that transaction. Session resolution never fails the build; an unresolved
// credential yields an anonymous context. If ctx ends before the build
// completes, the transaction is rolled back and ctx's error returned.
func (b *Builder) Build(ctx context.Context, r *http.Request) (*RequestContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if b.db == nil {
		return nil, ErrMissingDependency
	}

	tx, err := pkgdb.Begin(ctx, b.db, sql.LevelRepeatableRead)
	if err != nil {
		return nil, fmt.Errorf("begin request transaction: %w", err)
	}

	info := requestInfo(ctx, r)
	rc := &RequestContext{
		info:    info,
		tx:      tx,
		tracker: b.newTracker(info),
	}

	if session, ok := b.resolve(pkgdb.WithTx(ctx, tx), r); ok {
		rc.session = &session
		rc.tracker = rc.tracker.withIdentity(session)
	}

	if err := ctx.Err(); err != nil {
		_ = rc.Release(err)
		return nil, err
	}

	return rc, nil
}

func (b *Builder) newTracker(info RequestInfo) tracker {
	t := tracker{
		events: b.events,
		now:    b.clock.Now,
		base:   baseProperties(info),
	}
	if b.id != nil {
		t.ids = b.id.Generate
	}
	return t
}

func (b *Builder) resolve(ctx context.Context, r *http.Request) (session entity.Session, ok bool) {
	if b.resolver == nil {
		return entity.Session{}, false
	}

	cookie, err := r.Cookie(b.cookie)
	if err != nil || cookie.Value == "" {
		return entity.Session{}, false
	}

	defer func() {
		if rvr := recover(); rvr != nil {
			slog.WarnContext(ctx, "session resolution panicked", "because", rvr)
			session, ok = entity.Session{}, false
		}
	}()

	session, err = b.resolver.Resolve(ctx, cookie.Value)
	if err != nil {
		if !errors.Is(err, pkgerror.ErrNotFound) {
			slog.WarnContext(ctx, "session resolution failed", "error", err)
		}
		return entity.Session{}, false
	}

	return session, true
}

func requestInfo(ctx context.Context, r *http.Request) RequestInfo {
	info := RequestInfo{
		Method:    r.Method,
		URL:       currentURL(r),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	if cid, ok := pkglog.LookupCorrelationID(ctx); ok {
		info.CorrelationID = cid
	}
	return info
}

func baseProperties(info RequestInfo) map[string]any {
	props := make(map[string]any, 5)
	for key, value := range map[string]string{
		"$ip":             info.IP,
		"$user_agent":     info.UserAgent,
		"$current_url":    info.URL,
		"$referrer":       info.Referrer,
		"$correlation_id": info.CorrelationID,
	} {
		if value != "" {
			props[key] = value
		}
	}
	return props
}

func currentURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	if r.Host == "" {
		return r.URL.RequestURI()
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
