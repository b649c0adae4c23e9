package usecase

import (
	"context"
	"database/sql"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/penxle/penxle-go/internal/pkg/pkgdb"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
)

// RequestInfo is the part of the inbound request downstream code may read.
type RequestInfo struct {
	Method        string
	URL           string
	IP            string
	UserAgent     string
	Referrer      string
	CorrelationID string
}

// RequestContext is built once per request and is read-only afterwards. The
// transaction belongs to the request and is finished by Release.
type RequestContext struct {
	info    RequestInfo
	session *entity.Session
	tx      *sql.Tx
	tracker tracker

	once       sync.Once
	releaseErr error
}

// Info returns the request fields captured at construction.
func (c *RequestContext) Info() RequestInfo {
	return c.info
}

// Session returns the resolved session, if any.
func (c *RequestContext) Session() (entity.Session, bool) {
	if c.session == nil {
		return entity.Session{}, false
	}
	return *c.session, true
}

// RequireSession returns the session or a PermissionDeniedError.
func (c *RequestContext) RequireSession() (entity.Session, error) {
	s, ok := c.Session()
	if !ok {
		return entity.Session{}, pkgerror.NewPermissionDenied()
	}
	return s, nil
}

// Tx returns the request's repeatable-read transaction.
func (c *RequestContext) Tx() *sql.Tx {
	return c.tx
}

// Track emits an analytics event without waiting for delivery. It never
// panics; a full queue drops the event.
func (c *RequestContext) Track(name string, props map[string]any) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.Error("analytics tracker panicked", "event", name, "because", rvr)
		}
	}()

	c.tracker.track(name, props)
}

// Release commits the transaction when err is nil and rolls it back otherwise.
// Only the first call has an effect; later calls return its result.
func (c *RequestContext) Release(err error) error {
	c.once.Do(func() {
		if c.tx != nil {
			c.releaseErr = pkgdb.Finish(c.tx, err)
		}
	})
	return c.releaseErr
}

type contextKey struct{}

// WithContext stores rc in ctx.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the request context stored by WithContext.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(contextKey{}).(*RequestContext)
	return rc, ok && rc != nil
}

// Publisher accepts analytics events without blocking.
type Publisher interface {
	Offer(event entity.TrackEvent) bool
}

// tracker stamps request data, and identity when bound, onto every event.
type tracker struct {
	events   Publisher
	ids      func() int64
	now      func() time.Time
	base     map[string]any
	identity map[string]any
}

func (t tracker) withIdentity(s entity.Session) tracker {
	t.identity = map[string]any{
		"distinct_id": s.UserID,
		"profile_id":  s.ProfileID,
	}
	return t
}

func (t tracker) track(name string, props map[string]any) {
	if t.events == nil {
		return
	}

	merged := make(map[string]any, len(t.base)+len(props)+len(t.identity))
	maps.Copy(merged, t.base)
	maps.Copy(merged, props)
	maps.Copy(merged, t.identity)

	event := entity.TrackEvent{
		Name:       name,
		Properties: merged,
		Time:       t.now(),
	}
	if t.ids != nil {
		event.ID = t.ids()
	}

	if !t.events.Offer(event) {
		slog.Warn("analytics event dropped", "event", name)
	}
}
