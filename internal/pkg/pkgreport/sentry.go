package pkgreport

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
)

const defaultFlushTimeout = 2 * time.Second

// Sentry reports exceptions to Sentry through a dedicated hub.
type Sentry struct {
	hub *sentry.Hub
}

var _ pkgerror.Reporter = (*Sentry)(nil)

// SentryOptions configures NewSentry.
type SentryOptions struct {
	DSN         string
	Environment string
	Release     string
}

// NewSentry builds a Sentry reporter. The hub is owned by the reporter
// rather than installed globally.
func NewSentry(opts SentryOptions) (*Sentry, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}

	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Report captures err and returns the Sentry event id, or "" if the event
// was dropped.
func (s *Sentry) Report(err error) string {
	id := s.hub.CaptureException(err)
	if id == nil {
		return ""
	}
	return string(*id)
}

// Close flushes buffered events, bounded by ctx's deadline.
func (s *Sentry) Close(ctx context.Context) error {
	timeout := defaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	s.hub.Flush(timeout)
	return nil
}
