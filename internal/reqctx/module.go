package reqctx

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/penxle/penxle-go/internal/pkg/pkgconfig"
	"github.com/penxle/penxle-go/internal/pkg/pkgrouter"
	"github.com/penxle/penxle-go/internal/pkg/pkgroutine"
	"github.com/penxle/penxle-go/internal/pkg/pkguid"
	"github.com/penxle/penxle-go/internal/reqctx/event"
	"github.com/penxle/penxle-go/internal/reqctx/inbound"
	"github.com/penxle/penxle-go/internal/reqctx/store"
	"github.com/penxle/penxle-go/internal/reqctx/usecase"
)

const (
	StrategyStore = "store"
	StrategyToken = "token"

	tokenCookie = "penxle-at"
)

var (
	ErrMissingDatabase    = errors.New("request context module requires a database")
	ErrMissingTokenSecret = errors.New("session.token.secret is required for the token strategy")
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	DB        *sql.DB
	ID        pkguid.NumberID
}

// New wires the request context module and returns its shutdown function.
func New(dep Dependency) (func(context.Context) error, error) {
	cfg := dep.Config
	if dep.DB == nil {
		return nil, ErrMissingDatabase
	}

	sessions, err := newSessionStore(dep.DB, cfg.GetString("session.seed_file"))
	if err != nil {
		return nil, err
	}

	strategy := cfg.GetString("session.strategy")
	cookie := cfg.GetString("session.cookie")

	var resolver usecase.SessionResolver
	switch strategy {
	case StrategyToken:
		secret := cfg.GetBinary("session.token.secret")
		if len(secret) == 0 {
			return nil, ErrMissingTokenSecret
		}
		resolver = usecase.NewTokenResolver(sessions, secret)
		if cookie == "" {
			cookie = tokenCookie
		}
	default:
		resolver = usecase.NewStoreResolver(sessions)
	}

	var sink event.Sink = event.LogSink{}
	if endpoint := cfg.GetString("analytics.endpoint"); endpoint != "" {
		sink = event.NewHTTPSink(endpoint, cfg.GetString("analytics.token"), &http.Client{Timeout: 10 * time.Second})
	}

	bus := event.NewBus(int(cfg.GetInt("analytics.buffer")))
	consumer := event.NewDeliveryConsumer(bus, sink, event.ConsumerConfig{
		Workers:     int(cfg.GetInt("analytics.workers")),
		MaxRetries:  int(cfg.GetInt("analytics.max_retries")),
		BaseBackoff: 200 * time.Millisecond,
	})
	root := dep.Context
	if root == nil {
		root = context.Background()
	}

	var runner event.Runner
	if dep.Goroutine != nil {
		runner = dep.Goroutine
	}
	consumer.Start(root, runner)

	if dep.ID == nil {
		if dep.ID, err = pkguid.NewSnowflake(-1); err != nil {
			return nil, err
		}
	}

	builder := usecase.New(usecase.Dependency{
		DB:       dep.DB,
		Resolver: resolver,
		Events:   bus,
		ID:       dep.ID,
		Cookie:   cookie,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, builder)

	slog.Info("request context module ready", "strategy", strategyName(strategy), "cookie", builder.Cookie())

	return consumer.Stop, nil
}

// newSessionStore reads sessions from Postgres unless a seed file is
// configured, in which case the seeded in-memory store is used.
func newSessionStore(db *sql.DB, seedFile string) (usecase.SessionStore, error) {
	if seedFile == "" {
		return store.NewPostgresStore(db), nil
	}

	mem := store.NewInMemoryStore()
	n, err := mem.LoadSeed(seedFile)
	if err != nil {
		return nil, err
	}
	slog.Info("session seed loaded", "path", seedFile, "sessions", n)

	return mem, nil
}

func strategyName(s string) string {
	if s == StrategyToken {
		return StrategyToken
	}
	return StrategyStore
}
