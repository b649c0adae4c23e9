package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/penxle/penxle-go/internal/pkg/pkgconfig"
	"github.com/penxle/penxle-go/internal/pkg/pkgdb"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/pkg/pkglog"
	"github.com/penxle/penxle-go/internal/pkg/pkgreport"
	"github.com/penxle/penxle-go/internal/pkg/pkgrouter"
	"github.com/penxle/penxle-go/internal/pkg/pkgroutine"
	"github.com/penxle/penxle-go/internal/pkg/pkguid"
	"github.com/rs/cors"
)

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	if level := cfg.GetString("log.level"); level != "" {
		pkglog.InitLogging(pkglog.ParseLevel(level))
	}

	a.config = cfg
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake(a.config.GetInt("snowflake.node"))
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.snowflake = sf

	a.reporter = pkgreport.NewLog(a.uuid)
	if dsn := a.config.GetString("sentry.dsn"); dsn != "" {
		sentry, err := pkgreport.NewSentry(pkgreport.SentryOptions{
			DSN:         dsn,
			Environment: a.config.GetString("sentry.environment"),
		})
		if err != nil {
			slog.Error("failed to init sentry", "error", err)
			os.Exit(1)
		}

		a.reporter = sentry
		a.closerFn["Sentry"] = sentry.Close
	}

	a.codec = pkgerror.NewCodec(a.reporter)
}

func (a *App) initResources() {
	if a.config.GetString("database.dsn") == "" {
		slog.Warn("database is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, pkgdb.Options{
		DSN:             a.config.GetString("database.dsn"),
		MaxOpenConns:    int(a.config.GetInt("database.max_open_conns")),
		MaxIdleConns:    int(a.config.GetInt("database.max_idle_conns")),
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	a.database = db
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(pkgrouter.Options{
		ID:          a.uuid,
		Codec:       a.codec,
		ExposeStack: a.config.GetBool("errors.expose_stack"),
	})

	corsHandler := cors.New(corsOptions(a.config.GetArray("server.cors.allowed_origins")))

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// corsOptions allows credentialed requests only from an explicit origin list.
// An empty list or a "*" entry falls back to any origin without credentials.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{pkgrouter.HeaderCorrelationID},
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		return opts
	}

	opts.AllowedOrigins = origins
	opts.AllowCredentials = true
	return opts
}

func (a *App) initClosers() {
	a.closerFn["HTTP Server"] = func(ctx context.Context) error {
		return a.httpServer.Shutdown(ctx)
	}
	if a.database != nil {
		a.closerFn["Database"] = func(context.Context) error {
			return a.database.Close()
		}
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
