package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/penxle/penxle-go/internal/pkg/pkgconfig"
	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/pkg/pkglog"
	"github.com/penxle/penxle-go/internal/pkg/pkgrouter"
	"github.com/penxle/penxle-go/internal/pkg/pkgroutine"
	"github.com/penxle/penxle-go/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	goroutine *pkgroutine.Manager
	reporter  pkgerror.Reporter
	codec     *pkgerror.Codec

	// resources
	database *sql.DB

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// modules are stopped before background goroutines are awaited,
	// resources after.
	moduleCloserFn map[string]func(context.Context) error
	closerFn       map[string]func(context.Context) error
}

func New() *App {
	pkglog.InitLogging(pkglog.ParseLevel("info"))

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:            ctx,
		cancel:         cancel,
		moduleCloserFn: map[string]func(context.Context) error{},
		closerFn:       map[string]func(context.Context) error{},
	}

	app.initConfig()
	app.initLibraries()
	app.initResources()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
