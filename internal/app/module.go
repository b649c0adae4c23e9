package app

import (
	"log/slog"
	"os"

	"github.com/penxle/penxle-go/internal/reqctx"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.reqctx.enabled") {
		closer, err := reqctx.New(reqctx.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			DB:        a.database,
			ID:        a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module reqctx", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			a.moduleCloserFn["Request Context"] = closer
		}
	}
}
