package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/penxle/penxle-go/internal/pkg/pkgdb"
	"github.com/penxle/penxle-go/internal/pkg/pkglog"
	"github.com/penxle/penxle-go/internal/pkg/pkgrouter"
	"github.com/penxle/penxle-go/internal/reqctx/usecase"
)

// Bind runs h with a request context built by b. The request transaction is
// committed when h succeeds and rolled back when it fails or panics.
func Bind(b builder, h pkgrouter.Handler) pkgrouter.Handler {
	return func(ctx context.Context, r *http.Request) (resp any, err error) {
		rc, err := b.Build(ctx, r)
		if err != nil {
			return nil, err
		}

		defer func() {
			if rvr := recover(); rvr != nil {
				if rerr := rc.Release(fmt.Errorf("handler panicked: %v", rvr)); rerr != nil {
					slog.ErrorContext(ctx, "failed to roll back request transaction", "error", rerr)
				}
				panic(rvr)
			}

			if rerr := rc.Release(err); rerr != nil {
				if err != nil {
					slog.ErrorContext(ctx, "failed to roll back request transaction", "error", rerr)
					return
				}
				resp, err = nil, rerr
			}
		}()

		ctx = pkgdb.WithTx(usecase.WithContext(ctx, rc), rc.Tx())
		if s, ok := rc.Session(); ok {
			ctx = pkglog.SetUserID(ctx, s.UserID)
		}

		return h(ctx, r)
	}
}
