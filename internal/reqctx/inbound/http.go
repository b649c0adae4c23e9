package inbound

import (
	"context"
	"net/http"

	"github.com/penxle/penxle-go/internal/pkg/pkgrouter"
	"github.com/penxle/penxle-go/internal/reqctx/usecase"
)

type builder interface {
	Build(ctx context.Context, r *http.Request) (*usecase.RequestContext, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, b builder) {
	end := &HTTPEndpoint{}

	r.GET("/me", Bind(b, end.Me))
	r.POST("/events", Bind(b, end.Track))
}
