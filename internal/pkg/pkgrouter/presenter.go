package pkgrouter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
)

// ErrorResponse is the body written for failed requests. It mirrors the
// GraphQL errors array so clients decode both transports the same way.
type ErrorResponse struct {
	Errors []pkgerror.Portable `json:"errors"`
}

type presenter struct {
	codec       *pkgerror.Codec
	exposeStack bool
}

// present writes err as an application error envelope. Errors outside the
// taxonomy are wrapped into an UnknownError first.
func (p *presenter) present(ctx context.Context, w http.ResponseWriter, err error) {
	aerr := p.codec.Wrap(err)
	if aerr.Kind() == pkgerror.KindUnknown {
		slog.ErrorContext(ctx, "request failed", "error_id", aerr.ID(), "error", aerr.Msg())
	}

	p.write(w, aerr, aerr.StatusCode())
}

func (p *presenter) write(w http.ResponseWriter, aerr *pkgerror.Error, code int) {
	portable := pkgerror.Serialize(aerr)
	if !p.exposeStack {
		portable = portable.WithoutStack()
	}

	writeJSON(w, ErrorResponse{Errors: []pkgerror.Portable{portable}}, code)
}
