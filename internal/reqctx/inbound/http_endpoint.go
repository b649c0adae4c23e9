package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/reqctx/usecase"
)

const maxTrackBody = 64 << 10

var errUnbound = errors.New("request context is not bound")

type HTTPEndpoint struct{}

func (h *HTTPEndpoint) Me(ctx context.Context, _ *http.Request) (any, error) {
	rc, ok := usecase.FromContext(ctx)
	if !ok {
		return nil, errUnbound
	}

	session, err := rc.RequireSession()
	if err != nil {
		return nil, err
	}

	return MeResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		ProfileID: session.ProfileID,
	}, nil
}

func (h *HTTPEndpoint) Track(ctx context.Context, r *http.Request) (any, error) {
	rc, ok := usecase.FromContext(ctx)
	if !ok {
		return nil, errUnbound
	}

	var req TrackRequest
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxTrackBody)).Decode(&req); err != nil {
		return nil, pkgerror.NewIntentional("요청 형식이 올바르지 않아요")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, pkgerror.NewFormValidation("name", "이벤트 이름을 입력해주세요")
	}

	rc.Track(req.Name, req.Properties)

	return TrackResponse{Name: req.Name}, nil
}
