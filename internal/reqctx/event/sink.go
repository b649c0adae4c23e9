package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strconv"
	"time"

	"github.com/penxle/penxle-go/internal/reqctx/entity"
)

// LogSink writes events to the structured log. Used when no analytics
// endpoint is configured.
type LogSink struct{}

func (LogSink) Deliver(ctx context.Context, event entity.TrackEvent) error {
	slog.InfoContext(ctx, "analytics event", "event_id", event.ID, "event", event.Name, "properties", event.Properties)
	return nil
}

// HTTPSink posts events to a Mixpanel-compatible /track endpoint.
type HTTPSink struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewHTTPSink(endpoint, token string, client *http.Client) *HTTPSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTPSink{endpoint: endpoint, token: token, client: client}
}

type trackPayload struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

func (s *HTTPSink) Deliver(ctx context.Context, event entity.TrackEvent) error {
	props := make(map[string]any, len(event.Properties)+3)
	maps.Copy(props, event.Properties)
	props["token"] = s.token
	if !event.Time.IsZero() {
		props["time"] = event.Time.UnixMilli()
	}
	if event.ID != 0 {
		props["$insert_id"] = strconv.FormatInt(event.ID, 10)
	}

	body, err := json.Marshal([]trackPayload{{Event: event.Name, Properties: props}})
	if err != nil {
		return fmt.Errorf("encode analytics event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analytics endpoint returned %d", resp.StatusCode)
	}

	return nil
}
