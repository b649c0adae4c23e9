package inbound

import "net/http"

type MeResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	ProfileID string `json:"profile_id"`
}

type TrackRequest struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

type TrackResponse struct {
	Name string `json:"name"`
}

func (TrackResponse) StatusCode() int {
	return http.StatusAccepted
}

func (TrackResponse) Message() string {
	return "event accepted"
}
