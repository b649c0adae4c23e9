package entity

import "time"

// TrackEvent is one analytics event waiting for delivery.
type TrackEvent struct {
	// ID de-duplicates redeliveries. Zero disables de-duplication.
	ID         int64
	Name       string
	Properties map[string]any
	Time       time.Time
}
