package models

import "time"

// Trip links a local ride request to the trip created on the provider side.
// A pending request may have no trip yet.
type Trip struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id"`
	ProviderTripID string    `json:"provider_trip_id"`
	CreatedAt      time.Time `json:"created_at"`
}
