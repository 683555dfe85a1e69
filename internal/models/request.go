package models

import (
	"encoding/json"
	"time"
)

// Location is a geocoded address. Free-text input is always resolved through
// the geocoder before it reaches storage.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProductInfo records the provider product chosen for a request together with
// the estimated trip duration and the computed reminder time.
type ProductInfo struct {
	ID              string    `json:"id"`
	Name            string    `json:"product"`
	DurationSeconds int       `json:"duration_seconds"`
	ReminderTime    time.Time `json:"reminder_time"`
}

type StartPoint struct {
	Time     time.Time `json:"time"`
	Location Location  `json:"location"`
}

type EndPoint struct {
	Location Location `json:"location"`
}

// RideRequest is a user's stored intent to take a trip. A request stays
// visible in listings while Active is true; cancellation clears the flag and
// is terminal.
type RideRequest struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user"`
	Active    bool        `json:"active"`
	Start     StartPoint  `json:"start"`
	End       EndPoint    `json:"end"`
	Product   ProductInfo `json:"product"`
	Reminded  bool        `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`

	// Trip carries the provider's live trip document when one exists.
	// Populated on single-request reads only, never stored.
	Trip json.RawMessage `json:"trip,omitempty"`
}

// CreateRequestInput is the payload accepted when creating a request.
// Locations arrive as free-text addresses and start time as RFC 3339.
type CreateRequestInput struct {
	Start struct {
		Time     string `json:"time"`
		Location string `json:"location"`
	} `json:"start"`
	End struct {
		Location string `json:"location"`
	} `json:"end"`
	ProductType string `json:"productType"`
}
