package models

import "errors"

var (
	ErrUserNotFound    = errors.New("models: user not found")
	ErrRequestNotFound = errors.New("models: request not found")
	ErrNoRequests      = errors.New("models: user has no requests")
	ErrTripNotFound    = errors.New("models: trip not found")
	ErrInvalidRequest  = errors.New("models: invalid request payload")
	ErrProductNotFound = errors.New("models: product type not offered")
	ErrGeocodingFailed = errors.New("models: geocoding failed")
)
