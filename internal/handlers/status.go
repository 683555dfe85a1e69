package handlers

import (
	"errors"
	"net/http"

	"ridereminder/internal/models"
	"ridereminder/internal/uber"
)

// requestErrorStatus maps pipeline errors to HTTP statuses: missing records
// are 404, rejected input 400, provider and geocoder failures 502, and
// anything else (store failures included) 500.
func requestErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrNoRequests):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrTripNotFound):
		return http.StatusBadRequest
	}

	if errors.Is(err, models.ErrGeocodingFailed) || errors.Is(err, uber.ErrInvalidResponse) {
		return http.StatusBadGateway
	}
	var apiErr *uber.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
