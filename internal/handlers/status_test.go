package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ridereminder/internal/models"
	"ridereminder/internal/uber"
)

func TestRequestErrorStatus(t *testing.T) {
	t.Run("missing records map to 404", func(t *testing.T) {
		for _, err := range []error{models.ErrUserNotFound, models.ErrRequestNotFound, models.ErrNoRequests} {
			if status := requestErrorStatus(err); status != http.StatusNotFound {
				t.Fatalf("%v: expected %d, got %d", err, http.StatusNotFound, status)
			}
		}
	})

	t.Run("rejected input maps to 400", func(t *testing.T) {
		for _, err := range []error{models.ErrInvalidRequest, models.ErrProductNotFound, models.ErrTripNotFound} {
			if status := requestErrorStatus(err); status != http.StatusBadRequest {
				t.Fatalf("%v: expected %d, got %d", err, http.StatusBadRequest, status)
			}
		}
	})

	t.Run("wrapped sentinels keep their status", func(t *testing.T) {
		err := fmt.Errorf("%w: %q", models.ErrProductNotFound, "uberCOPTER")
		if status := requestErrorStatus(err); status != http.StatusBadRequest {
			t.Fatalf("expected %d, got %d", http.StatusBadRequest, status)
		}
	})

	t.Run("external failures map to 502", func(t *testing.T) {
		status := requestErrorStatus(&uber.APIError{StatusCode: http.StatusServiceUnavailable})
		if status != http.StatusBadGateway {
			t.Fatalf("expected %d, got %d", http.StatusBadGateway, status)
		}

		status = requestErrorStatus(fmt.Errorf("%w: start: no results", models.ErrGeocodingFailed))
		if status != http.StatusBadGateway {
			t.Fatalf("expected %d, got %d", http.StatusBadGateway, status)
		}

		status = requestErrorStatus(fmt.Errorf("%w: estimate incomplete", uber.ErrInvalidResponse))
		if status != http.StatusBadGateway {
			t.Fatalf("expected %d, got %d", http.StatusBadGateway, status)
		}
	})

	t.Run("defaults to 500", func(t *testing.T) {
		if status := requestErrorStatus(errors.New("store is down")); status != http.StatusInternalServerError {
			t.Fatalf("expected %d, got %d", http.StatusInternalServerError, status)
		}
	})
}
