package repositories

import (
	"context"
	"database/sql"
	"errors"

	"ridereminder/internal/models"
)

type TripRepository struct {
	DB *sql.DB
}

func (r *TripRepository) GetTripByRequestID(ctx context.Context, requestID string) (models.Trip, error) {
	var trip models.Trip
	query := `
        SELECT id, request_id, provider_trip_id, created_at
        FROM trips
        WHERE request_id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, requestID).Scan(
		&trip.ID, &trip.RequestID, &trip.ProviderTripID, &trip.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, models.ErrTripNotFound
	}
	if err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}
