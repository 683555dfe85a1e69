package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"ridereminder/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

const requestColumns = `
        id, user_id, active, start_time, start_address, start_latitude, start_longitude,
        end_address, end_latitude, end_longitude,
        product_id, product_name, duration_seconds, reminder_time, reminded,
        created_at, updated_at
`

func scanRequest(row *sql.Row) (models.RideRequest, error) {
	var req models.RideRequest
	err := row.Scan(
		&req.ID, &req.UserID, &req.Active,
		&req.Start.Time, &req.Start.Location.Address, &req.Start.Location.Latitude, &req.Start.Location.Longitude,
		&req.End.Location.Address, &req.End.Location.Latitude, &req.End.Location.Longitude,
		&req.Product.ID, &req.Product.Name, &req.Product.DurationSeconds, &req.Product.ReminderTime, &req.Reminded,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RideRequest{}, models.ErrRequestNotFound
	}
	if err != nil {
		return models.RideRequest{}, err
	}
	return req, nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req models.RideRequest) (models.RideRequest, error) {
	query := `
        INSERT INTO requests (id, user_id, active, start_time, start_address, start_latitude, start_longitude,
                              end_address, end_latitude, end_longitude,
                              product_id, product_name, duration_seconds, reminder_time, reminded, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	req.ID = uuid.New().String()
	req.Active = true
	req.CreatedAt = time.Now()
	_, err := r.DB.ExecContext(ctx, query,
		req.ID, req.UserID, req.Active,
		req.Start.Time, req.Start.Location.Address, req.Start.Location.Latitude, req.Start.Location.Longitude,
		req.End.Location.Address, req.End.Location.Latitude, req.End.Location.Longitude,
		req.Product.ID, req.Product.Name, req.Product.DurationSeconds, req.Product.ReminderTime, req.Reminded,
		req.CreatedAt,
	)
	if err != nil {
		return models.RideRequest{}, err
	}
	return req, nil
}

func (r *RequestRepository) GetActiveRequestsByUser(ctx context.Context, userID string) ([]models.RideRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM requests
        WHERE user_id = ? AND active = TRUE
    `
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.RideRequest
	for rows.Next() {
		var req models.RideRequest
		err := rows.Scan(
			&req.ID, &req.UserID, &req.Active,
			&req.Start.Time, &req.Start.Location.Address, &req.Start.Location.Latitude, &req.Start.Location.Longitude,
			&req.End.Location.Address, &req.End.Location.Latitude, &req.End.Location.Longitude,
			&req.Product.ID, &req.Product.Name, &req.Product.DurationSeconds, &req.Product.ReminderTime, &req.Reminded,
			&req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id string) (models.RideRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM requests
        WHERE id = ?
    `
	return scanRequest(r.DB.QueryRowContext(ctx, query, id))
}

func (r *RequestRepository) GetActiveRequestByID(ctx context.Context, id string) (models.RideRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM requests
        WHERE id = ? AND active = TRUE
    `
	return scanRequest(r.DB.QueryRowContext(ctx, query, id))
}

// Deactivate clears the active flag. The transition is terminal; there is no
// path that sets the flag back.
func (r *RequestRepository) Deactivate(ctx context.Context, id string) (models.RideRequest, error) {
	query := `
        UPDATE requests
        SET active = FALSE, updated_at = ?
        WHERE id = ?
    `
	result, err := r.DB.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return models.RideRequest{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.RideRequest{}, err
	}
	if rowsAffected == 0 {
		return models.RideRequest{}, models.ErrRequestNotFound
	}

	// Fetch the updated request
	return r.GetRequestByID(ctx, id)
}

// GetDueReminders returns active requests whose reminder time has passed and
// that have not been notified yet.
func (r *RequestRepository) GetDueReminders(ctx context.Context, now time.Time) ([]models.RideRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM requests
        WHERE active = TRUE AND reminded = FALSE AND reminder_time <= ?
    `
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.RideRequest
	for rows.Next() {
		var req models.RideRequest
		err := rows.Scan(
			&req.ID, &req.UserID, &req.Active,
			&req.Start.Time, &req.Start.Location.Address, &req.Start.Location.Latitude, &req.Start.Location.Longitude,
			&req.End.Location.Address, &req.End.Location.Latitude, &req.End.Location.Longitude,
			&req.Product.ID, &req.Product.Name, &req.Product.DurationSeconds, &req.Product.ReminderTime, &req.Reminded,
			&req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) MarkReminded(ctx context.Context, id string) error {
	query := `UPDATE requests SET reminded = TRUE, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}
