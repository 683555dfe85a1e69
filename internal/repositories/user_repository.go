package repositories

import (
	"context"
	"database/sql"
	"errors"

	"ridereminder/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

// GetActiveUserByID returns the user only while the account is active.
// Deactivated users are indistinguishable from missing ones.
func (r *UserRepository) GetActiveUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, email, active, access_token, created_at, updated_at
        FROM users
        WHERE id = ? AND active = TRUE
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Active, &user.AccessToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
