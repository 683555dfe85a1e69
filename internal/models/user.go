package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Active      bool       `json:"active"`
	AccessToken string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}
