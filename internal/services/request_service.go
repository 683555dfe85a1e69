package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ridereminder/internal/models"
	"ridereminder/internal/uber"
)

// reminderLead is subtracted from the start time before the trip duration:
// the user should be reminded early enough to order the ride and still arrive.
const reminderLead = 15 * time.Minute

type UserStore interface {
	GetActiveUserByID(ctx context.Context, id string) (models.User, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, req models.RideRequest) (models.RideRequest, error)
	GetActiveRequestsByUser(ctx context.Context, userID string) ([]models.RideRequest, error)
	GetRequestByID(ctx context.Context, id string) (models.RideRequest, error)
	GetActiveRequestByID(ctx context.Context, id string) (models.RideRequest, error)
	Deactivate(ctx context.Context, id string) (models.RideRequest, error)
}

type TripStore interface {
	GetTripByRequestID(ctx context.Context, requestID string) (models.Trip, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

type RideAPI interface {
	Products(ctx context.Context, latitude, longitude float64) ([]uber.Product, error)
	Estimate(ctx context.Context, accessToken, productID string, startLat, startLng, endLat, endLng float64) (uber.Estimate, error)
	TripDetail(ctx context.Context, accessToken, tripID string) (json.RawMessage, error)
	CancelTrip(ctx context.Context, accessToken, tripID string) error
}

// RequestService chains the store, geocoder and provider calls behind the
// four request operations. Each operation is a linear pipeline: the first
// failing step aborts the rest.
type RequestService struct {
	UserRepo    UserStore
	RequestRepo RequestStore
	TripRepo    TripStore
	Geocoder    Geocoder
	RideAPI     RideAPI
}

// ListAll returns the user's active requests.
func (s *RequestService) ListAll(ctx context.Context, userID string) ([]models.RideRequest, error) {
	if _, err := s.UserRepo.GetActiveUserByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.RequestRepo.GetActiveRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, models.ErrNoRequests
	}
	return requests, nil
}

func validateCreateInput(input models.CreateRequestInput) (time.Time, error) {
	if input.Start.Time == "" || input.Start.Location == "" || input.ProductType == "" || input.End.Location == "" {
		return time.Time{}, models.ErrInvalidRequest
	}
	startTime, err := time.Parse(time.RFC3339, input.Start.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad start time: %v", models.ErrInvalidRequest, err)
	}
	return startTime, nil
}

// Create validates the payload, resolves both addresses, picks the provider
// product, obtains an estimate and persists the request. The record is only
// written at the very end, so an abort mid-chain leaves nothing behind.
func (s *RequestService) Create(ctx context.Context, userID string, input models.CreateRequestInput) (models.RideRequest, error) {
	startTime, err := validateCreateInput(input)
	if err != nil {
		return models.RideRequest{}, err
	}

	start, err := s.Geocoder.Geocode(ctx, input.Start.Location)
	if err != nil {
		return models.RideRequest{}, fmt.Errorf("%w: start: %v", models.ErrGeocodingFailed, err)
	}

	user, err := s.UserRepo.GetActiveUserByID(ctx, userID)
	if err != nil {
		return models.RideRequest{}, err
	}

	products, err := s.RideAPI.Products(ctx, start.Latitude, start.Longitude)
	if err != nil {
		return models.RideRequest{}, err
	}
	var product *uber.Product
	for i := range products {
		if products[i].DisplayName == input.ProductType {
			product = &products[i]
		}
	}
	if product == nil {
		return models.RideRequest{}, fmt.Errorf("%w: %q", models.ErrProductNotFound, input.ProductType)
	}

	end, err := s.Geocoder.Geocode(ctx, input.End.Location)
	if err != nil {
		return models.RideRequest{}, fmt.Errorf("%w: end: %v", models.ErrGeocodingFailed, err)
	}

	estimate, err := s.RideAPI.Estimate(ctx, user.AccessToken, product.ID,
		start.Latitude, start.Longitude, end.Latitude, end.Longitude)
	if err != nil {
		return models.RideRequest{}, err
	}

	duration := time.Duration(estimate.DurationSeconds) * time.Second
	reminderTime := startTime.Add(-reminderLead).Add(-duration)

	req := models.RideRequest{
		UserID: userID,
		Start:  models.StartPoint{Time: startTime, Location: start},
		End:    models.EndPoint{Location: end},
		Product: models.ProductInfo{
			ID:              product.ID,
			Name:            strings.TrimSpace(input.ProductType),
			DurationSeconds: estimate.DurationSeconds,
			ReminderTime:    reminderTime,
		},
	}
	return s.RequestRepo.CreateRequest(ctx, req)
}

// GetOne returns a request regardless of its active flag, so cancelled
// requests remain viewable. When the request has an in-flight trip, the
// provider's live trip document is attached.
func (s *RequestService) GetOne(ctx context.Context, userID, requestID string) (models.RideRequest, error) {
	user, err := s.UserRepo.GetActiveUserByID(ctx, userID)
	if err != nil {
		return models.RideRequest{}, err
	}

	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.RideRequest{}, err
	}

	trip, err := s.TripRepo.GetTripByRequestID(ctx, requestID)
	if errors.Is(err, models.ErrTripNotFound) {
		return req, nil
	}
	if err != nil {
		return models.RideRequest{}, err
	}

	detail, err := s.RideAPI.TripDetail(ctx, user.AccessToken, trip.ProviderTripID)
	if err != nil {
		return models.RideRequest{}, err
	}
	req.Trip = detail
	return req, nil
}

// Cancel cancels the in-flight provider trip and deactivates the request.
// A request without a trip cannot be cancelled, and an already cancelled
// request is not found by the active lookup, so a second cancel fails.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID string) (models.RideRequest, error) {
	user, err := s.UserRepo.GetActiveUserByID(ctx, userID)
	if err != nil {
		return models.RideRequest{}, err
	}

	req, err := s.RequestRepo.GetActiveRequestByID(ctx, requestID)
	if err != nil {
		return models.RideRequest{}, err
	}

	trip, err := s.TripRepo.GetTripByRequestID(ctx, req.ID)
	if err != nil {
		return models.RideRequest{}, err
	}

	if err := s.RideAPI.CancelTrip(ctx, user.AccessToken, trip.ProviderTripID); err != nil {
		return models.RideRequest{}, err
	}

	return s.RequestRepo.Deactivate(ctx, req.ID)
}
