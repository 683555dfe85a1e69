package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"ridereminder/internal/models"
	"ridereminder/internal/uber"
)

type fakeUserStore struct {
	users map[string]models.User
	calls int
}

func (f *fakeUserStore) GetActiveUserByID(ctx context.Context, id string) (models.User, error) {
	f.calls++
	user, ok := f.users[id]
	if !ok || !user.Active {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

type fakeRequestStore struct {
	requests map[string]models.RideRequest
	created  int
}

func (f *fakeRequestStore) CreateRequest(ctx context.Context, req models.RideRequest) (models.RideRequest, error) {
	f.created++
	req.ID = fmt.Sprintf("req-%d", f.created)
	req.Active = true
	req.CreatedAt = time.Now()
	if f.requests == nil {
		f.requests = make(map[string]models.RideRequest)
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRequestStore) GetActiveRequestsByUser(ctx context.Context, userID string) ([]models.RideRequest, error) {
	var out []models.RideRequest
	for _, req := range f.requests {
		if req.UserID == userID && req.Active {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) GetRequestByID(ctx context.Context, id string) (models.RideRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return models.RideRequest{}, models.ErrRequestNotFound
	}
	return req, nil
}

func (f *fakeRequestStore) GetActiveRequestByID(ctx context.Context, id string) (models.RideRequest, error) {
	req, ok := f.requests[id]
	if !ok || !req.Active {
		return models.RideRequest{}, models.ErrRequestNotFound
	}
	return req, nil
}

func (f *fakeRequestStore) Deactivate(ctx context.Context, id string) (models.RideRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return models.RideRequest{}, models.ErrRequestNotFound
	}
	req.Active = false
	f.requests[id] = req
	return req, nil
}

type fakeTripStore struct {
	trips map[string]models.Trip
}

func (f *fakeTripStore) GetTripByRequestID(ctx context.Context, requestID string) (models.Trip, error) {
	trip, ok := f.trips[requestID]
	if !ok {
		return models.Trip{}, models.ErrTripNotFound
	}
	return trip, nil
}

type fakeGeocoder struct {
	calls int
	err   error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	f.calls++
	if f.err != nil {
		return models.Location{}, f.err
	}
	return models.Location{
		Address:   "Resolved: " + address,
		Latitude:  float64(40 + f.calls),
		Longitude: float64(-70 - f.calls),
	}, nil
}

type fakeRideAPI struct {
	products      []uber.Product
	estimate      uber.Estimate
	estimateErr   error
	detail        json.RawMessage
	cancelErr     error
	productsCalls int
	estimateCalls int
	detailCalls   int
	cancelCalls   int
	cancelledID   string
}

func (f *fakeRideAPI) Products(ctx context.Context, latitude, longitude float64) ([]uber.Product, error) {
	f.productsCalls++
	return f.products, nil
}

func (f *fakeRideAPI) Estimate(ctx context.Context, accessToken, productID string, startLat, startLng, endLat, endLng float64) (uber.Estimate, error) {
	f.estimateCalls++
	if f.estimateErr != nil {
		return uber.Estimate{}, f.estimateErr
	}
	return f.estimate, nil
}

func (f *fakeRideAPI) TripDetail(ctx context.Context, accessToken, tripID string) (json.RawMessage, error) {
	f.detailCalls++
	return f.detail, nil
}

func (f *fakeRideAPI) CancelTrip(ctx context.Context, accessToken, tripID string) error {
	f.cancelCalls++
	f.cancelledID = tripID
	return f.cancelErr
}

func newTestService() (*RequestService, *fakeUserStore, *fakeRequestStore, *fakeTripStore, *fakeGeocoder, *fakeRideAPI) {
	users := &fakeUserStore{users: map[string]models.User{
		"u1": {ID: "u1", Active: true, AccessToken: "token-u1"},
		"u2": {ID: "u2", Active: false},
	}}
	requests := &fakeRequestStore{requests: map[string]models.RideRequest{}}
	trips := &fakeTripStore{trips: map[string]models.Trip{}}
	geocoder := &fakeGeocoder{}
	api := &fakeRideAPI{
		products: []uber.Product{
			{ID: "prod-x", DisplayName: "uberX"},
			{ID: "prod-black", DisplayName: "uberBLACK"},
		},
		estimate: uber.Estimate{PickupEstimate: 5, DurationSeconds: 600},
		detail:   json.RawMessage(`{"status":"accepted"}`),
	}
	svc := &RequestService{
		UserRepo:    users,
		RequestRepo: requests,
		TripRepo:    trips,
		Geocoder:    geocoder,
		RideAPI:     api,
	}
	return svc, users, requests, trips, geocoder, api
}

func validInput() models.CreateRequestInput {
	var input models.CreateRequestInput
	input.Start.Time = "2024-06-01T10:00:00Z"
	input.Start.Location = "1 Main St"
	input.End.Location = "2 Oak Ave"
	input.ProductType = "uberX"
	return input
}

func TestOperationsRejectMissingOrInactiveUser(t *testing.T) {
	ctx := context.Background()

	for _, userID := range []string{"missing", "u2"} {
		svc, _, _, _, _, api := newTestService()

		if _, err := svc.ListAll(ctx, userID); !errors.Is(err, models.ErrUserNotFound) {
			t.Fatalf("ListAll(%s): expected user not found, got %v", userID, err)
		}
		if _, err := svc.Create(ctx, userID, validInput()); !errors.Is(err, models.ErrUserNotFound) {
			t.Fatalf("Create(%s): expected user not found, got %v", userID, err)
		}
		if _, err := svc.GetOne(ctx, userID, "r1"); !errors.Is(err, models.ErrUserNotFound) {
			t.Fatalf("GetOne(%s): expected user not found, got %v", userID, err)
		}
		if _, err := svc.Cancel(ctx, userID, "r1"); !errors.Is(err, models.ErrUserNotFound) {
			t.Fatalf("Cancel(%s): expected user not found, got %v", userID, err)
		}

		if api.productsCalls != 0 || api.estimateCalls != 0 || api.detailCalls != 0 || api.cancelCalls != 0 {
			t.Fatalf("provider must not be called for user %s", userID)
		}
	}
}

func TestCreateRejectsIncompletePayloadBeforeAnyCall(t *testing.T) {
	ctx := context.Background()

	mutations := map[string]func(*models.CreateRequestInput){
		"missing start time":     func(in *models.CreateRequestInput) { in.Start.Time = "" },
		"missing start location": func(in *models.CreateRequestInput) { in.Start.Location = "" },
		"missing end location":   func(in *models.CreateRequestInput) { in.End.Location = "" },
		"missing product type":   func(in *models.CreateRequestInput) { in.ProductType = "" },
		"unparseable start time": func(in *models.CreateRequestInput) { in.Start.Time = "tomorrow-ish" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			svc, _, requests, _, geocoder, api := newTestService()
			input := validInput()
			mutate(&input)

			_, err := svc.Create(ctx, "u1", input)
			if !errors.Is(err, models.ErrInvalidRequest) {
				t.Fatalf("expected invalid request, got %v", err)
			}
			if geocoder.calls != 0 {
				t.Fatalf("geocoder must not be called, got %d calls", geocoder.calls)
			}
			if api.productsCalls != 0 || api.estimateCalls != 0 {
				t.Fatalf("provider must not be called")
			}
			if requests.created != 0 {
				t.Fatalf("nothing should be persisted")
			}
		})
	}
}

func TestCreateComputesReminderTime(t *testing.T) {
	svc, _, _, _, _, api := newTestService()
	api.estimate = uber.Estimate{PickupEstimate: 3, DurationSeconds: 1800}

	created, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	startTime := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	wantReminder := startTime.Add(-15 * time.Minute).Add(-1800 * time.Second)
	if !created.Product.ReminderTime.Equal(wantReminder) {
		t.Fatalf("reminder time: want %s, got %s", wantReminder, created.Product.ReminderTime)
	}
	if created.Product.DurationSeconds != 1800 {
		t.Fatalf("duration: want 1800, got %d", created.Product.DurationSeconds)
	}
	if created.Product.ID != "prod-x" || created.Product.Name != "uberX" {
		t.Fatalf("unexpected product: %+v", created.Product)
	}
	if !created.Active {
		t.Fatalf("new request must be active")
	}
	if created.Start.Location.Address != "Resolved: 1 Main St" {
		t.Fatalf("start location not geocoded: %+v", created.Start.Location)
	}
	if created.End.Location.Address != "Resolved: 2 Oak Ave" {
		t.Fatalf("end location not geocoded: %+v", created.End.Location)
	}
	if !created.Start.Time.Equal(startTime) {
		t.Fatalf("start time: want %s, got %s", startTime, created.Start.Time)
	}
}

func TestCreateZeroDurationReminder(t *testing.T) {
	svc, _, _, _, _, api := newTestService()
	api.estimate = uber.Estimate{PickupEstimate: 1, DurationSeconds: 0}

	created, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := time.Date(2024, 6, 1, 9, 45, 0, 0, time.UTC)
	if !created.Product.ReminderTime.Equal(want) {
		t.Fatalf("reminder time: want %s, got %s", want, created.Product.ReminderTime)
	}
}

func TestCreateUnmatchedProductType(t *testing.T) {
	svc, _, requests, _, _, api := newTestService()

	input := validInput()
	input.ProductType = "uberCOPTER"

	_, err := svc.Create(context.Background(), "u1", input)
	if !errors.Is(err, models.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
	if api.estimateCalls != 0 {
		t.Fatalf("estimate must not be called for unmatched product")
	}
	if requests.created != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestCreateGeocodeFailure(t *testing.T) {
	svc, _, requests, _, geocoder, _ := newTestService()
	geocoder.err = errors.New("no results")

	_, err := svc.Create(context.Background(), "u1", validInput())
	if !errors.Is(err, models.ErrGeocodingFailed) {
		t.Fatalf("expected geocoding failure, got %v", err)
	}
	if requests.created != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestListAllReturnsOnlyActiveRequests(t *testing.T) {
	svc, _, requests, _, _, _ := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: true}
	requests.requests["r2"] = models.RideRequest{ID: "r2", UserID: "u1", Active: false}
	requests.requests["r3"] = models.RideRequest{ID: "r3", UserID: "other", Active: true}

	got, err := svc.ListAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected only r1, got %+v", got)
	}
}

func TestListAllEmptyIsNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.ListAll(context.Background(), "u1")
	if !errors.Is(err, models.ErrNoRequests) {
		t.Fatalf("expected no requests error, got %v", err)
	}
}

func TestGetOneWithoutTrip(t *testing.T) {
	svc, _, requests, _, _, api := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: true}

	got, err := svc.GetOne(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	if got.Trip != nil {
		t.Fatalf("expected no trip attached, got %s", got.Trip)
	}
	if api.detailCalls != 0 {
		t.Fatalf("trip detail must not be called without a trip")
	}
}

func TestGetOneAttachesLiveTrip(t *testing.T) {
	svc, _, requests, trips, _, api := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: true}
	trips.trips["r1"] = models.Trip{ID: "t1", RequestID: "r1", ProviderTripID: "prov-77"}

	got, err := svc.GetOne(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	if string(got.Trip) != `{"status":"accepted"}` {
		t.Fatalf("unexpected trip payload: %s", got.Trip)
	}
	if api.detailCalls != 1 {
		t.Fatalf("expected one trip detail call, got %d", api.detailCalls)
	}
}

func TestGetOneReturnsCancelledRequests(t *testing.T) {
	svc, _, requests, _, _, _ := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: false}

	got, err := svc.GetOne(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	if got.Active {
		t.Fatalf("expected inactive request")
	}
}

func TestCancelRequiresTrip(t *testing.T) {
	svc, _, requests, _, _, api := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: true}

	_, err := svc.Cancel(context.Background(), "u1", "r1")
	if !errors.Is(err, models.ErrTripNotFound) {
		t.Fatalf("expected trip not found, got %v", err)
	}
	if api.cancelCalls != 0 {
		t.Fatalf("provider cancel must not be called")
	}
	if !requests.requests["r1"].Active {
		t.Fatalf("request must stay active")
	}
}

func TestCancelProviderRefusal(t *testing.T) {
	svc, _, requests, trips, _, api := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: true}
	trips.trips["r1"] = models.Trip{ID: "t1", RequestID: "r1", ProviderTripID: "prov-77"}
	api.cancelErr = &uber.APIError{StatusCode: 409, Body: "conflict"}

	_, err := svc.Cancel(context.Background(), "u1", "r1")
	var apiErr *uber.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if !requests.requests["r1"].Active {
		t.Fatalf("request must stay active when the provider refuses")
	}
}

func TestCancelFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, requests, trips, _, api := newTestService()
	requests.requests["r1"] = models.RideRequest{ID: "r1", UserID: "u1", Active: true}
	trips.trips["r1"] = models.Trip{ID: "t1", RequestID: "r1", ProviderTripID: "prov-77"}

	cancelled, err := svc.Cancel(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Active {
		t.Fatalf("expected request deactivated")
	}
	if api.cancelledID != "prov-77" {
		t.Fatalf("cancel called with %q, want prov-77", api.cancelledID)
	}

	// excluded from listings
	if _, err := svc.ListAll(ctx, "u1"); !errors.Is(err, models.ErrNoRequests) {
		t.Fatalf("cancelled request must not be listed, got %v", err)
	}

	// still viewable, trip data included
	got, err := svc.GetOne(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("GetOne after cancel: %v", err)
	}
	if got.Active {
		t.Fatalf("expected inactive request")
	}
	if got.Trip == nil {
		t.Fatalf("expected trip data on cancelled request")
	}

	// second cancel hits the active-only lookup
	if _, err := svc.Cancel(ctx, "u1", "r1"); !errors.Is(err, models.ErrRequestNotFound) {
		t.Fatalf("second cancel: expected request not found, got %v", err)
	}
	if api.cancelCalls != 1 {
		t.Fatalf("provider cancel must not repeat, got %d calls", api.cancelCalls)
	}
}
