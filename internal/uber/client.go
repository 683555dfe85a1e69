package uber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds endpoint addresses and the server-level credential used for
// catalog lookups. Per-user calls authenticate with the user's own bearer
// token instead.
type Config struct {
	BaseURL     string
	SandboxURL  string
	ServerToken string
}

// Client is a minimal ride-hailing provider API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	sandboxURL  string
	serverToken string
}

// NewClient constructs a new provider client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		sandboxURL:  strings.TrimSuffix(cfg.SandboxURL, "/"),
		serverToken: cfg.ServerToken,
	}
}

// ErrInvalidResponse marks 2xx answers whose body cannot be used.
var ErrInvalidResponse = errors.New("uber: invalid response")

// APIError is returned when the provider answers with an unexpected status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("uber: unexpected status %d: %s", e.StatusCode, e.Body)
}

func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// Product is one entry of the provider's catalog for a region.
type Product struct {
	ID          string `json:"product_id"`
	DisplayName string `json:"display_name"`
}

// Products lists the catalog available around the given coordinates.
// Authenticated with the server token.
func (c *Client) Products(ctx context.Context, latitude, longitude float64) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("server_token", c.serverToken)
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))

	endpoint := fmt.Sprintf("%s/products?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("products: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: products decode: %v", ErrInvalidResponse, err)
	}
	return payload.Products, nil
}

// Estimate is the provider's pickup and trip duration projection.
type Estimate struct {
	PickupEstimate  int
	DurationSeconds int
}

// Estimate asks the provider for pickup and duration estimates between two
// coordinate pairs for the chosen product. Authenticated as the user.
func (c *Client) Estimate(ctx context.Context, accessToken, productID string, startLat, startLng, endLat, endLng float64) (Estimate, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	payload := struct {
		ProductID      string  `json:"product_id"`
		StartLatitude  float64 `json:"start_latitude"`
		StartLongitude float64 `json:"start_longitude"`
		EndLatitude    float64 `json:"end_latitude"`
		EndLongitude   float64 `json:"end_longitude"`
	}{
		ProductID:      productID,
		StartLatitude:  startLat,
		StartLongitude: startLng,
		EndLatitude:    endLat,
		EndLongitude:   endLng,
	}

	body, err := json.Marshal(&payload)
	if err != nil {
		return Estimate{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/requests/estimate", bytes.NewReader(body))
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Estimate{}, apiError(resp)
	}

	var apiResp struct {
		PickupEstimate *int `json:"pickup_estimate"`
		Trip           *struct {
			DurationEstimate int `json:"duration_estimate"`
		} `json:"trip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Estimate{}, fmt.Errorf("%w: estimate decode: %v", ErrInvalidResponse, err)
	}
	// The provider sometimes answers 200 with a body missing either section.
	if apiResp.Trip == nil || apiResp.PickupEstimate == nil {
		return Estimate{}, fmt.Errorf("%w: estimate incomplete", ErrInvalidResponse)
	}
	return Estimate{
		PickupEstimate:  *apiResp.PickupEstimate,
		DurationSeconds: apiResp.Trip.DurationEstimate,
	}, nil
}

// TripDetail fetches the live trip document from the sandbox endpoint.
// The document is passed through untouched.
func (c *Client) TripDetail(ctx context.Context, accessToken, tripID string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/requests/%s", c.sandboxURL, url.PathEscape(tripID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("trip detail: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trip detail: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var detail json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("%w: trip detail decode: %v", ErrInvalidResponse, err)
	}
	return detail, nil
}

// CancelTrip cancels the in-flight trip. The provider signals success with
// 204 No Content; every other status is a failure.
func (c *Client) CancelTrip(ctx context.Context, accessToken, tripID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/requests/%s", c.sandboxURL, url.PathEscape(tripID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cancel trip: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cancel trip: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}
