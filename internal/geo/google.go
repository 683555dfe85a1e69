package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ridereminder/internal/models"
)

const geocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode"

// GoogleClient resolves free-text addresses through the Google Geocoding API.
type GoogleClient struct {
	httpClient *http.Client
	apiKey     string
}

// NewGoogleClient constructs a new geocoding client.
func NewGoogleClient(httpClient *http.Client, apiKey string) *GoogleClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &GoogleClient{httpClient: httpClient, apiKey: apiKey}
}

// Geocode resolves the given address to a formatted address and coordinates.
// The first result wins.
func (c *GoogleClient) Geocode(ctx context.Context, address string) (models.Location, error) {
	if strings.TrimSpace(address) == "" {
		return models.Location{}, errors.New("geocode: empty address")
	}

	// Per-call timeout
	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s/json?%s", geocodeBaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return models.Location{}, fmt.Errorf("geocode: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Location{}, fmt.Errorf("geocode: decode: %w", err)
	}
	if payload.Status != "OK" || len(payload.Results) == 0 {
		return models.Location{}, fmt.Errorf("geocode: no results (status=%s query=%q)", payload.Status, address)
	}

	first := payload.Results[0]
	return models.Location{
		Address:   first.FormattedAddress,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}
