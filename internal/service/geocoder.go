package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blooddrive-backend/internal/logger"

	"github.com/go-resty/resty/v2"
)

// nominatimPlace is one entry of a Nominatim search response. Coordinates
// arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatimGeocoder struct {
	client *resty.Client
}

// NewGeocoder returns a Geocoder for a Nominatim-compatible search API.
func NewGeocoder(baseURL, userAgent string, timeout time.Duration, retryCount int) Geocoder {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	return &nominatimGeocoder{client: client}
}

func (g *nominatimGeocoder) Geocode(ctx context.Context, address, city string) (float64, float64, bool, error) {
	query := strings.TrimSpace(strings.Trim(strings.TrimSpace(address)+", "+strings.TrimSpace(city), ", "))
	if query == "" {
		return 0, 0, false, nil
	}

	var places []nominatimPlace
	logger.ExternalServiceCall("Nominatim", "search", "query", query)
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&places).
		Get("/search")
	if err != nil {
		logger.ExternalServiceResult("Nominatim", "search", err)
		return 0, 0, false, fmt.Errorf("geocoding request failed: %w", err)
	}
	if resp.IsError() {
		err := fmt.Errorf("geocoding failed with status %d", resp.StatusCode())
		logger.ExternalServiceResult("Nominatim", "search", err)
		return 0, 0, false, err
	}
	logger.ExternalServiceResult("Nominatim", "search", nil, "matches", len(places))

	if len(places) == 0 {
		return 0, 0, false, nil
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("bad latitude %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("bad longitude %q: %w", places[0].Lon, err)
	}
	return lat, lng, true, nil
}
