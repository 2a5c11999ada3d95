package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"driveshare/internal/metrics"
	"driveshare/internal/models"
)

// Client resolves addresses against a Nominatim-compatible HTTP endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve returns the coordinates of the first candidate the provider
// reports for the address. An answered request with zero candidates is
// ErrNoMatch; everything else that goes wrong is ErrUnavailable.
func (c *Client) Resolve(ctx context.Context, address string) (models.Coordinates, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("address", address).Msg("geocode request failed")
		metrics.IncGeocode("unavailable")
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Str("address", address).Msg("geocode provider returned non-OK status")
		metrics.IncGeocode("unavailable")
		return models.Coordinates{}, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	var candidates []candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		metrics.IncGeocode("unavailable")
		return models.Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if len(candidates) == 0 {
		metrics.IncGeocode("no_match")
		return models.Coordinates{}, ErrNoMatch
	}

	first := candidates[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		metrics.IncGeocode("unavailable")
		return models.Coordinates{}, fmt.Errorf("%w: parse lat %q: %v", ErrUnavailable, first.Lat, err)
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		metrics.IncGeocode("unavailable")
		return models.Coordinates{}, fmt.Errorf("%w: parse lon %q: %v", ErrUnavailable, first.Lon, err)
	}

	metrics.IncGeocode("resolved")
	return models.Coordinates{Lat: lat, Lng: lng}, nil
}
