package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"driveshare/internal/models"
)

const cacheKey = "catalog:vehicles"

// Client fetches the hosted vehicle catalog. The catalog is reference
// data only; nothing in the booking flow depends on it being fresh, so
// responses may be served from an optional Redis cache.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

func NewClient(url string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache configures optional Redis caching for catalog fetches.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Fetch returns the full catalog. A fetch failure is an error, not a
// fatal condition: callers render an empty catalog and move on.
func (c *Client) Fetch(ctx context.Context) ([]models.VehicleCatalogEntry, error) {
	if entries, ok := c.readCache(ctx); ok {
		return entries, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("catalog fetch failed")
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch returned http %d", resp.StatusCode)
	}

	var entries []models.VehicleCatalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c.writeCache(ctx, entries)
	return entries, nil
}

func (c *Client) readCache(ctx context.Context) ([]models.VehicleCatalogEntry, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	val, err := c.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return nil, false
	}
	var entries []models.VehicleCatalogEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *Client) writeCache(ctx context.Context, entries []models.VehicleCatalogEntry) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache catalog")
	}
}
