package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"go.uber.org/zap"
)

const fieldMask = "formattedAddress,internationalPhoneNumber,websiteUri"

// DetailsCache is the subset of the cache service the client needs.
type DetailsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Client fetches the Place Details subset used for candidate enrichment.
// Lookups are best effort: any failure yields a zero PlaceDetails, never an
// error, so enrichment can degrade silently.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	cache      DetailsCache
	logger     *zap.Logger
}

func NewClient(apiKey, baseURL string, cache DetailsCache, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cache:      cache,
		logger:     logger,
	}
}

// Details resolves one place id. Ids from grounding metadata may or may not
// carry the "places/" resource prefix.
func (c *Client) Details(ctx context.Context, placeID string) domain.PlaceDetails {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return domain.PlaceDetails{}
	}
	if !strings.HasPrefix(placeID, "places/") {
		placeID = "places/" + placeID
	}

	cacheKey := "dermato:place:" + placeID
	if c.cache != nil {
		var cached domain.PlaceDetails
		if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return cached
		}
	}

	details, ok := c.fetch(ctx, placeID)
	if !ok {
		return domain.PlaceDetails{}
	}

	if c.cache != nil && !details.IsZero() {
		if err := c.cache.Set(ctx, cacheKey, details, constants.CacheTTL.PlaceDetails); err != nil {
			c.logger.Warn("Failed to cache place details", zap.String("place_id", placeID), zap.Error(err))
		}
	}

	return details
}

func (c *Client) fetch(ctx context.Context, placeID string) (domain.PlaceDetails, bool) {
	reqURL := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, placeID, fieldMask)

	var lastErr error
	for attempt := 0; attempt < constants.RetryConfig.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(c.computeDelay(attempt))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			c.logger.Error("Failed to build place details request", zap.Error(err))
			return domain.PlaceDetails{}, false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", fieldMask)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("place details status %d", resp.StatusCode)
			c.logger.Warn("Place details retryable failure",
				zap.String("place_id", placeID),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("Place details lookup rejected",
				zap.String("place_id", placeID),
				zap.Int("status", resp.StatusCode),
			)
			return domain.PlaceDetails{}, false
		}

		var details domain.PlaceDetails
		if err := json.Unmarshal(body, &details); err != nil {
			c.logger.Warn("Place details unmarshal failed", zap.String("place_id", placeID), zap.Error(err))
			return domain.PlaceDetails{}, false
		}
		return details, true
	}

	c.logger.Warn("Place details lookup failed",
		zap.String("place_id", placeID),
		zap.Error(lastErr),
	)
	return domain.PlaceDetails{}, false
}

func (c *Client) computeDelay(attempt int) time.Duration {
	delay := constants.RetryConfig.BaseDelay * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(constants.RetryConfig.Jitter)))
	return delay + jitter
}
