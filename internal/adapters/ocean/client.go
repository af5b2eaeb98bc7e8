package ocean

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
)

const (
	defaultCircuitThreshold = 5
	defaultCircuitTimeout   = 60 * time.Second
	cacheSize               = 4096
	// coordinates and timestamps are rounded to this grid before lookup,
	// since the service is a gridded ocean-climate model, not a point
	// reading: nearby haul locations/times reuse the same cache entry.
	gridDegrees    = 0.25
	gridTimeWindow = time.Hour
)

// Client implements common.OceanClimateClient over HTTP, adapted from the
// teacher's SpaceTradersClient: same rate limiter, retry-with-backoff, and
// circuit breaker shape, now fronted by an LRU cache since weather/ocean-
// climate readings are requested repeatedly for nearby catch locations.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	baseURL        string
	maxRetries     int
	backoffBase    time.Duration
	circuitBreaker *CircuitBreaker
	clock          shared.Clock

	weatherCache *lru.Cache[string, common.WeatherReading]
	climateCache *lru.Cache[string, common.OceanClimateReading]
}

// NewClient creates an ocean-climate client from configuration; clock nil
// defaults to RealClock.
func NewClient(cfg config.OceanClimateConfig, clock shared.Clock) (*Client, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	weatherCache, err := lru.New[string, common.WeatherReading](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather cache: %w", err)
	}
	climateCache, err := lru.New[string, common.OceanClimateReading](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create ocean climate cache: %w", err)
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		rateLimiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst),
		baseURL:        cfg.BaseURL,
		maxRetries:     cfg.Retry.MaxAttempts,
		backoffBase:    cfg.Retry.BackoffBase,
		circuitBreaker: NewCircuitBreaker(defaultCircuitThreshold, defaultCircuitTimeout, clock),
		clock:          clock,
		weatherCache:   weatherCache,
		climateCache:   climateCache,
	}, nil
}

func gridKey(point common.AreaPoint, at time.Time) string {
	lat := math.Round(point.Lat/gridDegrees) * gridDegrees
	lon := math.Round(point.Lon/gridDegrees) * gridDegrees
	bucket := at.Truncate(gridTimeWindow)
	return fmt.Sprintf("%.2f,%.2f,%d", lat, lon, bucket.Unix())
}

// WeatherAt returns the wind/air-temperature reading for a point and time.
func (c *Client) WeatherAt(ctx context.Context, point common.AreaPoint, at time.Time) (*common.WeatherReading, error) {
	key := gridKey(point, at)
	if cached, ok := c.weatherCache.Get(key); ok {
		return &cached, nil
	}

	var response struct {
		WindSpeedMs   float64 `json:"wind_speed_ms"`
		WindDirection float64 `json:"wind_direction_deg"`
		AirTempC      float64 `json:"air_temp_c"`
	}
	path := fmt.Sprintf("/weather?lat=%f&lon=%f&at=%s", point.Lat, point.Lon, at.UTC().Format(time.RFC3339))
	if err := c.request(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch weather: %w", err)
	}

	reading := common.WeatherReading{
		WindSpeedMs:   response.WindSpeedMs,
		WindDirection: response.WindDirection,
		AirTempC:      response.AirTempC,
	}
	c.weatherCache.Add(key, reading)
	return &reading, nil
}

// OceanClimateAt returns the sea-temperature/salinity reading for a point
// and time.
func (c *Client) OceanClimateAt(ctx context.Context, point common.AreaPoint, at time.Time) (*common.OceanClimateReading, error) {
	key := gridKey(point, at)
	if cached, ok := c.climateCache.Get(key); ok {
		return &cached, nil
	}

	var response struct {
		SeaTempC    float64 `json:"sea_temp_c"`
		SalinityPsu float64 `json:"salinity_psu"`
	}
	path := fmt.Sprintf("/ocean-climate?lat=%f&lon=%f&at=%s", point.Lat, point.Lon, at.UTC().Format(time.RFC3339))
	if err := c.request(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch ocean climate: %w", err)
	}

	reading := common.OceanClimateReading{
		SeaTempC:    response.SeaTempC,
		SalinityPsu: response.SalinityPsu,
	}
	c.climateCache.Add(key, reading)
	return &reading, nil
}

// request performs a rate-limited, retried, circuit-broken GET against the
// ocean-climate service, the same resilience stack as the teacher's
// SpaceTraders API client applied to a read-only external collaborator.
func (c *Client) request(ctx context.Context, path string, result interface{}) error {
	url := c.baseURL + path

	return c.circuitBreaker.Call(func() error {
		var lastErr error
		for attempt := 0; attempt <= c.maxRetries; attempt++ {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter error: %w", err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				lastErr = err
				if attempt >= c.maxRetries {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("context cancelled: %w", ctx.Err())
				}
				c.clock.Sleep(c.backoffBase * time.Duration(1<<attempt))
				continue
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("ocean climate service error (status %d)", resp.StatusCode)
				if attempt >= c.maxRetries {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("context cancelled: %w", ctx.Err())
				}
				c.clock.Sleep(c.backoffBase * time.Duration(1<<attempt))
				continue
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("ocean climate service error (status %d): %s", resp.StatusCode, string(body))
			}

			if result != nil {
				if err := json.Unmarshal(body, result); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
			}
			return nil
		}

		if lastErr != nil {
			return fmt.Errorf("max retries exceeded: %w", lastErr)
		}
		return fmt.Errorf("max retries exceeded")
	})
}
