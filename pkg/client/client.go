// Package client provides the HTTP client for the Homi marketplace API with
// response caching, rate limit tracking and error classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/homi-client/pkg/cache"
	"github.com/Sternrassler/homi-client/pkg/ratelimit"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_client_requests_total",
		Help: "Total API requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homi_client_request_duration_seconds",
		Help:    "API request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_client_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// HeaderRequestID carries a per-request identifier for server-side tracing.
const HeaderRequestID = "X-Request-ID"

// Client talks to the Homi API.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, e.g. "https://api.homi.example/v1".
	BaseURL string

	// UserAgent sent with every request.
	UserAgent string

	// Redis enables the response cache and shared rate limit tracking.
	// nil runs the client without either.
	Redis *redis.Client

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// CacheTTL applies to responses without freshness headers.
	CacheTTL time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// 0 keeps one best-effort request per call.
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns the configuration used by the browse CLI.
func DefaultConfig(baseURL string, redisClient *redis.Client) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      "homi-client/0.1.0",
		Redis:          redisClient,
		Timeout:        30 * time.Second,
		CacheTTL:       cache.DefaultTTL,
		MaxRetries:     0,
		InitialBackoff: 250 * time.Millisecond,
	}
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "homi-client").Logger()

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		config:     cfg,
		logger:     logger,
	}
	if cfg.Redis != nil {
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
		c.cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}
	return c, nil
}

// Do sends req through the rate limit gate and the response cache.
// Responses with 4xx/5xx statuses are returned to the caller unless retries
// were configured and exhausted, in which case the last error is returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	resource := req.URL.Path

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}()

	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn().Err(err).Msg("Rate limit check failed, sending request anyway")
		} else if !allowed {
			requestsTotal.WithLabelValues(resource, "rate_limited").Inc()
			errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, ErrRateLimited
		}
	}

	cacheable := c.cache != nil && req.Method == http.MethodGet
	cacheKey := cache.Key{Resource: resource, Query: req.URL.Query()}

	var cached *cache.Entry
	if cacheable {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil && !entry.IsExpired():
			c.logger.Debug().Str("resource", resource).Msg("Serving list from cache")
			requestsTotal.WithLabelValues(resource, "cache").Inc()
			return cache.EntryToResponse(entry, req), nil
		case err == nil:
			cached = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("resource", resource).Msg("Cache get error")
		}
	}

	if cached != nil && cache.ShouldMakeConditionalRequest(cached) {
		cache.AddConditionalHeaders(req, cached)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("resource", resource).
			Str("etag", cached.ETag).
			Msg("Making conditional request")
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	var resp *http.Response
	retryCfg := RetryConfig{
		MaxAttempts:       c.config.MaxRetries + 1,
		InitialBackoff:    c.config.InitialBackoff,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}

	retryErr := retryWithBackoff(ctx, retryCfg, c.logger, func() (ErrorClass, error) {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(resource, "network_error").Inc()
			c.logger.Warn().Err(reqErr).Str("resource", resource).Msg("HTTP request failed")
			return ErrorClassNetwork, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: reqErr}
		}

		if c.rateLimiter != nil {
			if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		requestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

		class := classifyStatus(resp.StatusCode)
		if class == "" {
			return "", nil
		}
		errorsTotal.WithLabelValues(string(class)).Inc()

		if shouldRetry(class) && retryCfg.MaxAttempts > 1 {
			resp.Body.Close()
			return class, &APIError{StatusCode: resp.StatusCode, Class: class, Message: resp.Status}
		}
		return "", nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		resp.Body.Close()
		cache.NotModifiedResponses.Inc()

		newExpires := cache.ParseExpiry(resp.Header, c.cache.DefaultTTL())
		if err := c.cache.Refresh(ctx, cacheKey, newExpires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}

		c.logger.Debug().Str("resource", resource).Msg("304 Not Modified - using cache")
		return cache.EntryToResponse(cached, req), nil
	}

	if cacheable && resp.StatusCode == http.StatusOK && cache.IsStorable(resp.Header) {
		entry, err := cache.ResponseToEntry(resp, c.cache.DefaultTTL())
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return resp, nil
}

// Get performs a GET request against path relative to the base URL.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path, query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.Do(req)
}

// URL resolves path and query against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// Cache returns the response cache, nil when Redis is not configured.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLogger replaces the client logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
