package autotrade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/fincept/autotrade-bridge/internal/clientdata"
)

// Bridge commands. Each maps to one GET endpoint on the integration service.
const (
	CommandGetPositions   = "get_positions"
	CommandAccountSummary = "get_account_summary"
	CommandGetOrders      = "get_orders"
	CommandGetPerformance = "get_performance"
)

// commandRoute describes how a command reaches the backend and where its
// last-known-good payload is cached.
type commandRoute struct {
	path       string
	cacheTable string
}

var commandRoutes = map[string]commandRoute{
	CommandGetPositions:   {path: "/api/v1/positions", cacheTable: "positions"},
	CommandAccountSummary: {path: "/api/v1/portfolio", cacheTable: "account_summary"},
	CommandGetOrders:      {path: "/api/v1/orders", cacheTable: "orders"},
	CommandGetPerformance: {path: "/api/v1/portfolio/performance", cacheTable: "performance"},
}

// Invoker executes bridge commands. The adapter depends on this interface so
// tests can count and stub calls without a live backend.
type Invoker interface {
	Invoke(ctx context.Context, command, accountID string, params map[string]string) (*CommandResponse, error)
}

// Bridge is the HTTP command client for the Autotrade Integration Service.
// Failed calls fall back to the payload cache; successful calls refresh it.
type Bridge struct {
	baseURL  string
	client   *http.Client
	cache    *clientdata.Repository
	cacheTTL time.Duration
	breaker  *gobreaker.CircuitBreaker
	logger   zerolog.Logger
}

// NewBridge creates a bridge client against the given base URL
// (e.g. http://localhost:8001). The cache may be nil, in which case transport
// failures surface directly instead of degrading to stale payloads.
func NewBridge(baseURL string, timeout time.Duration, cache *clientdata.Repository, logger zerolog.Logger) *Bridge {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "autotrade-bridge",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Bridge{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: 24 * time.Hour,
		breaker:  breaker,
		logger:   logger.With().Str("component", "autotrade_bridge").Logger(),
	}
}

// SetCacheTTL overrides how long stored payloads stay fresh. The fallback
// path serves them past expiry regardless; the TTL only controls when the
// cleanup job may drop them.
func (b *Bridge) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		b.cacheTTL = ttl
	}
}

// Invoke executes a command and returns the envelope. On transport failure
// (backend down, breaker open, timeout) it serves the last-known-good payload
// with Stale=true and AgeSeconds set; only when no cached payload exists does
// the error propagate.
func (b *Bridge) Invoke(ctx context.Context, command, accountID string, params map[string]string) (*CommandResponse, error) {
	route, ok := commandRoutes[command]
	if !ok {
		return nil, fmt.Errorf("unknown bridge command: %s", command)
	}

	body, err := b.fetch(ctx, route.path, params)
	if err != nil {
		return b.fallback(command, route, accountID, err)
	}

	// A bare top-level array is an unwrapped payload; it cannot carry the
	// envelope and must not be mistaken for a transport failure.
	if trimmed := bytes.TrimLeft(body, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		data := json.RawMessage(body)
		b.storePayload(route, accountID, data)
		return &CommandResponse{
			Success:   true,
			Data:      data,
			Timestamp: time.Now().Unix(),
		}, nil
	}

	var env backendEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return b.fallback(command, route, accountID, fmt.Errorf("failed to decode response: %w", err))
	}

	// An explicit success=false is a backend-reported error, not a transport
	// failure. It propagates as-is and never touches the cache.
	if env.Success != nil && !*env.Success {
		msg := "backend reported failure"
		if env.Error != nil {
			msg = *env.Error
		}
		return &CommandResponse{
			Success:   false,
			Error:     &msg,
			Timestamp: time.Now().Unix(),
		}, nil
	}

	data := env.Data
	if env.Success == nil {
		// Unwrapped payload: some deployments return the data object directly.
		data = json.RawMessage(body)
	}

	b.storePayload(route, accountID, data)

	return &CommandResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}, nil
}

// Ping checks backend reachability via /health. Used by the status panel and
// the adapter health check.
func (b *Bridge) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend health returned status %d", resp.StatusCode)
	}
	return nil
}

// fetch performs the GET through the circuit breaker and returns the raw body.
func (b *Bridge) fetch(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	endpoint := b.baseURL + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		endpoint += "?" + q.Encode()
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := b.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// fallback serves the cached payload for a failed command, flagged stale.
func (b *Bridge) fallback(command string, route commandRoute, accountID string, cause error) (*CommandResponse, error) {
	if b.cache == nil {
		return nil, cause
	}

	rec, age, err := b.cache.GetStale(route.cacheTable, accountID)
	if err != nil {
		b.logger.Warn().Err(err).Str("command", command).Msg("Cache lookup failed during fallback")
		return nil, cause
	}
	if rec == nil {
		return nil, cause
	}

	b.logger.Warn().
		Err(cause).
		Str("command", command).
		Int64("age_seconds", age).
		Msg("Backend unreachable, serving cached payload")

	return &CommandResponse{
		Success:    true,
		Data:       json.RawMessage(rec.Body),
		Timestamp:  time.Now().Unix(),
		Stale:      true,
		AgeSeconds: age,
	}, nil
}

// storePayload refreshes the last-known-good cache after a successful call.
func (b *Bridge) storePayload(route commandRoute, accountID string, data json.RawMessage) {
	if b.cache == nil || len(data) == 0 {
		return
	}

	rec := clientdata.Record{
		Body:      []byte(data),
		SourceURL: b.baseURL + route.path,
		FetchedAt: time.Now().Unix(),
	}
	if err := b.cache.Store(route.cacheTable, accountID, rec, b.cacheTTL); err != nil {
		b.logger.Warn().Err(err).Str("table", route.cacheTable).Msg("Failed to cache payload")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
