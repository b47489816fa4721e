// Package trader provides the REST client for the trading backend service.
// The backend owns strategies, live positions and the screener; this client
// only reads them and fires control actions.
package trader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client for the trading backend REST API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new backend client against the given base URL
// (e.g. http://localhost:8000)
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "trader").Logger(),
	}
}

// Health is the backend /health payload
type Health struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Strategy is one active strategy summary from /strategies/active
type Strategy struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Symbol    string  `json:"symbol"`
	PnL       float64 `json:"pnl"`
	Trades    int     `json:"trades"`
	StartedAt string  `json:"started_at"`
}

// LivePosition is one row from /positions
type LivePosition struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	CurrentPrice  float64 `json:"current_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	StrategyID    string  `json:"strategy_id"`
}

// OrderRequest is the body for POST /orders
type OrderRequest struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
}

// ScreenerConfig is one entry from /screener/configs
type ScreenerConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    int    `json:"criteria"`
}

// ScreenerResult is one row from /screener/latest
type ScreenerResult struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	LastPrice float64 `json:"last_price"`
	Volume    int64   `json:"volume"`
	MatchedAt string  `json:"matched_at"`
}

// ScreenerRunRequest is the body for POST /screener/run
type ScreenerRunRequest struct {
	ConfigName  string `json:"config_name"`
	FetchQuotes bool   `json:"fetch_quotes"`
}

// GetHealth fetches the backend health envelope
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.getJSON(ctx, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetActiveStrategies fetches the active strategy list
func (c *Client) GetActiveStrategies(ctx context.Context) ([]Strategy, error) {
	var strategies []Strategy
	if err := c.getJSON(ctx, "/strategies/active", nil, &strategies); err != nil {
		return nil, err
	}
	return strategies, nil
}

// GetPositions fetches the live positions list
func (c *Client) GetPositions(ctx context.Context) ([]LivePosition, error) {
	var positions []LivePosition
	if err := c.getJSON(ctx, "/positions", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// ControlStrategy fires a start/pause/stop action for a strategy.
// Fire-and-forget: the caller gets the transport result but the backend
// applies the action asynchronously.
func (c *Client) ControlStrategy(ctx context.Context, strategyID, action string) error {
	switch action {
	case "start", "pause", "stop":
	default:
		return fmt.Errorf("invalid strategy action: %s", action)
	}
	path := fmt.Sprintf("/strategies/%s/%s", url.PathEscape(strategyID), action)
	return c.postJSON(ctx, path, nil, nil)
}

// PlaceOrder submits an order through the backend
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) error {
	return c.postJSON(ctx, "/orders", req, nil)
}

// GetScreenerConfigs fetches the available screener configurations
func (c *Client) GetScreenerConfigs(ctx context.Context) ([]ScreenerConfig, error) {
	var configs []ScreenerConfig
	if err := c.getJSON(ctx, "/screener/configs", nil, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// GetLatestScreenerResults fetches the latest results for a configuration
func (c *Client) GetLatestScreenerResults(ctx context.Context, configName string, limit int) ([]ScreenerResult, error) {
	params := url.Values{}
	params.Set("config_name", configName)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var results []ScreenerResult
	if err := c.getJSON(ctx, "/screener/latest", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// RunScreener triggers a new screener scan
func (c *Client) RunScreener(ctx context.Context, req ScreenerRunRequest) error {
	return c.postJSON(ctx, "/screener/run", req, nil)
}

// getJSON performs a GET and decodes the response body into out
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

// postJSON performs a POST with an optional JSON body
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
