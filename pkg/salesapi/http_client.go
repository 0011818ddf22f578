package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

const (
	// DefaultBaseURL is where the sales backend listens in local setups.
	DefaultBaseURL = "http://localhost:8080"

	analyticsPath  = "/v1/sales/analytics"
	predictionPath = "/v1/sales/predict"

	maxErrorBody = 4 << 10
)

// HTTPConfig configures the HTTP sales client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient talks to the sales analytics and prediction endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for the sales backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("salesapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchAnalytics implements sales.AnalyticsSource via POST /v1/sales/analytics.
func (c *HTTPClient) FetchAnalytics(ctx context.Context, query sales.AnalyticsQuery) (sales.AnalyticsReport, error) {
	req := newAnalyticsRequest(query)
	var resp analyticsResponse
	if err := c.do(ctx, analyticsPath, req, &resp); err != nil {
		return sales.AnalyticsReport{}, err
	}
	return resp.toReport()
}

// FetchPrediction implements sales.PredictionSource via POST /v1/sales/predict.
func (c *HTTPClient) FetchPrediction(ctx context.Context, query sales.PredictionQuery) (sales.PredictionReport, error) {
	req := newPredictionRequest(query)
	var resp predictionResponse
	if err := c.do(ctx, predictionPath, req, &resp); err != nil {
		return sales.PredictionReport{}, err
	}
	return resp.toReport()
}

func (c *HTTPClient) do(ctx context.Context, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("salesapi: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("salesapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("salesapi: %s: %w", path, ctxErr)
		}
		return fmt.Errorf("%w: salesapi: %s: %v", sales.ErrTransport, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RemoteError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(buf))}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: salesapi: decode %s: %v", sales.ErrMalformedResponse, path, err)
	}
	return nil
}

// RemoteError is a non-2xx answer from the backend.
type RemoteError struct {
	Path   string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("salesapi: %s: remote error %d", e.Path, e.Status)
	}
	return fmt.Sprintf("salesapi: %s: remote error %d: %s", e.Path, e.Status, e.Body)
}

// Unwrap classifies the status: 5xx and 429 are transient transport errors.
func (e *RemoteError) Unwrap() error {
	if e.Status >= 500 || e.Status == http.StatusTooManyRequests {
		return sales.ErrTransport
	}
	return sales.ErrRemote
}
