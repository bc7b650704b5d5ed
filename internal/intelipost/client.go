// Package intelipost implements the HTTP client for the Intelipost rate
// aggregator consumed by the quote service.
package intelipost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cedran/backend-frete/internal/obs"
	"github.com/cedran/backend-frete/internal/quote"
	"github.com/cedran/backend-frete/internal/resilience"
)

// API endpoints relative to the configured base URL.
const (
	endpointQuoteByProduct  = "/quote_by_product"
	endpointSchedulingDates = "/available_scheduling_dates"
)

// ErrUnexpectedStatus is returned when the aggregator replies with a
// non-success HTTP status.
var ErrUnexpectedStatus = errors.New("intelipost: unexpected response status")

// Client talks JSON-over-HTTP to the aggregator. Requests carry the account
// API key; responses arrive wrapped in a {"content": ...} envelope.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

// NewClient constructs a Client with a single-attempt resilient transport.
// The quote path performs no retries; a failed call is terminal for the
// current quote attempt.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Timeout: timeout},
			Breaker:     resilience.NewBreaker(5, 0.6, 30*time.Second).WithTarget("intelipost"),
			MaxAttempts: 1,
			Timeout:     timeout,
		},
	}
}

type envelope struct {
	Content json.RawMessage `json:"content"`
	Status  string          `json:"status,omitempty"`
}

type schedulingContent struct {
	AvailableBusinessDays []string `json:"available_business_days"`
}

// QuoteByProducts submits the shipment payload and returns the aggregator's
// quote.
func (c *Client) QuoteByProducts(ctx context.Context, payload quote.Payload) (quote.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return quote.Response{}, fmt.Errorf("intelipost: encode payload: %w", err)
	}
	var resp quote.Response
	if err := c.do(ctx, http.MethodPost, endpointQuoteByProduct, "quote_by_product", bytes.NewReader(body), &resp); err != nil {
		return quote.Response{}, err
	}
	return resp, nil
}

// AvailableSchedulingDates fetches the schedulable business days for one
// delivery method between two postal codes.
func (c *Client) AvailableSchedulingDates(ctx context.Context, originZip, destZip string, methodID int64) ([]string, error) {
	path := fmt.Sprintf("%s/%s/%s/%d", endpointSchedulingDates, quote.SanitizeZip(originZip), quote.SanitizeZip(destZip), methodID)
	var content schedulingContent
	if err := c.do(ctx, http.MethodGet, path, "available_scheduling_dates", nil, &content); err != nil {
		return nil, err
	}
	return content.AvailableBusinessDays, nil
}

func (c *Client) do(ctx context.Context, method, path, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("intelipost: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("platform", "backend-frete")

	start := time.Now()
	resp, err := c.HTTP.Do(ctx, req)
	observe(endpoint, start, err)
	if err != nil {
		return fmt.Errorf("intelipost: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := readErrorMessage(resp.Body)
		if message == "" {
			message = resp.Status
		}
		return fmt.Errorf("intelipost: %s %s: %s: %w", method, path, message, ErrUnexpectedStatus)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("intelipost: decode response: %w", err)
	}
	if len(env.Content) == 0 {
		return errors.New("intelipost: response missing content")
	}
	if err := json.Unmarshal(env.Content, out); err != nil {
		return fmt.Errorf("intelipost: decode content: %w", err)
	}
	return nil
}

func observe(endpoint string, start time.Time, err error) {
	if obs.AggregatorRequestTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.AggregatorRequestTotal.WithLabelValues(endpoint, result).Inc()
	obs.AggregatorLatency.WithLabelValues(endpoint).Observe(obs.DurationMillis(time.Since(start)))
}

// readErrorMessage extracts a human-readable message from an error body.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var parsed struct {
		Messages []struct {
			Text string `json:"text"`
		} `json:"messages"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return strings.TrimSpace(string(data))
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	if len(parsed.Messages) > 0 {
		return parsed.Messages[0].Text
	}
	return ""
}
