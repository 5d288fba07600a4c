package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"invodex/internal/analysis"
	"invodex/internal/config"
	"invodex/internal/port"
)

const (
	apiVersion   = "2024-11-30"
	providerName = "azure-di"
)

// Client implements port.DocumentAnalyzer against the Azure Document
// Intelligence REST API. Analysis is a long-running operation: the submit
// returns 202 with an Operation-Location header, which the client polls at a
// fixed interval until a terminal state or the poll budget runs out.
type Client struct {
	endpoint        string
	apiKey          string
	pollInterval    time.Duration
	maxPollAttempts int
	maxRetries      int
	client          *http.Client
	sleep           func(time.Duration)
}

// Option customizes a Client; used by tests to point at an httptest server
// and to make sleeps deterministic.
type Option func(*Client)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithSleep overrides the sleep function used between retries and polls.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient creates a Document Intelligence client from config.
func NewClient(cfg *config.AzureConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pollInterval := cfg.PollInterval()
	if pollInterval == 0 {
		pollInterval = time.Second
	}
	maxPollAttempts := cfg.MaxPollAttempts
	if maxPollAttempts == 0 {
		maxPollAttempts = 60
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	c := &Client{
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:          cfg.APIKey,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		maxRetries:      maxRetries,
		client:          &http.Client{Timeout: timeout},
		sleep:           time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// operationResponse models the poll response of an analyze operation.
type operationResponse struct {
	Status        string              `json:"status"`
	AnalyzeResult *port.AnalyzeResult `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func isTerminal(status string) bool {
	switch status {
	case "succeeded", "failed", "partiallySucceeded":
		return true
	}
	return false
}

func (c *Client) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeResult, error) {
	submitURL := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, input.Analyzer, apiVersion)
	if input.Locale != "" {
		submitURL += "&locale=" + url.QueryEscape(input.Locale)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		operationURL, result, err := c.submit(ctx, submitURL, input)
		if err != nil {
			var rlErr *rateLimitError
			if !errors.As(err, &rlErr) {
				return nil, err
			}
			lastErr = rlErr.err
			if attempt < c.maxRetries-1 {
				wait := rlErr.retryAfter
				if wait < 0 {
					wait = time.Duration(1<<attempt) * time.Second
				}
				log.Printf("azure.Client: rate limited (429), retrying after %s (attempt %d/%d)",
					wait, attempt+1, c.maxRetries)
				c.sleep(wait)
			}
			continue
		}
		if result != nil {
			// Some environments return the payload inline on submit.
			return result, nil
		}
		return c.poll(ctx, operationURL)
	}
	return nil, analysis.NewError(providerName, lastErr)
}

// rateLimitError is internal to the submit/retry loop; a retryAfter below
// zero means the provider suggested no interval.
type rateLimitError struct {
	err        error
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return e.err.Error() }

// submit posts the document bytes. On 202 it returns the operation URL to
// poll; on an inline 200 payload it returns the parsed result directly.
func (c *Client) submit(ctx context.Context, submitURL string, input port.AnalyzeInput) (string, *port.AnalyzeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(input.Content))
	if err != nil {
		return "", nil, analysis.NewError(providerName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", input.ContentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, analysis.NewError(providerName, fmt.Errorf("submitting analysis: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, analysis.NewError(providerName, fmt.Errorf("reading submit response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := time.Duration(-1)
		if secs := analysis.ParseRetryAfterHeader(resp.Header.Get("Retry-After")); secs >= 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		return "", nil, &rateLimitError{
			err:        fmt.Errorf("analysis API rate limited (status 429): %s", string(body)),
			retryAfter: retryAfter,
		}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted:
		return "", nil, analysis.NewError(providerName,
			fmt.Errorf("analysis API error (status %d): %s", resp.StatusCode, string(body)))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		var op operationResponse
		if err := json.Unmarshal(body, &op); err == nil && op.AnalyzeResult != nil {
			return "", op.AnalyzeResult, nil
		}
		return "", nil, analysis.NewError(providerName,
			fmt.Errorf("provider did not return an Operation-Location header"))
	}
	return operationURL, nil, nil
}

// poll drives the operation to a terminal state. All three terminal states
// return the same payload; partial success is not distinguished downstream.
func (c *Client) poll(ctx context.Context, operationURL string) (*port.AnalyzeResult, error) {
	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
		if err != nil {
			return nil, analysis.NewError(providerName, fmt.Errorf("creating poll request: %w", err))
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, analysis.NewError(providerName, fmt.Errorf("polling operation: %w", err))
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, analysis.NewError(providerName, fmt.Errorf("reading poll response: %w", err))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, analysis.NewError(providerName,
				fmt.Errorf("poll error (status %d): %s", resp.StatusCode, string(body)))
		}

		var op operationResponse
		if err := json.Unmarshal(body, &op); err != nil {
			return nil, analysis.NewError(providerName, fmt.Errorf("unmarshaling poll response: %w", err))
		}
		if isTerminal(op.Status) {
			if op.Status != "succeeded" {
				log.Printf("azure.Client: operation finished with status %q", op.Status)
			}
			if op.AnalyzeResult != nil {
				return op.AnalyzeResult, nil
			}
			return &port.AnalyzeResult{}, nil
		}
		c.sleep(c.pollInterval)
	}
	return nil, &analysis.TimeoutError{Provider: providerName, Attempts: c.maxPollAttempts}
}
