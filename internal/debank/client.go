package debank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the DeBank Pro OpenAPI host.
	DefaultBaseURL = "https://pro-openapi.debank.com"

	// DefaultTimeout bounds every upstream call.
	DefaultTimeout = 30 * time.Second

	accessKeyHeader = "AccessKey"
)

// FailureKind classifies why an upstream call produced no result.
// It is only ever reported through logs and metrics.
type FailureKind string

const (
	FailureNetwork     FailureKind = "network"
	FailureTimeout     FailureKind = "timeout"
	FailureCanceled    FailureKind = "canceled"
	FailureStatus      FailureKind = "status"
	FailureDecode      FailureKind = "decode"
	FailureEncode      FailureKind = "encode"
	FailureRateLimited FailureKind = "rate_limited"
)

// UpstreamError carries the classified cause of a failed upstream call.
type UpstreamError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s failure (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s failure: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MetricsRecorder receives the outcome of every upstream call.
type MetricsRecorder interface {
	RecordUpstream(method string, kind string, latencyMs float64)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration

	// RequestsPerSecond limits outbound calls; zero disables limiting.
	RequestsPerSecond float64

	HTTPClient *http.Client
	Metrics    MetricsRecorder
	Logger     *slog.Logger
}

// Client is the request executor for the DeBank API.
//
// Every call carries the Accept and AccessKey headers and is bounded by the
// configured timeout. Any failure collapses to a nil result.
type Client struct {
	baseURL    string
	accessKey  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    MetricsRecorder
	logger     *slog.Logger
}

// NewClient creates a new DeBank client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:    baseURL,
		accessKey:  opts.AccessKey,
		timeout:    timeout,
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "debank_client"),
	}
}

// URL builds an absolute upstream URL for path with the given query parameters.
func (c *Client) URL(path string, params *Params) string {
	u := c.baseURL + path
	if q := params.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// Get issues a GET to path with params and returns the decoded body or nil.
func (c *Client) Get(ctx context.Context, path string, params *Params) any {
	return c.Execute(ctx, http.MethodGet, c.URL(path, params), nil)
}

// Post issues a POST to path with a JSON body and returns the decoded body or nil.
func (c *Client) Post(ctx context.Context, path string, body any) any {
	return c.Execute(ctx, http.MethodPost, c.URL(path, nil), body)
}

// Execute performs one upstream request against an absolute URL.
// It returns the decoded JSON value on a 2xx response and nil on any failure.
func (c *Client) Execute(ctx context.Context, method, rawURL string, body any) any {
	start := time.Now()

	result, err := c.do(ctx, method, rawURL, body)
	latencyMs := float64(time.Since(start).Milliseconds())

	if err != nil {
		kind := FailureNetwork
		status := 0
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			kind = upErr.Kind
			status = upErr.StatusCode
		}

		c.logger.WarnContext(ctx, "upstream_request_failed",
			"method", method,
			"url", rawURL,
			"kind", string(kind),
			"status", status,
			"latency_ms", int64(latencyMs),
			"error", err,
		)
		if c.metrics != nil {
			c.metrics.RecordUpstream(method, string(kind), latencyMs)
		}
		return nil
	}

	c.logger.DebugContext(ctx, "upstream_request_succeeded",
		"method", method,
		"url", rawURL,
		"latency_ms", int64(latencyMs),
	)
	if c.metrics != nil {
		c.metrics.RecordUpstream(method, "", latencyMs)
	}
	return result
}

// do performs the request and returns a classified error on failure.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Kind: FailureRateLimited, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &UpstreamError{Kind: FailureEncode, Err: fmt.Errorf("json marshal failed: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, &UpstreamError{Kind: FailureEncode, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(accessKeyHeader, c.accessKey)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded prefix so the error carries some context.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
		}
	}

	var result any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		kind := FailureDecode
		if ctx.Err() != nil {
			kind = classifyTransportError(ctx.Err())
		}
		return nil, &UpstreamError{Kind: kind, StatusCode: resp.StatusCode, Err: fmt.Errorf("json decode failed: %w", err)}
	}

	return result, nil
}

func classifyTransportError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureNetwork
}
