package openpaths

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dvcrn/weasel/internal/auth"
	"github.com/rs/zerolog"
)

const (
	// BaseURL is the OpenPaths API endpoint. Headers are signed against it.
	BaseURL = "https://openpaths.cc/api/1"

	// DefaultMaxAttempts bounds how many times a request is sent before the
	// failure is reported.
	DefaultMaxAttempts = 3

	userAgent    = "weasel/1.0"
	maxErrorBody = 512
)

// Client performs signed GET requests against the OpenPaths API.
type Client struct {
	headers     *auth.HeaderSource
	baseURL     string
	httpClient  HTTPClient
	maxAttempts int
	logger      zerolog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithMaxAttempts sets the attempt budget. Values below one are treated as one.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client that signs requests with headers.
func NewClient(headers *auth.HeaderSource, opts ...Option) *Client {
	c := &Client{
		headers:     headers,
		baseURL:     BaseURL,
		maxAttempts: DefaultMaxAttempts,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(DefaultTimeout)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// Get sends a signed GET with params as the query and returns the decoded
// JSON body. A non-success response discards the header in use so the next
// attempt is signed fresh.
func (c *Client) Get(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		data, err := c.do(ctx, params)
		if err == nil {
			body = data
			return nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			c.logger.Warn().
				Int("attempt", attempt).
				Int("max_attempts", c.maxAttempts).
				Int("status", statusErr.StatusCode).
				Msg("Upstream rejected request, re-signing auth header")
			c.headers.Invalidate()
		}
		return err
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if c.maxAttempts > 1 {
		b = backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(c.maxAttempts-1))
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		c.logger.Error().Err(err).Int("attempts", attempt).Msg("Upstream request failed")
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrDecode)
	}
	return json.RawMessage(body), nil
}

// LastPoint fetches the single most recent point.
func (c *Client) LastPoint(ctx context.Context) (Point, error) {
	raw, err := c.Get(ctx, map[string]string{"num_points": "1"})
	if err != nil {
		return Point{}, err
	}
	points, err := ParsePoints(raw)
	if err != nil {
		return Point{}, err
	}
	if len(points) == 0 {
		return Point{}, fmt.Errorf("%w: no points returned", ErrDecode)
	}
	return points[0], nil
}

func (c *Client) do(ctx context.Context, params map[string]string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: invalid base url: %v", ErrNetwork, err))
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	header, err := c.headers.Current()
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrAuth, err))
	}
	header.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrNetwork, ctx.Err()))
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("header_uses", header.UseCount).
		Msg("Upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(data)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return data, nil
}
