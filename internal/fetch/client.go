// Package fetch performs HTTP GETs against the public FPL API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fpl-query-mcp/internal/metrics"
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindTimeout ErrorKind = "timeout"
	KindStatus  ErrorKind = "status"
	KindDecode  ErrorKind = "decode"
)

// Error is the fetch error taxonomy: every upstream failure carries the
// endpoint and a kind, plus the HTTP status for KindStatus.
type Error struct {
	Endpoint string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: upstream returned %d", e.Endpoint, e.Status)
	case KindTimeout:
		return fmt.Sprintf("fetch %s: timed out", e.Endpoint)
	case KindDecode:
		return fmt.Sprintf("fetch %s: malformed JSON response", e.Endpoint)
	default:
		return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}

type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewClient(cfg Config, log *zap.Logger, m *metrics.Metrics) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		log:       log,
		metrics:   m,
	}
}

// Get downloads ep.Path and returns the response body. The body is
// validated as JSON here so malformed upstream responses surface as a
// fetch error rather than a parse failure deeper in the stack.
func (c *Client) Get(ctx context.Context, ep Endpoint) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Endpoint: ep.Path, Kind: KindNetwork, Err: err}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ep.Path, nil)
	if err != nil {
		return nil, &Error{Endpoint: ep.Path, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = KindTimeout
		}
		c.metrics.ObserveFetch(ep.Name, string(kind), time.Since(start))
		return nil, &Error{Endpoint: ep.Path, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveFetch(ep.Name, string(KindNetwork), time.Since(start))
		return nil, &Error{Endpoint: ep.Path, Kind: KindNetwork, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveFetch(ep.Name, string(KindStatus), time.Since(start))
		return nil, &Error{Endpoint: ep.Path, Kind: KindStatus, Status: resp.StatusCode}
	}
	if !sonic.Valid(body) {
		c.metrics.ObserveFetch(ep.Name, string(KindDecode), time.Since(start))
		return nil, &Error{Endpoint: ep.Path, Kind: KindDecode}
	}

	c.metrics.ObserveFetch(ep.Name, "ok", time.Since(start))
	c.log.Debug("fetched upstream payload",
		zap.String("endpoint", ep.Path),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
