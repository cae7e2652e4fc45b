package overpass

import (
	"context"
	"crossroads-gps/internal/platform/obs"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultURL       = "http://localhost/api/interpreter"
	DefaultTries     = 3
	DefaultUserAgent = "xrds2gps/1.0"

	// Replies larger than this are cut off; a valid intersection reply is a few hundred bytes.
	maxBodyBytes = 16 << 20
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	URL        string
	Method     string // GET | POST
	Tries      int
	Timeout    time.Duration
	Backoff    time.Duration
	RatePerSec float64 // <= 0 disables pacing
	UserAgent  string
}

// Client sends Overpass QL queries to an interpreter endpoint.
//
// It coordinates:
//   - GET (?data=) or POST form encoding
//   - Pacing between queries so public instances are not hammered
//   - Retry with exponential backoff on transient failures
//
// The client is safe for concurrent use.
type Client struct {
	session   *http.Client
	baseURL   string
	method    string
	tries     int
	backoff   time.Duration
	userAgent string
	limiter   *rate.Limiter
}

func NewClient(opts Options) (*Client, error) {
	base := opts.URL
	if base == "" {
		base = DefaultURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("overpass url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("overpass url %q: scheme must be http or https", base)
	}

	method := strings.ToUpper(opts.Method)
	switch method {
	case "":
		method = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return nil, fmt.Errorf("overpass method %q: must be GET or POST", opts.Method)
	}

	tries := opts.Tries
	if tries < 1 {
		tries = DefaultTries
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	c := &Client{
		session:   &http.Client{Timeout: timeout},
		baseURL:   base,
		method:    method,
		tries:     tries,
		backoff:   backoff,
		userAgent: ua,
		limiter:   rate.NewLimiter(limit, 1),
	}

	return c, nil
}

func (c *Client) URL() string { return c.baseURL }

// Fetch sends query and returns the response body.
func (c *Client) Fetch(ctx context.Context, query string) (_ string, err error) {
	defer obs.Time(ctx, "overpass.Fetch")(&err)

	if strings.TrimSpace(query) == "" {
		return "", errors.New("overpass fetch: empty query")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("overpass fetch: wait for rate limiter: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newQueryRequest(ctx, query)
	})
	if err != nil {
		return "", fmt.Errorf("overpass fetch: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("overpass fetch: read body: %w", err)
	}

	return string(b), nil
}
