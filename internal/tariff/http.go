package tariff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/customsdoc/internal/util"
	"github.com/ppiankov/customsdoc/internal/worker"
)

const maxRedirects = 3

// HTTPRegistry asks a remote service about each code with
// GET <base>/<digits>: 2xx means known, 404 or 410 means unknown and
// anything else is a failure. Failed lookups are not retried.
type HTTPRegistry struct {
	base       string
	httpClient *http.Client
	limiter    *worker.Limiter
	userAgent  string
	robots     *util.RobotsPolicy
	useRobots  bool
	slowed     sync.Map // hosts whose rate already follows Crawl-delay
}

// HTTPOption configures an HTTPRegistry
type HTTPOption func(*HTTPRegistry)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPRegistry) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithLimiter rate-limits requests per host
func WithLimiter(l *worker.Limiter) HTTPOption {
	return func(r *HTTPRegistry) {
		r.limiter = l
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) HTTPOption {
	return func(r *HTTPRegistry) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithRobotsTxt makes the registry honor the host's robots.txt: disallowed
// endpoints fail with ErrUnavailable and a Crawl-delay lowers the host's rate
// limit (requires WithLimiter to take effect).
func WithRobotsTxt(enabled bool) HTTPOption {
	return func(r *HTTPRegistry) {
		r.useRobots = enabled
	}
}

// NewHTTPRegistry creates a registry rooted at baseURL. proxyURL may be empty.
func NewHTTPRegistry(baseURL, proxyURL string, timeout time.Duration, opts ...HTTPOption) (*HTTPRegistry, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid tariff registry url %q", baseURL)
	}

	proxy, err := util.NewProxyFunc(proxyURL)
	if err != nil {
		return nil, err
	}

	r := &HTTPRegistry{
		base: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: proxy},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: "customsdoc/0.1",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.useRobots {
		r.robots = util.NewRobotsPolicy(r.httpClient, r.userAgent)
	}
	return r, nil
}

// Contains reports whether the registry knows code
func (r *HTTPRegistry) Contains(ctx context.Context, code string) (bool, error) {
	digits := Normalize(code)
	if len(digits) < 6 {
		return false, nil
	}

	endpoint := r.base + "/" + digits
	if err := r.checkRobots(ctx, endpoint); err != nil {
		return false, err
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, endpoint); err != nil {
			return false, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return false, err
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s returned %d", ErrUnavailable, endpoint, resp.StatusCode)
	}
}

func (r *HTTPRegistry) checkRobots(ctx context.Context, endpoint string) error {
	if r.robots == nil {
		return nil
	}
	allowed, delay, err := r.robots.Check(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s disallowed by robots.txt", ErrUnavailable, endpoint)
	}
	if delay > 0 && r.limiter != nil {
		u, err := url.Parse(endpoint)
		if err == nil {
			if _, done := r.slowed.LoadOrStore(u.Host, true); !done {
				r.limiter.SetHostRate(u.Host, 1/delay.Seconds(), 1)
			}
		}
	}
	return nil
}
