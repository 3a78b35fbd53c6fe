package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy gates requests to remote registries on the host's robots.txt.
// Parsed files are kept per host for the life of the policy.
type RobotsPolicy struct {
	httpClient *http.Client
	userAgent  string
	agent      string // product token matched against User-agent groups

	mu    sync.RWMutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsPolicy creates a policy fetching robots.txt with client
func NewRobotsPolicy(client *http.Client, userAgent string) *RobotsPolicy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsPolicy{
		httpClient: client,
		userAgent:  userAgent,
		agent:      ProductToken(userAgent),
		hosts:      make(map[string]*robotstxt.RobotsData),
	}
}

// Check reports whether rawURL may be requested and the crawl delay the host
// asks for. robots.txt that cannot be fetched (network error, 5xx) allows the
// request and is retried on the next call; a missing one (4xx) allows everything.
func (p *RobotsPolicy) Check(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse url: %w", err)
	}
	if parsed.Host == "" {
		return false, 0, fmt.Errorf("parse url: %q has no host", rawURL)
	}

	data, err := p.robotsFor(ctx, parsed)
	if err != nil || data == nil {
		return true, 0, nil
	}

	group := data.FindGroup(p.agent)
	if group == nil {
		return true, 0, nil
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), group.CrawlDelay, nil
}

// robotsFor returns the cached robots.txt for u's host, fetching it once
func (p *RobotsPolicy) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	p.mu.RLock()
	data, ok := p.hosts[u.Host]
	p.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("fetch robots.txt: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	p.mu.Lock()
	p.hosts[u.Host] = data
	p.mu.Unlock()
	return data, nil
}

// Forget drops every cached robots.txt
func (p *RobotsPolicy) Forget() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts = make(map[string]*robotstxt.RobotsData)
}

// ProductToken reduces a User-Agent to the product name used for robots.txt
// group matching ("customsdoc/0.1 (+url)" -> "customsdoc")
func ProductToken(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.Split(parts[0], "/")[0]
}
