// Package compliance implements the robots.txt go/no-go check performed
// before any fetch.
package compliance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"NewsHarvester/internal/ports"
)

const (
	robotsTimeout = 5 * time.Second
	cacheTTL      = time.Hour
)

type cachedPolicy struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// Gate checks target URLs against their domain's robots policy. The gate
// fails open: any failure to retrieve or parse the policy permits the fetch
// and surfaces the failure for the caller to log. Policies are cached per
// domain with a TTL so a sweep does not refetch robots files per item.
type Gate struct {
	userAgent string
	client    *http.Client

	mu    sync.Mutex
	cache map[string]cachedPolicy
	now   func() time.Time
}

var _ ports.ComplianceGate = (*Gate)(nil)

// NewGate builds a gate identifying itself with the given user agent.
func NewGate(userAgent string, client *http.Client) *Gate {
	if client == nil {
		client = &http.Client{Timeout: robotsTimeout}
	}
	return &Gate{
		userAgent: userAgent,
		client:    client,
		cache:     map[string]cachedPolicy{},
		now:       time.Now,
	}
}

// Allowed reports whether the URL may be fetched under its domain's robots
// policy.
func (g *Gate) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return true, fmt.Errorf("unparseable target url %q: %v", rawURL, err)
	}

	data, err := g.policyFor(ctx, parsed)
	if err != nil {
		return true, err
	}

	return data.TestAgent(parsed.Path, g.userAgent), nil
}

func (g *Gate) policyFor(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	key := target.Scheme + "://" + target.Host

	g.mu.Lock()
	cached, ok := g.cache[key]
	g.mu.Unlock()
	if ok && g.now().Sub(cached.fetchedAt) < cacheTTL {
		return cached.data, nil
	}

	data, err := g.fetchPolicy(ctx, key+"/robots.txt")
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.cache[key] = cachedPolicy{data: data, fetchedAt: g.now()}
	g.mu.Unlock()

	return data, nil
}

func (g *Gate) fetchPolicy(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", robotsURL, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", robotsURL, err)
	}

	return data, nil
}
