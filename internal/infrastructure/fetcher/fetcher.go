// Package fetcher retrieves raw page HTML with bounded retries.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"NewsHarvester/internal/ports"
	"NewsHarvester/internal/retry"
)

const maxBodyBytes = 4 * 1024 * 1024

// Fetcher performs GET requests with a rotating user-agent pool. Transient
// network-class failures are retried under the configured policy; HTTP
// application errors are terminal immediately.
type Fetcher struct {
	client     *http.Client
	userAgents []string
	policy     retry.Policy
	next       atomic.Uint64
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client bounded by timeout. A nil client gets a
// default with the given timeout applied.
func NewFetcher(client *http.Client, timeout time.Duration, userAgents []string, policy retry.Policy) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if len(userAgents) == 0 {
		userAgents = []string{"NewsHarvester/1.0"}
	}
	if policy.MaxAttempts == 0 {
		policy = retry.Exponential(3, 1*time.Second, 8*time.Second, 2)
	}
	return &Fetcher{
		client:     client,
		userAgents: userAgents,
		policy:     policy,
	}
}

// Fetch returns the page body, retrying connection-level failures with
// exponential backoff until the policy is exhausted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	var body string

	err := f.policy.Do(ctx, func() error {
		html, err := f.fetchOnce(ctx, rawURL)
		if err != nil {
			return err
		}
		body = html
		return nil
	})
	if err != nil {
		return "", err
	}

	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", f.rotateAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		// Connection-level failure: the transient class worth retrying.
		return "", fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", retry.Permanent(fmt.Errorf("%s returned %s", rawURL, resp.Status))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body %s: %w", rawURL, err)
	}

	return string(raw), nil
}

func (f *Fetcher) rotateAgent() string {
	n := f.next.Add(1)
	return f.userAgents[int(n-1)%len(f.userAgents)]
}
