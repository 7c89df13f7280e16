// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package fetch retrieves text and binary documents from the legal portal.
// It layers global request pacing, bounded retry with exponential backoff,
// anti-automation challenge detection, an alternate certificate-lenient
// transport, and a read-through byte cache over plain HTTP.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// RetryBaseDelay is the base unit for exponential backoff. The delay before
// retry n is 2^(n+1) times this value. Tests override it to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const (
	defaultMaxRetries  = 4
	defaultMinInterval = 1 * time.Second
	defaultTimeout     = 60 * time.Second
	defaultUserAgent   = "qatarlaw/0.1"
)

// Client is the resilient fetcher. It is safe for concurrent use; the
// pacing gate is its only shared mutable state.
type Client struct {
	cfg       types.FetchConfig
	primary   *http.Client
	alternate *http.Client

	// gate enforces the minimum interval between dispatch starts across
	// all goroutines. Only the dispatch start is throttled; in-flight
	// requests may overlap.
	gate *rate.Limiter

	cache  *diskCache
	robots *robotsCache
	out    io.Writer
}

// NewClient builds a fetcher from cfg, writing progress notes to out.
func NewClient(cfg types.FetchConfig, out io.Writer) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	primary := &http.Client{Timeout: cfg.Timeout}
	alternate := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	c := &Client{
		cfg:       cfg,
		primary:   primary,
		alternate: alternate,
		gate:      rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		out:       out,
	}

	if cfg.CacheDir != "" {
		cache, err := newDiskCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	if cfg.RespectRobots {
		c.robots = newRobotsCache(primary, cfg.UserAgent)
	}

	return c, nil
}

// FetchText retrieves a text resource (HTML or plain text). Challenge
// detection applies: a challenge page is never returned as success.
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	data, err := c.fetch(ctx, rawURL, true)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchBinary retrieves an opaque resource (DOCX, legacy DOC).
func (c *Client) FetchBinary(ctx context.Context, rawURL string) ([]byte, error) {
	return c.fetch(ctx, rawURL, false)
}

func (c *Client) fetch(ctx context.Context, rawURL string, text bool) ([]byte, error) {
	if c.cache != nil && !c.cfg.ForceRefresh {
		if data, ok := c.cache.Get(rawURL); ok {
			return data, nil
		}
	}

	if c.robots != nil {
		allowed, err := c.robots.Allowed(rawURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
	}

	data, err := c.do(ctx, c.primary, "primary", rawURL, text)
	if err != nil {
		if !escalates(err) {
			return nil, err
		}
		fmt.Fprintf(c.out, "retrying via alternate transport: %s\n", rawURL)
		altData, altErr := c.do(ctx, c.alternate, "alternate", rawURL, text)
		if altErr != nil {
			return nil, &TerminalChallengeError{Primary: err, Alternate: altErr}
		}
		data = altData
	}

	if c.cache != nil {
		if err := c.cache.Put(rawURL, data); err != nil {
			fmt.Fprintf(c.out, "warning: cache write failed for %s: %v\n", rawURL, err)
		}
	}
	return data, nil
}

// escalates reports whether a primary-transport failure should be retried
// on the alternate transport: TLS trust failures and repeated challenges.
func escalates(err error) bool {
	if isTLSTrustError(err) {
		return true
	}
	var challenge *ChallengeError
	return errors.As(err, &challenge)
}

// do runs the retry loop on one transport. Every dispatch, including
// retries, passes through the pacing gate first.
func (c *Client) do(ctx context.Context, client *http.Client, transport, rawURL string, text bool) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %s: %w", rawURL, err)
	}
	requestPath := u.RequestURI()

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	challenges := 0
	for attempt := 0; ; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if isTLSTrustError(err) {
				return nil, err
			}
			if !isTransientTransport(err) || attempt >= c.cfg.MaxRetries {
				return nil, &TransientError{Err: err}
			}
			if err := c.backoff(ctx, attempt, rawURL); err != nil {
				return nil, err
			}
			continue
		}

		if isTransientStatus(resp.StatusCode) {
			status := resp.StatusCode
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if attempt >= c.cfg.MaxRetries {
				return nil, &TransientError{Status: status}
			}
			if err := c.backoff(ctx, attempt, rawURL); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &TransientError{Err: err}
		}

		if text && IsChallenge(string(data), requestPath) {
			// One repeat on the same transport before giving up on it:
			// some challenge layers clear after the cookie round-trip.
			challenges++
			if challenges == 1 && attempt < c.cfg.MaxRetries {
				if err := c.backoff(ctx, attempt, rawURL); err != nil {
					return nil, err
				}
				continue
			}
			return nil, &ChallengeError{Transport: transport, URL: rawURL}
		}

		return data, nil
	}
}

func (c *Client) backoff(ctx context.Context, attempt int, rawURL string) error {
	delay := time.Duration(1<<(attempt+1)) * RetryBaseDelay
	fmt.Fprintf(c.out, "retrying %s in %v (attempt %d/%d)\n", rawURL, delay, attempt+1, c.cfg.MaxRetries)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
