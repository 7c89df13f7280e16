// Copyright Ansvar Systems AB, 2026. All rights reserved.

package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache lazily fetches and caches robots.txt once per host.
// A host whose robots.txt cannot be retrieved is treated as allow-all,
// matching the convention that a missing file places no restrictions.
type robotsCache struct {
	client *http.Client
	agent  string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

func newRobotsCache(client *http.Client, agent string) *robotsCache {
	return &robotsCache{
		client: client,
		agent:  agent,
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched under the host's robots policy.
func (r *robotsCache) Allowed(rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parsing URL for robots check: %w", err)
	}

	data, err := r.forHost(u.Scheme, u.Host)
	if err != nil {
		return false, err
	}
	if data == nil {
		return true, nil
	}
	return data.TestAgent(u.Path, r.agent), nil
}

func (r *robotsCache) forHost(scheme, host string) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.hosts[host]; ok {
		return data, nil
	}

	resp, err := r.client.Get(scheme + "://" + host + "/robots.txt")
	if err != nil {
		r.hosts[host] = nil
		return nil, nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		r.hosts[host] = nil
		return nil, nil
	}

	r.hosts[host] = data
	return data, nil
}
