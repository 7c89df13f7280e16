// Copyright Ansvar Systems AB, 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

func init() {
	// Use a tiny base delay so retry tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

func testConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "qatarlaw-test/0.1",
		},
		MinInterval: 1 * time.Millisecond,
		MaxRetries:  3,
	}
}

func newTestClient(t *testing.T, cfg types.FetchConfig) *Client {
	t.Helper()
	c, err := NewClient(cfg, io.Discard)
	require.NoError(t, err)
	return c
}

// challengeBody builds a page matching the anti-automation fingerprint for
// the given request path.
func challengeBody(path string) string {
	return fmt.Sprintf(
		`<html><script>document.cookie="ts=1";eval(function(p){return String.fromCharCode(p)}(99));window.location="%s";</script></html>`,
		path,
	)
}

func TestFetchText_Success(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "qatarlaw-test/0.1", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html>law text</html>")
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig())
	body, err := c.FetchText(context.Background(), ts.URL+"/LawPage.aspx?id=1")
	require.NoError(t, err)
	assert.Equal(t, "<html>law text</html>", body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchText_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			fmt.Fprint(w, "ok")
		}
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig())
	body, err := c.FetchText(context.Background(), ts.URL+"/x")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchText_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	c := newTestClient(t, cfg)

	_, err := c.FetchText(context.Background(), ts.URL+"/x")
	require.Error(t, err)

	var terr *TransientError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusServiceUnavailable, terr.Status)
	// 1 initial + 2 retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchText_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, nil)
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig())
	_, err := c.FetchText(context.Background(), ts.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchText_ChallengeEscalatesToAlternate(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		// Primary sees the challenge twice (initial plus one repeat),
		// the alternate transport gets real content.
		if n <= 2 {
			fmt.Fprint(w, challengeBody(r.URL.RequestURI()))
			return
		}
		fmt.Fprint(w, "real content")
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig())
	body, err := c.FetchText(context.Background(), ts.URL+"/LawPage.aspx?id=7")
	require.NoError(t, err)
	assert.Equal(t, "real content", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchText_BothTransportsChallenged(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, challengeBody(r.URL.RequestURI()))
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig())
	_, err := c.FetchText(context.Background(), ts.URL+"/LawPage.aspx?id=7")
	require.Error(t, err)

	var terminal *TerminalChallengeError
	require.ErrorAs(t, err, &terminal)
	assert.Error(t, terminal.Primary)
	assert.Error(t, terminal.Alternate)
}

func TestFetchText_TLSTrustFailureFallsBack(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "served despite self-signed cert")
	}))
	defer ts.Close()

	// The client does not trust the httptest CA, so the primary transport
	// fails certificate validation and the alternate must take over.
	c := newTestClient(t, testConfig())
	body, err := c.FetchText(context.Background(), ts.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, "served despite self-signed cert", body)
}

func TestFetchBinary(t *testing.T) {
	payload := []byte{0xD0, 0xCF, 0x11, 0xE0, 0x00}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	c := newTestClient(t, testConfig())
	data, err := c.FetchBinary(context.Background(), ts.URL+"/file.doc")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetch_PacingGateSpacing(t *testing.T) {
	const interval = 50 * time.Millisecond

	var mu sync.Mutex
	var stamps []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.MinInterval = interval
	c := newTestClient(t, cfg)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.FetchText(context.Background(), fmt.Sprintf("%s/p%d", ts.URL, i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, stamps, 5)
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		// Allow a little scheduling jitter between the gate grant and the
		// handler's clock read.
		assert.GreaterOrEqual(t, gap, interval-10*time.Millisecond,
			"dispatch %d only %v after previous", i, gap)
	}
}

func TestFetch_CacheMakesRerunsIdempotent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, "cached content")
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.CacheDir = t.TempDir()
	c := newTestClient(t, cfg)

	first, err := c.FetchText(context.Background(), ts.URL+"/law")
	require.NoError(t, err)
	second, err := c.FetchText(context.Background(), ts.URL+"/law")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second fetch must not hit the network")
}

func TestFetch_ForceRefreshBypassesCacheRead(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, "content")
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.CacheDir = t.TempDir()
	cfg.ForceRefresh = true
	c := newTestClient(t, cfg)

	_, err := c.FetchText(context.Background(), ts.URL+"/law")
	require.NoError(t, err)
	_, err = c.FetchText(context.Background(), ts.URL+"/law")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig()
	cfg.RespectRobots = true
	c := newTestClient(t, cfg)

	_, err := c.FetchText(context.Background(), ts.URL+"/private/law")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRobotsDisallowed))

	body, err := c.FetchText(context.Background(), ts.URL+"/public/law")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}
