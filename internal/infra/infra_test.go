package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// ── Cache ──

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v.(int) != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.SetWithTTL("b", "y", time.Hour)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be cached")
	}

	c.Cleanup()
	if c.Len() != 1 {
		t.Errorf("Len after cleanup: got %d, want 1", c.Len())
	}
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache(0)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("zero TTL cache should not store")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated key should be gone")
	}
}

// ── Client ──

func TestClientGetSetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent: got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("X-Custom") != "1" {
			t.Errorf("X-Custom: got %q", r.Header.Get("X-Custom"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("test-agent"), WithRateLimit(0, 0))
	data, err := c.GetBytes(context.Background(), srv.URL, map[string]string{"X-Custom": "1"})
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("body: got %q", data)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such ticker", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithRateLimit(0, 0))
	_, err := c.GetBytes(context.Background(), srv.URL, nil)
	var herr *ErrHTTP
	if !errors.As(err, &herr) {
		t.Fatalf("expected *ErrHTTP, got %v", err)
	}
	if herr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode: got %d", herr.StatusCode)
	}
	if !strings.Contains(herr.Body, "no such ticker") {
		t.Errorf("Body: got %q", herr.Body)
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	// One request per minute: the second call cannot get a token in time.
	c := NewClient(WithRateLimit(1.0/60, 1))
	if _, err := c.GetBytes(context.Background(), srv.URL, nil); err != nil {
		t.Fatalf("first request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.GetBytes(ctx, srv.URL, nil); err == nil {
		t.Error("second request should fail waiting for the limiter")
	}
}
