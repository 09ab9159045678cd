package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.HTML != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	origWait := fetchWaitFunc
	fetchWaitFunc = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	defer func() { fetchWaitFunc = origWait }()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result.HTML != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_NotFoundIsFinal(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	origWait := fetchWaitFunc
	fetchWaitFunc = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	defer func() { fetchWaitFunc = origWait }()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	if _, err := fetcher.FetchWithRetry(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error for 404")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected a single attempt for 404, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_CancelDuringBackoff(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	start := time.Now()
	_, err := fetcher.FetchWithRetry(ctx, server.URL)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Expected backoff to stop on cancel, took %v", elapsed)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt before cancel, got %d", attempts.Load())
	}
}

func TestFetch_ZeroMaxBytesUsesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 0, false, "", "", "")
	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if result.HTML != "<html><body>OK</body></html>" {
		t.Errorf("Expected full body with zero limit, got %q", result.HTML)
	}
	if fetcher.maxBytes != defaultMaxBytes {
		t.Errorf("Expected maxBytes %d, got %d", defaultMaxBytes, fetcher.maxBytes)
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		_, _ = fmt.Fprint(w, "<html>secret</html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "credence/1.0", 1<<20, true, "", "", "")

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/private/page"); !errors.Is(err, ErrDisallowed) {
		t.Errorf("Expected ErrDisallowed, got %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), server.URL+"/public"); err != nil {
		t.Errorf("Expected public page to be fetched, got %v", err)
	}
}

func TestExtractor_ExtractText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			_, _ = fmt.Fprint(w, "<html><body><script>x()</script></body></html>")
		default:
			_, _ = fmt.Fprint(w, "<html><head><title>Title</title></head><body><article>Story body.</article></body></html>")
		}
	}))
	defer server.Close()

	extractor := NewExtractor(NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", ""))

	text, err := extractor.ExtractText(context.Background(), server.URL+"/story")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "Title. Story body." {
		t.Errorf("Unexpected text: %q", text)
	}

	if _, err := extractor.ExtractText(context.Background(), server.URL+"/empty"); err == nil {
		t.Error("Expected error for page without readable text")
	}
}
