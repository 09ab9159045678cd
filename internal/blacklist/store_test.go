package blacklist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

func TestStore_BlacklistAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if store.IsBlacklisted(ctx, "https://bad.example.com/story") {
		t.Fatal("Expected empty store to report not blacklisted")
	}

	entry, err := store.Blacklist(ctx, "https://Bad.Example.com/story?utm_source=x", 22, model.BlacklistSourceStructured, model.ReasonBelowThreshold)
	if err != nil {
		t.Fatalf("Blacklist failed: %v", err)
	}
	if entry.NormalizedURL != "https://bad.example.com/story" {
		t.Errorf("Unexpected normalized URL: %s", entry.NormalizedURL)
	}

	// Query/fragment variants share the entry
	for _, u := range []string{
		"https://bad.example.com/story",
		"https://bad.example.com/story?ref=feed",
		"https://bad.example.com/story#comments",
	} {
		if !store.IsBlacklisted(ctx, u) {
			t.Errorf("Expected %s to be blacklisted", u)
		}
	}

	got, err := store.Get(ctx, "https://bad.example.com/story")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected entry, got nil")
	}
	if got.CredibilityScore != 22 || got.Source != model.BlacklistSourceStructured || got.Reason != model.ReasonBelowThreshold {
		t.Errorf("Unexpected entry: %+v", got)
	}

	if store.IsBlacklisted(ctx, "https://bad.example.com/other") {
		t.Error("Expected a different path to remain unlisted")
	}
}

func TestStore_Overwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	orig := nowFunc
	defer func() { nowFunc = orig }()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return first }
	_, _ = store.Blacklist(ctx, "https://x.example/a", 30, model.BlacklistSourceStructured, "first")

	second := first.Add(time.Hour)
	nowFunc = func() time.Time { return second }
	_, _ = store.Blacklist(ctx, "https://x.example/a?again=1", 12, model.BlacklistSourceFactChecker, "second")

	got, _ := store.Get(ctx, "https://x.example/a")
	if got.CredibilityScore != 12 || got.Reason != "second" || !got.Timestamp.Equal(second) {
		t.Errorf("Expected overwrite to win, got %+v", got)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected a single entry after overwrite, got %d", len(entries))
	}
}

func TestStore_EmptyURL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if store.IsBlacklisted(ctx, "") {
		t.Error("Empty URL must never be blacklisted")
	}
	if _, err := store.Blacklist(ctx, "  ", 10, model.BlacklistSourceStructured, "x"); err == nil {
		t.Error("Expected error blacklisting an empty URL")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, _ = store.Blacklist(ctx, fmt.Sprintf("https://site%d.example/p", n%10), n, model.BlacklistSourceStructured, "load")
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.IsBlacklisted(ctx, fmt.Sprintf("https://site%d.example/p", n%10))
			_, _ = store.Get(ctx, fmt.Sprintf("https://site%d.example/p", n%10))
		}(i)
	}
	wg.Wait()

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("Expected 10 distinct entries, got %d", len(entries))
	}
}
