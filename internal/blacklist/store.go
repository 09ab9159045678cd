// Package blacklist keeps the process-wide set of URLs proven unreliable.
// Entries are written once per normalized URL and never expire.
package blacklist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/util"
)

const keyPrefix = "credence:blacklist:"

// nowFunc is the clock used for entry timestamps (injectable for tests)
var nowFunc = time.Now

// Store maps normalized URLs to blacklist entries
type Store struct {
	backend cache.Cache
}

// NewStore creates a store over the given backend
func NewStore(backend cache.Cache) *Store {
	return &Store{backend: backend}
}

// NewMemoryStore creates a store backed by an in-process map
func NewMemoryStore() *Store {
	return NewStore(cache.NewMemoryCache(cache.NoExpiration, 0))
}

// Key returns the backend key for a URL
func Key(rawURL string) string {
	return keyPrefix + util.NormalizeURL(rawURL)
}

// IsBlacklisted reports whether the URL has a blacklist entry.
// Backend errors are reported as not blacklisted.
func (s *Store) IsBlacklisted(ctx context.Context, rawURL string) bool {
	entry, err := s.Get(ctx, rawURL)
	return err == nil && entry != nil
}

// Get returns the entry for the URL, or nil if it is not blacklisted
func (s *Store) Get(ctx context.Context, rawURL string) (*model.BlacklistEntry, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, nil
	}

	data, found, err := s.backend.Get(ctx, Key(rawURL))
	if err != nil {
		return nil, fmt.Errorf("blacklist lookup: %w", err)
	}
	if !found {
		return nil, nil
	}

	var entry model.BlacklistEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode blacklist entry: %w", err)
	}
	return &entry, nil
}

// Blacklist records the URL; a repeated call for the same key overwrites the entry
func (s *Store) Blacklist(ctx context.Context, rawURL string, score int, source model.BlacklistSource, reason string) (*model.BlacklistEntry, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty url", model.ErrInvalidInput)
	}

	entry := model.BlacklistEntry{
		NormalizedURL:    util.NormalizeURL(rawURL),
		CredibilityScore: score,
		Source:           source,
		Reason:           reason,
		Timestamp:        nowFunc().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode blacklist entry: %w", err)
	}
	if err := s.backend.Set(ctx, Key(rawURL), data, cache.NoExpiration); err != nil {
		return nil, fmt.Errorf("blacklist write: %w", err)
	}
	return &entry, nil
}

// List returns all entries ordered by normalized URL
func (s *Store) List(ctx context.Context) ([]model.BlacklistEntry, error) {
	keys, err := s.backend.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("blacklist list: %w", err)
	}

	entries := make([]model.BlacklistEntry, 0, len(keys))
	for _, key := range keys {
		data, found, err := s.backend.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("blacklist list: %w", err)
		}
		if !found {
			continue
		}
		var entry model.BlacklistEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("decode blacklist entry %s: %w", key, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
