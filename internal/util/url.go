package util

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// NormalizeURL canonicalizes a URL to scheme://host[:port]/path.
// Query strings and fragments are dropped so variants of one resource share a key.
// Unparsable input is returned trimmed.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return trimmed
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		scheme = "http"
	}

	host := strings.ToLower(parsed.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := parsed.Port(); port != "" {
		host = host + ":" + port
	}

	return scheme + "://" + host + parsed.EscapedPath()
}

// ValidateSourceURL rejects URLs without an http(s) scheme or host
func ValidateSourceURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: parse url: %v", model.ErrInvalidInput, err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	case "":
		return fmt.Errorf("%w: url %q has no scheme", model.ErrInvalidInput, raw)
	default:
		return fmt.Errorf("%w: unsupported url scheme %q", model.ErrInvalidInput, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: url %q has no host", model.ErrInvalidInput, raw)
	}
	return nil
}

// HostOf returns the lower-cased host (without port) of a URL, or "" if it cannot be parsed
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
