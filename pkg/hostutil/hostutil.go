package hostutil

import (
	"net"
	"strings"
)

// NormalizeHost lowercases a Host header value and strips an optional port
// suffix. Domain records store hostnames lowercase, so this is the only
// normalization needed before a cache or store lookup.
func NormalizeHost(hostHeader string) string {
	host := strings.TrimSpace(strings.ToLower(hostHeader))

	// Host headers may arrive as "example.com:8080"; SplitHostPort also
	// handles bracketed IPv6 literals.
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}

	return strings.TrimSuffix(host, ".")
}

// JoinPath builds the short path from request path segments, skipping empty
// segments so "/promo", "/promo/" and "//promo" all resolve the same key.
func JoinPath(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// SplitPath breaks a raw URL path into its segments.
func SplitPath(rawPath string) []string {
	trimmed := strings.Trim(rawPath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
