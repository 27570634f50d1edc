package cache

import (
	"fmt"
	"strings"
	"time"
)

// Per-class TTLs. Raw metadata is far more stable than a scored, ranked
// view, so it lives much longer.
const (
	MetadataTTL        = 7 * 24 * time.Hour
	RecommendationsTTL = time.Hour
	SearchTTL          = time.Hour
)

// Key construction is centralized here so identical logical requests always
// produce the same key, and so outside callers can invalidate entries by
// the documented scheme: "media:{type}:{id}", "recommendations:{type}:{id}",
// "search:{query}".

// MediaKey is the cache key for normalized metadata of one title.
func MediaKey(mediaType string, id int64) string {
	return fmt.Sprintf("media:%s:%d", mediaType, id)
}

// RecommendationsKey is the cache key for an aggregated, ranked result list
// for a single seed.
func RecommendationsKey(mediaType string, id int64) string {
	return fmt.Sprintf("recommendations:%s:%d", mediaType, id)
}

// SearchKey is the cache key for a title search.
func SearchKey(query string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query))
}
