package config

import (
	"fmt"
	"math"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validBackends = map[string]bool{
	"sqlite": true, "redis": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.TMDB.APIToken == "" {
		errs = append(errs, "tmdb.api_token: required")
	}
	if c.TMDB.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.requests_per_second: must be >= 0, got %d", c.TMDB.RequestsPerSecond))
	}

	if !validBackends[c.Cache.Backend] {
		errs = append(errs, fmt.Sprintf("cache.backend: must be one of sqlite, redis; got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		errs = append(errs, "cache.redis_url: required when backend is redis")
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if !c.Scoring.Empty() {
		sum := c.Scoring.Source + c.Scoring.Genre + c.Scoring.Keyword +
			c.Scoring.Pattern + c.Scoring.Rating + c.Scoring.Popularity + c.Scoring.Year
		if math.Abs(sum-1.0) > 1e-9 {
			errs = append(errs, fmt.Sprintf("scoring: weights must sum to 1.0, got %g", sum))
		}
	}

	return errs
}
