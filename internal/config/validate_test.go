package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		TMDB:  TMDBConfig{APIToken: "token"},
		Cache: CacheConfig{Backend: "sqlite", Path: "./data/recgo.db"},
		Log:   LogConfig{Level: "info"},
	}
}

func TestValidate_Valid(t *testing.T) {
	if errs := validConfig().Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.APIToken = ""
	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "tmdb.api_token") {
		t.Errorf("expected tmdb.api_token error, got %v", errs)
	}
}

func TestValidate_RedisRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "cache.redis_url") {
		t.Errorf("expected cache.redis_url error, got %v", errs)
	}

	cfg.Cache.RedisURL = "redis://localhost:6379/0"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "log.level") {
		t.Errorf("expected log.level error, got %v", errs)
	}
}

func TestValidate_ScoringWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Scoring = ScoringConfig{Source: 0.5, Genre: 0.3}
	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "scoring") {
		t.Errorf("expected scoring error, got %v", errs)
	}

	cfg.Scoring = ScoringConfig{
		Source: 0.60, Genre: 0.20, Keyword: 0.10,
		Pattern: 0.05, Rating: 0.03, Popularity: 0.01, Year: 0.01,
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
