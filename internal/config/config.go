// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	TMDB    TMDBConfig    `toml:"tmdb"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
	Scoring ScoringConfig `toml:"scoring"`
}

type TMDBConfig struct {
	// APIToken is the TMDB v4 read access token (bearer auth).
	APIToken string `toml:"api_token"`
	// BaseURL overrides the API endpoint, mainly for testing.
	BaseURL string `toml:"base_url"`
	// RequestsPerSecond caps outbound request rate; 0 uses the default.
	RequestsPerSecond int `toml:"requests_per_second"`
}

type CacheConfig struct {
	// Backend selects the store: "sqlite" (default) or "redis".
	Backend string `toml:"backend"`
	// Path is the SQLite database file.
	Path string `toml:"path"`
	// RedisURL is a redis:// connection URL, required for the redis backend.
	RedisURL string `toml:"redis_url"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// ScoringConfig optionally overrides the scoring weights. All seven must
// be set together and sum to 1.0; a zero value means "use defaults".
type ScoringConfig struct {
	Source     float64 `toml:"source"`
	Genre      float64 `toml:"genre"`
	Keyword    float64 `toml:"keyword"`
	Pattern    float64 `toml:"pattern"`
	Rating     float64 `toml:"rating"`
	Popularity float64 `toml:"popularity"`
	Year       float64 `toml:"year"`
}

// Empty reports whether no scoring override was configured.
func (s ScoringConfig) Empty() bool {
	return s == ScoringConfig{}
}

// Load reads, substitutes, parses and validates the configuration file.
// Returns a *ConfigError when env substitution or validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "sqlite"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "./data/recgo.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}

	return &cfg, nil
}

// envVarPattern matches ${VAR_NAME} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
// and reports the names that were not set.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		missing = append(missing, varName)
		return match
	})
	return out, missing
}
