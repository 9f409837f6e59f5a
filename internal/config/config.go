// Package config provides configuration loading and validation for the
// talentflow server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store drivers accepted in store_driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Duration is a time.Duration that reads from JSON as "250ms"-style strings
// or as a number of milliseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %s", data)
	}
	*d = Duration(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the talentflow configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults, and environment
// variables override the file (see ApplyEnv).
type Config struct {
	// Server
	Port   int    `json:"port,omitempty"`    // HTTP listen port
	APIURL string `json:"api_url,omitempty"` // Base URL CLI commands talk to

	// Storage
	StoreDriver string `json:"store_driver,omitempty"` // memory, sqlite or postgres
	StoreDSN    string `json:"store_dsn,omitempty"`    // SQLite file path or PostgreSQL URL

	// Cache
	RedisAddr     string   `json:"redis_addr,omitempty"`     // host:port, empty disables the cache
	RedisPassword string   `json:"redis_password,omitempty"` // Redis AUTH password
	RedisDB       int      `json:"redis_db,omitempty"`       // Redis logical database
	CacheTTL      Duration `json:"cache_ttl,omitempty"`      // Lifetime of cached list pages

	// Network simulation
	MinDelay         Duration `json:"min_delay,omitempty"`          // Lower bound of per-request latency
	MaxDelay         Duration `json:"max_delay,omitempty"`          // Upper bound of per-request latency
	ErrorRate        *float64 `json:"error_rate,omitempty"`         // Probability a write fails
	ReorderErrorRate *float64 `json:"reorder_error_rate,omitempty"` // Probability a reorder fails

	// Rate limiting
	RateLimit      *bool  `json:"rate_limit,omitempty"`       // Enable per-client rate limiting
	RateLimitAllow string `json:"rate_limit_allow,omitempty"` // Comma-separated clients never limited

	// Seeding
	SeedCandidates int  `json:"seed_candidates,omitempty"` // Candidates created by seed
	SeedOnStart    bool `json:"seed_on_start,omitempty"`   // Seed an empty store when serving

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	errorRate, reorderRate := 0.08, 0.10
	enabled := true
	return Config{
		Port:             8080,
		APIURL:           "http://localhost:8080",
		StoreDriver:      DriverSQLite,
		StoreDSN:         "talentflow.db",
		CacheTTL:         Duration(time.Minute),
		MinDelay:         Duration(200 * time.Millisecond),
		MaxDelay:         Duration(1200 * time.Millisecond),
		ErrorRate:        &errorRate,
		ReorderErrorRate: &reorderRate,
		RateLimit:        &enabled,
		SeedCandidates:   1000,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "", DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config error: unknown store_driver %q", c.StoreDriver)
	}
	if c.StoreDriver == DriverPostgres && c.StoreDSN == "" {
		return fmt.Errorf("config error: 'store_dsn' is required for the postgres driver")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}
	if c.SeedCandidates < 0 {
		return fmt.Errorf("config error: 'seed_candidates' must be non-negative")
	}

	if c.MinDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("config error: delays must be non-negative")
	}
	if c.MaxDelay != 0 && c.MaxDelay < c.MinDelay {
		return fmt.Errorf("config error: 'max_delay' must not be less than 'min_delay'")
	}
	for name, rate := range map[string]*float64{"error_rate": c.ErrorRate, "reorder_error_rate": c.ReorderErrorRate} {
		if rate != nil && (*rate < 0 || *rate > 1) {
			return fmt.Errorf("config error: '%s' must be between 0 and 1", name)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.StoreDriver == "" {
		result.StoreDriver = defaults.StoreDriver
	}
	// The default DSN only makes sense for the default driver
	if result.StoreDSN == "" && result.StoreDriver == defaults.StoreDriver {
		result.StoreDSN = defaults.StoreDSN
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
		result.RedisPassword = defaults.RedisPassword
	}
	if result.RateLimitAllow == "" {
		result.RateLimitAllow = defaults.RateLimitAllow
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.MinDelay == 0 && result.MaxDelay == 0 {
		result.MinDelay = defaults.MinDelay
		result.MaxDelay = defaults.MaxDelay
	}
	if result.SeedCandidates == 0 {
		result.SeedCandidates = defaults.SeedCandidates
	}

	// Pointer fields: nil means unset, so an explicit 0 or false survives
	if result.ErrorRate == nil {
		result.ErrorRate = defaults.ErrorRate
	}
	if result.ReorderErrorRate == nil {
		result.ReorderErrorRate = defaults.ReorderErrorRate
	}
	if result.RateLimit == nil {
		result.RateLimit = defaults.RateLimit
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides fields from TALENTFLOW_* environment variables. Malformed
// values are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	var err error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *Duration) {
		if v := os.Getenv(key); v != "" && err == nil {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = Duration(d)
		}
	}
	rate := func(key string, dst **float64) {
		if v := os.Getenv(key); v != "" && err == nil {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = &f
		}
	}
	flag := func(key string, dst **bool) {
		if v := os.Getenv(key); v != "" && err == nil {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = &b
		}
	}

	num("PORT", &c.Port)
	str("TALENTFLOW_API_URL", &c.APIURL)
	str("TALENTFLOW_STORE", &c.StoreDriver)
	str("TALENTFLOW_STORE_DSN", &c.StoreDSN)
	if c.StoreDSN == "" && c.StoreDriver == DriverPostgres {
		str("DATABASE_URL", &c.StoreDSN)
	}
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	num("REDIS_DB", &c.RedisDB)
	dur("TALENTFLOW_CACHE_TTL", &c.CacheTTL)
	dur("TALENTFLOW_MIN_DELAY", &c.MinDelay)
	dur("TALENTFLOW_MAX_DELAY", &c.MaxDelay)
	rate("TALENTFLOW_ERROR_RATE", &c.ErrorRate)
	rate("TALENTFLOW_REORDER_ERROR_RATE", &c.ReorderErrorRate)
	flag("RATE_LIMIT_ENABLED", &c.RateLimit)
	str("RATE_LIMIT_ALLOW", &c.RateLimitAllow)
	num("TALENTFLOW_SEED_CANDIDATES", &c.SeedCandidates)

	return err
}
