package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "JOBSNAP_CONFIG"

const defaultConfigPath = "config.yaml"

// Source types understood by the CLI wiring.
const (
	SourceRemotive   = "remotive"
	SourceJSearch    = "jsearch"
	SourceAdzuna     = "adzuna"
	SourceGreenhouse = "greenhouse"
	SourceLever      = "lever"
	SourceAshby      = "ashby"
	SourceGem        = "gem"
)

// Config is the root configuration for JobSnap.
type Config struct {
	Database     DatabaseConfig
	Fetch        FetchConfig
	Sources      []SourceConfig
	Retry        RetryConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	Schedule     ScheduleConfig
	Server       ServerConfig
	Notification NotificationConfig
	Match        MatchConfig
}

type DatabaseConfig struct {
	Path string
}

// FetchConfig tunes fetch cycles.
type FetchConfig struct {
	DefaultLimit    int
	Timeout         time.Duration // per source call
	TopUp           bool          // fill short live results from the sample set
	ExcludeKeywords []string
}

// SourceConfig describes one job source in aggregation order.
type SourceConfig struct {
	Type        string
	Name        string // company name for board sources
	Enabled     bool
	BoardToken  string
	APIKey      string
	AppID       string
	AppKey      string
	Country     string
	BaseURL     string
	ExpandTerms bool // query every search-term variant
	Pages       int  // pages per term
}

// Label is the source's display and rate-limit key.
func (s SourceConfig) Label() string {
	if s.BoardToken != "" {
		return s.Type + "/" + s.BoardToken
	}
	return s.Type
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls per-source request spacing.
type RateLimitConfig struct {
	MinDelay  time.Duration
	Overrides map[string]time.Duration // keyed by source type
}

// MinDelayFor returns the configured delay for the given source type, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(sourceType string) time.Duration {
	if d, ok := r.Overrides[sourceType]; ok {
		return d
	}
	return r.MinDelay
}

// CacheConfig controls the upstream response cache. An empty RedisURL selects
// the in-process cache.
type CacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

// ScheduleConfig drives the refresh daemon.
type ScheduleConfig struct {
	Spec   string // cron spec, e.g. "@every 6h" or "0 */6 * * *"
	Search string
	Limit  int
}

type ServerConfig struct {
	Addr string
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	Top        int    `yaml:"top"`         // matches per digest
}

type MatchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Database     DatabaseConfig     `yaml:"database"`
	Fetch        rawFetchConfig     `yaml:"fetch"`
	Sources      []rawSourceConfig  `yaml:"sources"`
	Retry        rawRetryConfig     `yaml:"retry"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Cache        rawCacheConfig     `yaml:"cache"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Server       ServerConfig       `yaml:"server"`
	Notification NotificationConfig `yaml:"notification"`
	Match        MatchConfig        `yaml:"match"`
}

type rawFetchConfig struct {
	DefaultLimit    int      `yaml:"default_limit"`
	Timeout         string   `yaml:"timeout"`
	TopUp           bool     `yaml:"top_up"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

type rawSourceConfig struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Enabled     *bool  `yaml:"enabled"`
	BoardToken  string `yaml:"board_token"`
	APIKey      string `yaml:"api_key"`
	AppID       string `yaml:"app_id"`
	AppKey      string `yaml:"app_key"`
	Country     string `yaml:"country"`
	BaseURL     string `yaml:"base_url"`
	ExpandTerms *bool  `yaml:"expand_terms"`
	Pages       int    `yaml:"pages"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
}

type rawCacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

// ResolvePath picks the config file: the flag value, then $JOBSNAP_CONFIG,
// then ./config.yaml.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return defaultConfigPath
}

// LoadDotEnv loads KEY=value pairs from the given files (default ".env") into
// the environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fetchTimeout, err := durationOr(raw.Fetch.Timeout, 12*time.Second, "fetch.timeout")
	if err != nil {
		return nil, err
	}
	retryDelay, err := durationOr(raw.Retry.BaseDelay, 2*time.Second, "retry.base_delay")
	if err != nil {
		return nil, err
	}
	minDelay, err := durationOr(raw.RateLimit.MinDelay, time.Second, "rate_limit.min_delay")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationOr(raw.Cache.TTL, time.Hour, "cache.ttl")
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]time.Duration)
	for src, v := range raw.RateLimit.Overrides {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.overrides[%q]: %w", src, err)
		}
		overrides[src] = d
	}

	maxRetries := 2
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}

	cfg := &Config{
		Database: DatabaseConfig{Path: orDefault(raw.Database.Path, "jobsnap.db")},
		Fetch: FetchConfig{
			DefaultLimit:    intOr(raw.Fetch.DefaultLimit, 50),
			Timeout:         fetchTimeout,
			TopUp:           raw.Fetch.TopUp,
			ExcludeKeywords: raw.Fetch.ExcludeKeywords,
		},
		Sources: make([]SourceConfig, 0, len(raw.Sources)),
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  retryDelay,
		},
		RateLimit: RateLimitConfig{
			MinDelay:  minDelay,
			Overrides: overrides,
		},
		Cache: CacheConfig{
			Enabled:  raw.Cache.Enabled,
			RedisURL: raw.Cache.RedisURL,
			TTL:      cacheTTL,
		},
		Schedule: ScheduleConfig{
			Spec:   orDefault(raw.Schedule.Spec, "@every 6h"),
			Search: raw.Schedule.Search,
			Limit:  raw.Schedule.Limit,
		},
		Server:       ServerConfig{Addr: orDefault(raw.Server.Addr, ":5000")},
		Notification: raw.Notification,
		Match:        MatchConfig{DefaultLimit: intOr(raw.Match.DefaultLimit, 20)},
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Notification.Top == 0 {
		cfg.Notification.Top = 5
	}
	if cfg.Schedule.Limit == 0 {
		cfg.Schedule.Limit = cfg.Fetch.DefaultLimit
	}

	for _, rs := range raw.Sources {
		cfg.Sources = append(cfg.Sources, sourceFromRaw(rs))
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// sourceFromRaw applies per-type plan defaults: the search APIs expand the
// term list and JSearch walks three pages per term.
func sourceFromRaw(rs rawSourceConfig) SourceConfig {
	sc := SourceConfig{
		Type:       strings.ToLower(strings.TrimSpace(rs.Type)),
		Name:       rs.Name,
		Enabled:    rs.Enabled == nil || *rs.Enabled,
		BoardToken: rs.BoardToken,
		APIKey:     rs.APIKey,
		AppID:      rs.AppID,
		AppKey:     rs.AppKey,
		Country:    rs.Country,
		BaseURL:    rs.BaseURL,
		Pages:      rs.Pages,
	}

	switch sc.Type {
	case SourceRemotive:
		sc.ExpandTerms = true
	case SourceJSearch:
		sc.ExpandTerms = true
		if sc.Pages == 0 {
			sc.Pages = 3
		}
	}
	if rs.ExpandTerms != nil {
		sc.ExpandTerms = *rs.ExpandTerms
	}
	if sc.Pages < 1 {
		sc.Pages = 1
	}
	if sc.Name == "" {
		sc.Name = sc.BoardToken
	}
	return sc
}

func validate(cfg *Config) error {
	if cfg.Fetch.DefaultLimit < 1 {
		return fmt.Errorf("fetch.default_limit must be positive, got %d", cfg.Fetch.DefaultLimit)
	}
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	enabled := 0
	for i, s := range cfg.Sources {
		if err := validateSource(s); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if _, err := cron.ParseStandard(cfg.Schedule.Spec); err != nil {
		return fmt.Errorf("schedule.spec %q: %w", cfg.Schedule.Spec, err)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}

func validateSource(s SourceConfig) error {
	switch s.Type {
	case SourceRemotive, SourceJSearch:
	case SourceAdzuna:
		if s.Enabled && (s.AppID == "" || s.AppKey == "") {
			return fmt.Errorf("adzuna requires app_id and app_key")
		}
	case SourceGreenhouse, SourceLever, SourceAshby, SourceGem:
		if s.BoardToken == "" {
			return fmt.Errorf("%s requires board_token", s.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown source type %q", s.Type)
	}
	return nil
}

func durationOr(v string, def time.Duration, field string) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, v, err)
	}
	return d, nil
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
