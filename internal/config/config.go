// Package config loads calendar-mcp settings from defaults, an optional
// config file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Bounds for the query defaults.
const (
	MinDaysAhead  = 1
	MaxDaysAhead  = 365
	MinMaxResults = 1
	MaxMaxResults = 100
)

// Config holds all service configuration.
type Config struct {
	Google   GoogleConfig
	Log      LogConfig
	Query    QueryConfig
	Features FeaturesConfig
	Calendar CalendarConfig
	HTTP     HTTPConfig
}

// GoogleConfig locates the credentials used to reach the Calendar API.
type GoogleConfig struct {
	CredentialsFile    string
	TokenFile          string
	ServiceAccountKey  string
	ServiceAccountFile string
	OAuthRedirectPort  int
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	File   string
	Format string
}

// QueryConfig holds the defaults used by the query parser.
type QueryConfig struct {
	DefaultMaxResults int
	DefaultDaysAhead  int
	DefaultTimezone   string
}

// FeaturesConfig toggles optional tools.
type FeaturesConfig struct {
	EnableAllCalendars bool
	// EnableWriteOperations is accepted for compatibility; no write tools exist.
	EnableWriteOperations bool
}

// CalendarConfig tunes the Calendar API client.
type CalendarConfig struct {
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
	CacheSize         int
}

// HTTPConfig tunes the streamable HTTP transport.
type HTTPConfig struct {
	RateLimit float64
	RateBurst int
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"google.credentials_file":          "GOOGLE_CREDENTIALS_FILE",
	"google.token_file":                "GOOGLE_TOKEN_FILE",
	"google.service_account_key":       "GOOGLE_SERVICE_ACCOUNT_KEY",
	"google.service_account_file":      "GOOGLE_SERVICE_ACCOUNT_FILE",
	"google.oauth_redirect_port":       "OAUTH_REDIRECT_PORT",
	"log.level":                        "LOG_LEVEL",
	"log.file":                         "LOG_FILE",
	"log.format":                       "LOG_FORMAT",
	"query.default_max_results":        "DEFAULT_MAX_RESULTS",
	"query.default_days_ahead":         "DEFAULT_DAYS_AHEAD",
	"query.default_timezone":           "DEFAULT_TIMEZONE",
	"features.enable_all_calendars":    "ENABLE_ALL_CALENDARS",
	"features.enable_write_operations": "ENABLE_WRITE_OPERATIONS",
	"calendar.requests_per_second":     "CALENDAR_RPS",
	"calendar.burst":                   "CALENDAR_BURST",
	"calendar.cache_ttl":               "CALENDAR_CACHE_TTL",
	"calendar.cache_size":              "CALENDAR_CACHE_SIZE",
	"http.rate_limit":                  "HTTP_RATE_LIMIT",
	"http.rate_burst":                  "HTTP_RATE_BURST",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("google.credentials_file", "credentials.json")
	v.SetDefault("google.token_file", "token.json")
	v.SetDefault("google.service_account_key", "")
	v.SetDefault("google.service_account_file", "service-account-key.json")
	v.SetDefault("google.oauth_redirect_port", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", "text")

	v.SetDefault("query.default_max_results", 10)
	v.SetDefault("query.default_days_ahead", 7)
	v.SetDefault("query.default_timezone", "")

	v.SetDefault("features.enable_all_calendars", false)
	v.SetDefault("features.enable_write_operations", false)

	v.SetDefault("calendar.requests_per_second", 5.0)
	v.SetDefault("calendar.burst", 10)
	v.SetDefault("calendar.cache_ttl", 10*time.Minute)
	v.SetDefault("calendar.cache_size", 128)

	v.SetDefault("http.rate_limit", 20.0)
	v.SetDefault("http.rate_burst", 40)
}

// Load reads configuration. When path is empty, a config file named
// calendar-mcp.yaml is looked up in the working directory and
// $HOME/.config/calendar-mcp; a missing file is not an error. Environment
// variables override file values, and the result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("calendar-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/calendar-mcp")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment or any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Google: GoogleConfig{
			CredentialsFile:    v.GetString("google.credentials_file"),
			TokenFile:          v.GetString("google.token_file"),
			ServiceAccountKey:  v.GetString("google.service_account_key"),
			ServiceAccountFile: v.GetString("google.service_account_file"),
			OAuthRedirectPort:  v.GetInt("google.oauth_redirect_port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			File:   v.GetString("log.file"),
			Format: v.GetString("log.format"),
		},
		Query: QueryConfig{
			DefaultMaxResults: v.GetInt("query.default_max_results"),
			DefaultDaysAhead:  v.GetInt("query.default_days_ahead"),
			DefaultTimezone:   v.GetString("query.default_timezone"),
		},
		Features: FeaturesConfig{
			EnableAllCalendars:    v.GetBool("features.enable_all_calendars"),
			EnableWriteOperations: v.GetBool("features.enable_write_operations"),
		},
		Calendar: CalendarConfig{
			RequestsPerSecond: v.GetFloat64("calendar.requests_per_second"),
			Burst:             v.GetInt("calendar.burst"),
			CacheTTL:          v.GetDuration("calendar.cache_ttl"),
			CacheSize:         v.GetInt("calendar.cache_size"),
		},
		HTTP: HTTPConfig{
			RateLimit: v.GetFloat64("http.rate_limit"),
			RateBurst: v.GetInt("http.rate_burst"),
		},
	}
}

// Validate checks bounds and enumerations.
func (c *Config) Validate() error {
	if c.Query.DefaultMaxResults < MinMaxResults || c.Query.DefaultMaxResults > MaxMaxResults {
		return fmt.Errorf("%w: default max results must be between %d and %d, got %d",
			ErrInvalid, MinMaxResults, MaxMaxResults, c.Query.DefaultMaxResults)
	}
	if c.Query.DefaultDaysAhead < MinDaysAhead || c.Query.DefaultDaysAhead > MaxDaysAhead {
		return fmt.Errorf("%w: default days ahead must be between %d and %d, got %d",
			ErrInvalid, MinDaysAhead, MaxDaysAhead, c.Query.DefaultDaysAhead)
	}
	if c.Google.OAuthRedirectPort < 0 || c.Google.OAuthRedirectPort > 65535 {
		return fmt.Errorf("%w: oauth redirect port out of range: %d", ErrInvalid, c.Google.OAuthRedirectPort)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q, must be text or json", ErrInvalid, c.Log.Format)
	}

	if c.Calendar.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: calendar requests per second must be positive", ErrInvalid)
	}
	if c.Calendar.Burst < 1 {
		return fmt.Errorf("%w: calendar burst must be at least 1", ErrInvalid)
	}
	if c.Calendar.CacheSize < 1 {
		return fmt.Errorf("%w: calendar cache size must be at least 1", ErrInvalid)
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateBurst < 1 {
		return fmt.Errorf("%w: http rate limit and burst must be positive", ErrInvalid)
	}
	return nil
}

// String summarises the configuration without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("Config(credentials_file=%s, max_results=%d, days_ahead=%d, timezone=%q)",
		c.Google.CredentialsFile, c.Query.DefaultMaxResults, c.Query.DefaultDaysAhead, c.Query.DefaultTimezone)
}
