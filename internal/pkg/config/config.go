package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Viewport  ViewportConfig  `mapstructure:"viewport"`
	Search    SearchConfig    `mapstructure:"search"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

// Catalog sources.
const (
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// CatalogConfig selects where locations are loaded from. An empty path with
// the file source uses the built-in campus catalogue.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type ViewportConfig struct {
	CanvasWidth  float64 `mapstructure:"canvas_width"`
	CanvasHeight float64 `mapstructure:"canvas_height"`
	Padding      float64 `mapstructure:"padding"`
	MaxScale     float64 `mapstructure:"max_scale"`
	MarkerOffset float64 `mapstructure:"marker_offset"`
}

type SearchConfig struct {
	DebounceMS      int `mapstructure:"debounce_ms"`
	SettleDelayMS   int `mapstructure:"settle_delay_ms"`
	HighlightMS     int `mapstructure:"highlight_ms"`
	SuggestionLimit int `mapstructure:"suggestion_limit"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	MaxQueryLength  int `mapstructure:"max_query_length"`
}

func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s SearchConfig) SettleDelay() time.Duration {
	return time.Duration(s.SettleDelayMS) * time.Millisecond
}

func (s SearchConfig) Highlight() time.Duration {
	return time.Duration(s.HighlightMS) * time.Millisecond
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	return load(service, viper.New())
}

func load(service string, v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "campusmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "campusmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("catalog.source", CatalogFile)
	v.SetDefault("catalog.path", "")
	v.SetDefault("viewport.canvas_width", 1440)
	v.SetDefault("viewport.canvas_height", 1106)
	v.SetDefault("viewport.padding", 0.3)
	v.SetDefault("viewport.max_scale", 4)
	v.SetDefault("viewport.marker_offset", 40)
	v.SetDefault("search.debounce_ms", 300)
	v.SetDefault("search.settle_delay_ms", 1000)
	v.SetDefault("search.highlight_ms", 3000)
	v.SetDefault("search.suggestion_limit", 5)
	v.SetDefault("search.cache_ttl_seconds", 300)
	v.SetDefault("search.max_query_length", 200)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CAMPUSMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("CAMPUSMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Catalog.Source {
	case CatalogFile:
	case CatalogPostgres:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres catalog")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required for the postgres catalog")
		}
	default:
		errs = append(errs, fmt.Sprintf("catalog.source must be %q or %q, got %q", CatalogFile, CatalogPostgres, c.Catalog.Source))
	}

	if c.Viewport.CanvasWidth <= 0 || c.Viewport.CanvasHeight <= 0 {
		errs = append(errs, "viewport canvas dimensions must be positive")
	}
	if c.Viewport.Padding < 0 || c.Viewport.Padding >= 1 {
		errs = append(errs, fmt.Sprintf("viewport.padding must be in [0,1), got %g", c.Viewport.Padding))
	}
	if c.Viewport.MaxScale <= 0 {
		errs = append(errs, "viewport.max_scale must be positive")
	}

	if c.Search.DebounceMS <= 0 {
		errs = append(errs, "search.debounce_ms must be positive")
	}
	if c.Search.SettleDelayMS < 0 {
		errs = append(errs, "search.settle_delay_ms must not be negative")
	}
	if c.Search.HighlightMS < 0 {
		errs = append(errs, "search.highlight_ms must not be negative")
	}
	if c.Search.SuggestionLimit <= 0 {
		errs = append(errs, "search.suggestion_limit must be positive")
	}
	if c.Search.MaxQueryLength <= 0 {
		errs = append(errs, "search.max_query_length must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
