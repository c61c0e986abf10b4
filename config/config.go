package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/planachat/backend/internal/logger"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       logger.Config   `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"` // overall deadline of one extraction
}

// RelayEndpoint is one URL-relaying service. URL contains a "{url}" placeholder.
type RelayEndpoint struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// RelayConfig holds relay client configuration
type RelayConfig struct {
	Endpoints         []RelayEndpoint `mapstructure:"endpoints"`
	Timeout           time.Duration   `mapstructure:"timeout"` // per relay attempt
	RequestsPerSecond float64         `mapstructure:"requests_per_second"`
	Burst             int             `mapstructure:"burst"`
	UserAgent         string          `mapstructure:"user_agent"`
	MaxBodyBytes      int64           `mapstructure:"max_body_bytes"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
}

// DefaultRelayEndpoints are the public relays tried in order when none is configured
var DefaultRelayEndpoints = []RelayEndpoint{
	{Name: "allorigins", URL: "https://api.allorigins.win/raw?url={url}"},
	{Name: "corsproxy", URL: "https://corsproxy.io/?url={url}"},
	{Name: "codetabs", URL: "https://api.codetabs.com/v1/proxy?quest={url}"},
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from path, or from the default search paths when path is empty
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/planachat/")
	}

	// Environment variable settings: PLANACHAT_SERVER_PORT -> server.port
	v.SetEnvPrefix("PLANACHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadEnvFile loads variables from .env files into the process environment.
// Missing files are ignored and existing variables are never overridden.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*", "https://planachat.fr"})
	v.SetDefault("server.extract_timeout", "45s")

	// Relay defaults
	endpoints := make([]map[string]any, 0, len(DefaultRelayEndpoints))
	for _, e := range DefaultRelayEndpoints {
		endpoints = append(endpoints, map[string]any{"name": e.Name, "url": e.URL})
	}
	v.SetDefault("relay.endpoints", endpoints)
	v.SetDefault("relay.timeout", "15s")
	v.SetDefault("relay.requests_per_second", 2.0)
	v.SetDefault("relay.burst", 4)
	v.SetDefault("relay.user_agent", "Mozilla/5.0 (compatible; PlanAchat/1.0; +https://planachat.fr)")
	v.SetDefault("relay.max_body_bytes", 5<<20)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "6h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Relay.Endpoints) == 0 {
		return errors.New("at least one relay endpoint is required")
	}
	for i, e := range config.Relay.Endpoints {
		if e.Name == "" || e.URL == "" {
			return fmt.Errorf("relay endpoint %d needs a name and a url", i)
		}
	}

	if config.Relay.Timeout <= 0 {
		return fmt.Errorf("relay timeout must be positive, got: %s", config.Relay.Timeout)
	}

	if config.Server.ExtractTimeout <= 0 {
		return fmt.Errorf("extract timeout must be positive, got: %s", config.Server.ExtractTimeout)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return errors.New("redis URL is required when cache type is 'redis'")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
