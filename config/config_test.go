package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Server.ExtractTimeout != 45*time.Second {
			t.Errorf("Server.ExtractTimeout = %v, want 45s", cfg.Server.ExtractTimeout)
		}
		if len(cfg.Relay.Endpoints) != len(DefaultRelayEndpoints) {
			t.Fatalf("Relay.Endpoints = %d entries, want %d", len(cfg.Relay.Endpoints), len(DefaultRelayEndpoints))
		}
		for i, e := range DefaultRelayEndpoints {
			if cfg.Relay.Endpoints[i] != e {
				t.Errorf("Relay.Endpoints[%d] = %+v, want %+v", i, cfg.Relay.Endpoints[i], e)
			}
		}
		if cfg.Relay.Timeout != 15*time.Second {
			t.Errorf("Relay.Timeout = %v, want 15s", cfg.Relay.Timeout)
		}
		if cfg.Relay.MaxBodyBytes != 5<<20 {
			t.Errorf("Relay.MaxBodyBytes = %d, want %d", cfg.Relay.MaxBodyBytes, 5<<20)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 6*time.Hour {
			t.Errorf("Cache.TTL = %v, want 6h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 30 {
			t.Errorf("RateLimit.PerIP = %d, want 30", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
		if cfg.IsProduction() {
			t.Errorf("IsProduction() = true, want false by default")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("PLANACHAT_SERVER_PORT", "9090")
		t.Setenv("PLANACHAT_SERVER_ENVIRONMENT", "production")
		t.Setenv("PLANACHAT_SERVER_EXTRACT_TIMEOUT", "30s")
		t.Setenv("PLANACHAT_RELAY_TIMEOUT", "5s")
		t.Setenv("PLANACHAT_CACHE_TYPE", "redis")
		t.Setenv("PLANACHAT_CACHE_REDIS_URL", "redis://localhost:6379/1")
		t.Setenv("PLANACHAT_CACHE_TTL", "24h")
		t.Setenv("PLANACHAT_RATELIMIT_PER_IP", "200")
		t.Setenv("PLANACHAT_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if !cfg.IsProduction() {
			t.Errorf("IsProduction() = false, want true")
		}
		if cfg.Server.ExtractTimeout != 30*time.Second {
			t.Errorf("Server.ExtractTimeout = %v, want 30s", cfg.Server.ExtractTimeout)
		}
		if cfg.Relay.Timeout != 5*time.Second {
			t.Errorf("Relay.Timeout = %v, want 5s", cfg.Relay.Timeout)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379/1", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		t.Setenv("PLANACHAT_CACHE_TYPE", "invalid")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		t.Setenv("PLANACHAT_CACHE_TYPE", "redis")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestLoadFrom(t *testing.T) {
	t.Run("reads relays from a yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "planachat.yaml")
		content := `
server:
  port: "7070"
relay:
  endpoints:
    - name: local
      url: http://localhost:3000/raw?url={url}
  timeout: 3s
cache:
  ttl: 1h
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom() error = %v, want nil", err)
		}

		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if len(cfg.Relay.Endpoints) != 1 || cfg.Relay.Endpoints[0].Name != "local" {
			t.Errorf("Relay.Endpoints = %+v, want the single local relay", cfg.Relay.Endpoints)
		}
		if cfg.Relay.Timeout != 3*time.Second {
			t.Errorf("Relay.Timeout = %v, want 3s", cfg.Relay.Timeout)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		// untouched keys keep their defaults
		if cfg.Server.ExtractTimeout != 45*time.Second {
			t.Errorf("Server.ExtractTimeout = %v, want 45s", cfg.Server.ExtractTimeout)
		}
	})

	t.Run("fails when an explicit file is missing", func(t *testing.T) {
		if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadFrom() error = nil, want error for missing file")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("LoadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		envContent := `
# Comment line
PLANACHAT_TEST_VAR_1=value1
PLANACHAT_TEST_VAR_2=value2

# PLANACHAT_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(path, []byte(envContent), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Cleanup(func() {
			os.Unsetenv("PLANACHAT_TEST_VAR_1")
			os.Unsetenv("PLANACHAT_TEST_VAR_2")
		})

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("LoadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("PLANACHAT_TEST_VAR_1") != "value1" {
			t.Errorf("PLANACHAT_TEST_VAR_1 = %s, want value1", os.Getenv("PLANACHAT_TEST_VAR_1"))
		}
		if os.Getenv("PLANACHAT_TEST_VAR_2") != "value2" {
			t.Errorf("PLANACHAT_TEST_VAR_2 = %s, want value2", os.Getenv("PLANACHAT_TEST_VAR_2"))
		}
		if os.Getenv("PLANACHAT_TEST_COMMENTED") != "" {
			t.Errorf("PLANACHAT_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		t.Setenv("PLANACHAT_TEST_OVERRIDE", "existing-value")

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("PLANACHAT_TEST_OVERRIDE=new-value"), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("LoadEnvFile() error = %v, want nil", err)
		}

		if got := os.Getenv("PLANACHAT_TEST_OVERRIDE"); got != "existing-value" {
			t.Errorf("PLANACHAT_TEST_OVERRIDE = %s, want existing-value (should not override)", got)
		}
	})
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{ExtractTimeout: 45 * time.Second},
		Relay: RelayConfig{
			Endpoints: DefaultRelayEndpoints,
			Timeout:   15 * time.Second,
		},
		Cache: CacheConfig{Type: "memory"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails without relays", func(t *testing.T) {
		cfg := validConfig()
		cfg.Relay.Endpoints = nil

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty relay list")
		}
	})

	t.Run("fails for a relay without url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Relay.Endpoints = []RelayEndpoint{{Name: "broken"}}

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for relay without url")
		}
	})

	t.Run("fails for non-positive timeouts", func(t *testing.T) {
		cfg := validConfig()
		cfg.Relay.Timeout = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero relay timeout")
		}

		cfg = validConfig()
		cfg.Server.ExtractTimeout = -time.Second
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for negative extract timeout")
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Type = "invalid-type"

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid cache type")
		}
	})

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache = CacheConfig{Type: "redis", RedisURL: "redis://localhost:6379"}

		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for redis cache without URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache = CacheConfig{Type: "redis"}

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for redis without URL")
		}
	})
}
