// Package app assembles the extraction pipeline from configuration.
// Both binaries build their dependencies through it.
package app

import (
	"fmt"
	"io"

	"github.com/planachat/backend/config"
	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/infrastructure/cache"
	"github.com/planachat/backend/internal/infrastructure/relay"
	"github.com/planachat/backend/internal/logger"
	"github.com/planachat/backend/internal/usecase"
)

// cacheKeyPrefix namespaces redis keys
const cacheKeyPrefix = "planachat:"

// Relays converts the configured endpoints into domain relays, preserving order
func Relays(cfg *config.Config) []domain.Relay {
	relays := make([]domain.Relay, 0, len(cfg.Relay.Endpoints))
	for _, e := range cfg.Relay.Endpoints {
		relays = append(relays, domain.Relay{Name: e.Name, URLTemplate: e.URL})
	}
	return relays
}

// NewRelayClient builds the HTTP relay client from the relay section
func NewRelayClient(cfg *config.Config, log logger.Logger) *relay.Client {
	return relay.NewClient(relay.Config{
		Timeout:           cfg.Relay.Timeout,
		RequestsPerSecond: cfg.Relay.RequestsPerSecond,
		Burst:             cfg.Relay.Burst,
		UserAgent:         cfg.Relay.UserAgent,
		MaxBodyBytes:      cfg.Relay.MaxBodyBytes,
	}, log)
}

// NewExtractionService wires the relay client, site registry and extraction chain
func NewExtractionService(
	cfg *config.Config,
	fetcher domain.RelayFetcher,
	sites *usecase.SiteRegistry,
	log logger.Logger,
	recorder usecase.ExtractionRecorder,
) *usecase.ExtractionService {
	if fetcher == nil {
		fetcher = NewRelayClient(cfg, log)
	}
	if sites == nil {
		sites = usecase.DefaultSiteRegistry()
	}

	return usecase.NewExtractionService(
		fetcher,
		usecase.NewExtractionChain(sites, log),
		usecase.ExtractionServiceConfig{
			Relays:   Relays(cfg),
			Logger:   log,
			Recorder: recorder,
		},
	)
}

// Cache is a result cache that owns resources to release on shutdown
type Cache interface {
	domain.CacheRepository
	io.Closer
}

// NewCache selects the cache backend from the cache section
func NewCache(cfg *config.Config) (Cache, error) {
	switch cfg.Cache.Type {
	case "memory":
		return cache.NewMemoryCache(cache.DefaultCleanupInterval), nil
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL, cacheKeyPrefix)
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}
}
