package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/logger"
)

// ProductExtractor is the pipeline entry point used by ProductService
type ProductExtractor interface {
	FetchAndParseProduct(ctx context.Context, rawURL string) domain.ExtractionOutcome
}

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL       time.Duration
	ExtractTimeout time.Duration // deadline of a shared pipeline run when the caller has none
	Logger         logger.Logger
}

// ExtractResult is the outcome of a product extraction request
type ExtractResult struct {
	Outcome domain.ExtractionOutcome
	Cached  bool
}

// ProductService serves extraction requests for the product-creation and price-recheck
// workflows. It keeps priced results in a cache; the pipeline itself stays stateless.
type ProductService struct {
	cache          domain.CacheRepository
	extractor      ProductExtractor
	cacheTTL       time.Duration
	extractTimeout time.Duration
	log            logger.Logger

	// inflight collapses concurrent requests for the same URL into one pipeline run
	inflight singleflight.Group
}

// NewProductService creates a new product service. cache may be nil to disable caching.
func NewProductService(
	cache domain.CacheRepository,
	extractor ProductExtractor,
	config ProductServiceConfig,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 6 * time.Hour
	}
	extractTimeout := config.ExtractTimeout
	if extractTimeout <= 0 {
		extractTimeout = 45 * time.Second
	}
	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &ProductService{
		cache:          cache,
		extractor:      extractor,
		cacheTTL:       cacheTTL,
		extractTimeout: extractTimeout,
		log:            log,
	}
}

// Extract looks up a product for the request URL.
// Flow: check cache (unless Fresh) -> run pipeline -> cache priced result -> return
func (s *ProductService) Extract(ctx context.Context, request *domain.ExtractRequest) (*ExtractResult, error) {
	if request == nil || strings.TrimSpace(request.URL) == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := generateCacheKey(request.URL)

	if !request.Fresh {
		if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
			return &ExtractResult{Outcome: domain.Succeeded(cached), Cached: true}, nil
		}
	}

	results := s.inflight.DoChan(cacheKey, func() (interface{}, error) {
		runCtx, cancel := s.sharedRunContext(ctx)
		defer cancel()

		outcome := s.extractor.FetchAndParseProduct(runCtx, request.URL)

		if outcome.Success() && outcome.Product.HasPrice() {
			if err := s.setInCache(runCtx, cacheKey, outcome.Product); err != nil {
				s.log.Warn("Failed to cache extracted product",
					logger.String("key", cacheKey),
					logger.Error(err),
				)
			}
		}
		return outcome, nil
	})

	select {
	case res := <-results:
		return s.sharedResult(res, cacheKey), nil
	case <-ctx.Done():
		// a run that finished on the same deadline still carries its best candidate
		select {
		case res := <-results:
			return s.sharedResult(res, cacheKey), nil
		default:
		}
		// the shared run keeps going for the other callers
		return &ExtractResult{Outcome: domain.Failed(domain.NewCanceledError())}, nil
	}
}

func (s *ProductService) sharedResult(res singleflight.Result, cacheKey string) *ExtractResult {
	if res.Shared {
		s.log.Debug("Shared in-flight extraction", logger.String("key", cacheKey))
	}
	return &ExtractResult{Outcome: res.Val.(domain.ExtractionOutcome)}
}

// sharedRunContext detaches a pipeline run from the caller that started it, so that one
// caller leaving does not cancel the run for the others. The caller's deadline is kept.
func (s *ProductService) sharedRunContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithTimeout(detached, s.extractTimeout)
}

// generateCacheKey creates a normalized cache key from a product URL.
// Format: "product:{lower-cased url without fragment}"
func generateCacheKey(rawURL string) string {
	key := strings.TrimSpace(rawURL)
	if u, err := ParseTargetURL(key); err == nil {
		u.Fragment = ""
		u.Host = strings.ToLower(u.Host)
		key = u.String()
	}
	return fmt.Sprintf("product:%s", key)
}

func (s *ProductService) getFromCache(ctx context.Context, key string) (*domain.ExtractedProduct, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var product domain.ExtractedProduct
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &product, nil
}

func (s *ProductService) setInCache(ctx context.Context, key string, product *domain.ExtractedProduct) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
