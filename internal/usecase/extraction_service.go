package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/logger"
)

// Relay attempt and extraction result labels reported to the ExtractionRecorder
const (
	ResultPriced         = "priced"
	ResultPartial        = "partial"
	ResultFailed         = "failed"
	ResultPriceNotFound  = "price_not_found"
	ResultNetworkError   = "network_error"
	ResultHTTPError      = "http_error"
	ResultInvalidContent = "invalid_content"
	ResultBlocked        = "blocked"
)

// ExtractionRecorder receives pipeline measurements
type ExtractionRecorder interface {
	RelayAttempt(relay, result string)
	ExtractionCompleted(result string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RelayAttempt(string, string)                {}
func (nopRecorder) ExtractionCompleted(string, time.Duration) {}

// ExtractionServiceConfig holds configuration for the extraction service
type ExtractionServiceConfig struct {
	Relays   []domain.Relay
	Logger   logger.Logger
	Recorder ExtractionRecorder
}

// ExtractionService fetches product pages through relays and extracts a product record.
// Relays are tried strictly in order; the first result with a price ends the loop.
type ExtractionService struct {
	fetcher  domain.RelayFetcher
	chain    *ExtractionChain
	relays   []domain.Relay
	log      logger.Logger
	recorder ExtractionRecorder
}

// NewExtractionService creates a new extraction service with dependencies
func NewExtractionService(
	fetcher domain.RelayFetcher,
	chain *ExtractionChain,
	config ExtractionServiceConfig,
) *ExtractionService {
	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}
	recorder := config.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if chain == nil {
		chain = NewExtractionChain(nil, log)
	}

	relays := make([]domain.Relay, len(config.Relays))
	copy(relays, config.Relays)

	return &ExtractionService{
		fetcher:  fetcher,
		chain:    chain,
		relays:   relays,
		log:      log,
		recorder: recorder,
	}
}

// Relays returns the relays in the order they are tried
func (s *ExtractionService) Relays() []domain.Relay {
	out := make([]domain.Relay, len(s.relays))
	copy(out, s.relays)
	return out
}

// FetchAndParseProduct extracts a product from rawURL.
// It never panics nor returns an error: the outcome is either a product or a failure reason.
// Flow: validate URL -> for each relay: fetch -> classify -> extract -> stop on first priced result
func (s *ExtractionService) FetchAndParseProduct(ctx context.Context, rawURL string) domain.ExtractionOutcome {
	start := time.Now()
	outcome := s.fetchAndParse(ctx, rawURL)

	result := ResultFailed
	switch {
	case outcome.Success() && outcome.Product.HasPrice():
		result = ResultPriced
	case outcome.Success():
		result = ResultPartial
	}
	s.recorder.ExtractionCompleted(result, time.Since(start))

	if outcome.Success() {
		s.log.Info("Product extracted",
			logger.String("url", rawURL),
			logger.String("result", result),
			logger.String("name", outcome.Product.Name),
		)
	} else {
		s.log.Info("Product extraction failed",
			logger.String("url", rawURL),
			logger.String("reason", outcome.Reason()),
		)
	}
	return outcome
}

func (s *ExtractionService) fetchAndParse(ctx context.Context, rawURL string) domain.ExtractionOutcome {
	target, err := ParseTargetURL(rawURL)
	if err != nil {
		return domain.Failed(domain.NewInvalidURLError(rawURL))
	}
	if len(s.relays) == 0 {
		return domain.Failed(domain.NewNoRelaysError())
	}

	link := strings.TrimSpace(rawURL)

	var best *domain.ExtractedProduct
	var lastFailure *domain.ExtractionError

	for _, relay := range s.relays {
		if ctx.Err() != nil {
			s.log.Debug("Extraction canceled between relays",
				logger.String("url", link),
				logger.String("relay", relay.Name),
			)
			if best != nil {
				return domain.Succeeded(best)
			}
			return domain.Failed(domain.NewCanceledError())
		}

		product, failure := s.tryRelay(ctx, relay, target, link)
		if failure != nil {
			lastFailure = failure
			s.recorder.RelayAttempt(relay.Name, resultLabel(failure))
			s.log.Debug("Relay attempt failed",
				logger.String("relay", relay.Name),
				logger.String("url", link),
				logger.String("reason", failure.Reason),
			)
			continue
		}

		if product.HasPrice() {
			s.recorder.RelayAttempt(relay.Name, ResultPriced)
			return domain.Succeeded(product)
		}

		// a later relay may serve the server-rendered price this one stripped
		s.recorder.RelayAttempt(relay.Name, ResultPriceNotFound)
		if best == nil {
			best = product
		}
		lastFailure = domain.NewPriceNotFoundError()
	}

	if best != nil {
		return domain.Succeeded(best)
	}
	return domain.Failed(lastFailure)
}

// tryRelay fetches target through one relay and runs the classifier and extraction chain
func (s *ExtractionService) tryRelay(
	ctx context.Context,
	relay domain.Relay,
	target *url.URL,
	link string,
) (*domain.ExtractedProduct, *domain.ExtractionError) {
	resp, err := s.fetcher.Fetch(ctx, relay, target.String())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewCanceledError()
		}
		return nil, domain.NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewHTTPStatusError(resp.StatusCode)
	}

	if failure := ClassifyContent(resp.Body); failure != nil {
		return nil, failure
	}

	page, err := NewPage(target, resp.Body)
	if err != nil {
		return nil, domain.NewInvalidContentError()
	}

	return s.chain.Extract(page, link), nil
}

// ParseTargetURL validates that rawURL is an absolute http(s) URL with a host
func ParseTargetURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, domain.ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.ErrInvalidURL
	}
	if u.Hostname() == "" {
		return nil, domain.ErrInvalidURL
	}
	return u, nil
}

func resultLabel(failure *domain.ExtractionError) string {
	switch {
	case errors.Is(failure, domain.ErrNetwork), errors.Is(failure, domain.ErrCanceled):
		return ResultNetworkError
	case errors.Is(failure, domain.ErrHTTPStatus):
		return ResultHTTPError
	case errors.Is(failure, domain.ErrBlockedContent):
		return ResultBlocked
	case errors.Is(failure, domain.ErrInvalidContent):
		return ResultInvalidContent
	default:
		return ResultFailed
	}
}
