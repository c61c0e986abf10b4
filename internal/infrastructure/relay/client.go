package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/logger"
)

// URLPlaceholder is replaced by the query-escaped target URL in a relay template
const URLPlaceholder = "{url}"

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 5 << 20
	defaultUserAgent    = "Mozilla/5.0 (compatible; PlanAchat/1.0; +https://planachat.fr)"
)

// Config holds relay client settings
type Config struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	MaxBodyBytes      int64
}

// Client fetches pages through URL-relaying services. It implements domain.RelayFetcher.
type Client struct {
	httpClient   *http.Client
	limiter      *HostLimiter
	userAgent    string
	maxBodyBytes int64
	log          logger.Logger
}

// NewClient creates a new relay client
func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:      NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
		log:          log,
	}
}

// BuildRelayURL substitutes the escaped target URL into the relay template.
// Templates without a placeholder get the escaped target appended.
func BuildRelayURL(template, targetURL string) string {
	escaped := url.QueryEscape(targetURL)
	if strings.Contains(template, URLPlaceholder) {
		return strings.ReplaceAll(template, URLPlaceholder, escaped)
	}
	return template + escaped
}

// Fetch retrieves targetURL through relay.
// Transport failures are returned as errors wrapping domain.ErrNetwork (or the context error);
// any HTTP status is reported in the response.
func (c *Client) Fetch(ctx context.Context, relay domain.Relay, targetURL string) (*domain.RelayResponse, error) {
	reqURL := BuildRelayURL(relay.URLTemplate, targetURL)

	if err := c.limiter.WaitURL(ctx, reqURL); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: failed to read body: %v", domain.ErrNetwork, err)
	}

	c.log.Debug("Relay responded",
		logger.String("relay", relay.Name),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return &domain.RelayResponse{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}
