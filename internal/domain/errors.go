package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the target URL is not a well-formed absolute http(s) URL
	ErrInvalidURL = errors.New("invalid product URL")

	// ErrHTTPStatus is returned when a relay answers with a non-2xx status
	ErrHTTPStatus = errors.New("relay returned non-2xx status")

	// ErrInvalidContent is returned when the fetched body is not a usable HTML document
	ErrInvalidContent = errors.New("invalid HTML content")

	// ErrBlockedContent is returned when the fetched body looks like a CAPTCHA or block page
	ErrBlockedContent = errors.New("blocked content")

	// ErrPriceNotFound is returned when no strategy found a price on a well-formed page
	ErrPriceNotFound = errors.New("price not found")

	// ErrNetwork is returned on transport-level failures (DNS, connection, timeout)
	ErrNetwork = errors.New("network error")

	// ErrCanceled is returned when the extraction was canceled before any candidate was found
	ErrCanceled = errors.New("extraction canceled")

	// ErrNoRelays is returned when the orchestrator has no relay configured
	ErrNoRelays = errors.New("no relay configured")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

// ExtractionError carries the user-facing (French) reason of an extraction failure.
// Kind is one of the sentinel errors above.
type ExtractionError struct {
	Kind       error
	Reason     string
	StatusCode int
}

func (e *ExtractionError) Error() string {
	return e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Kind
}

// NewInvalidURLError builds the failure for a malformed target URL
func NewInvalidURLError(rawURL string) *ExtractionError {
	return &ExtractionError{
		Kind:   ErrInvalidURL,
		Reason: fmt.Sprintf("URL invalide : %q", rawURL),
	}
}

// NewHTTPStatusError builds the failure for a relay answering with a non-2xx status
func NewHTTPStatusError(status int) *ExtractionError {
	return &ExtractionError{
		Kind:       ErrHTTPStatus,
		Reason:     fmt.Sprintf("Erreur HTTP %d lors de la récupération de la page", status),
		StatusCode: status,
	}
}

// NewInvalidContentError builds the failure for an unusable body
func NewInvalidContentError() *ExtractionError {
	return &ExtractionError{
		Kind:   ErrInvalidContent,
		Reason: "Contenu de la page invalide ou trop court",
	}
}

// NewBlockedContentError builds the failure for a CAPTCHA or anti-bot page
func NewBlockedContentError() *ExtractionError {
	return &ExtractionError{
		Kind:   ErrBlockedContent,
		Reason: "Accès bloqué par le site (captcha ou protection anti-robot)",
	}
}

// NewPriceNotFoundError builds the failure for a page without any price
func NewPriceNotFoundError() *ExtractionError {
	return &ExtractionError{
		Kind:   ErrPriceNotFound,
		Reason: "Prix introuvable sur la page",
	}
}

// NewNetworkError builds the failure for a transport-level error
func NewNetworkError(err error) *ExtractionError {
	return &ExtractionError{
		Kind:   ErrNetwork,
		Reason: fmt.Sprintf("Erreur réseau : %v", err),
	}
}

// NewCanceledError builds the failure for a canceled extraction
func NewCanceledError() *ExtractionError {
	return &ExtractionError{
		Kind:   ErrCanceled,
		Reason: "Extraction annulée ou délai dépassé",
	}
}

// NewNoRelaysError builds the failure for an empty relay list
func NewNoRelaysError() *ExtractionError {
	return &ExtractionError{
		Kind:   ErrNoRelays,
		Reason: "Aucun service relais configuré",
	}
}
