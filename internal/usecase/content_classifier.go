package usecase

import (
	"regexp"
	"strings"

	"github.com/planachat/backend/internal/domain"
)

// MinHTMLContentLength is the smallest body accepted as a real product page
const MinHTMLContentLength = 500

// BlockIndicators are lower-case phrases revealing a CAPTCHA, anti-bot or rate-limit page.
// Matching is a case-insensitive substring search; the list is best-effort, not exhaustive.
var BlockIndicators = []string{
	"captcha",
	"are you a robot",
	"not a robot",
	"robot check",
	"êtes-vous un robot",
	"access denied",
	"accès refusé",
	"acces refuse",
	"rate limit",
	"too many requests",
	"unusual traffic",
	"trafic inhabituel",
	"verify you are human",
	"checking your browser",
	"ddos protection",
	"request blocked",
	"request unsuccessful",
}

// errorPageTitleRegex matches generic error pages such as <title>Error</title> or <title>404</title>
var errorPageTitleRegex = regexp.MustCompile(`(?is)<title[^>]*>\s*(?:error|404)\s*</title>`)

// IsValidHTMLContent reports whether a body looks like a real HTML document:
// long enough, with an <html> or <!DOCTYPE> marker, and not a generic error page.
func IsValidHTMLContent(html string) bool {
	if len(html) < MinHTMLContentLength {
		return false
	}

	lower := strings.ToLower(html)
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<!doctype") {
		return false
	}

	return !errorPageTitleRegex.MatchString(html)
}

// IsBlockedResponse reports whether a body contains any block indicator
func IsBlockedResponse(html string) bool {
	return matchBlockIndicator(html) != ""
}

// matchBlockIndicator returns the first block indicator found in html, or ""
func matchBlockIndicator(html string) string {
	lower := strings.ToLower(html)
	for _, indicator := range BlockIndicators {
		if strings.Contains(lower, indicator) {
			return indicator
		}
	}
	return ""
}

// ClassifyContent gates a relay body before extraction.
// Invalid content is reported before blocked content.
func ClassifyContent(html string) *domain.ExtractionError {
	if !IsValidHTMLContent(html) {
		return domain.NewInvalidContentError()
	}
	if IsBlockedResponse(html) {
		return domain.NewBlockedContentError()
	}
	return nil
}
