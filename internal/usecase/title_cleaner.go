package usecase

import (
	"regexp"
	"strings"
)

// MaxTitleLength caps names taken from the <title> element
const MaxTitleLength = 150

// Compiled patterns for <title> cleanup
var (
	// Matches a trailing title segment: "Perceuse | Leroy Merlin", "Casque - Fnac.com", "Lampe : IKEA"
	siteSuffixPattern = regexp.MustCompile(`\s+[|\-–—:]\s+([^|\-–—:]{1,40})$`)

	// Matches shopping boilerplate such as "Achat Casque audio" or "Lampe pas cher"
	shoppingPrefixPattern = regexp.MustCompile(`(?i)^(?:achat|acheter|promo)\s+`)
	shoppingSuffixPattern = regexp.MustCompile(`(?i)(?:^|\s+)(?:pas cher|au meilleur prix|en promo(?:tion)?|prix bas)\s*$`)
)

// CleanTitle turns a document title into a product name.
// It removes trailing segments naming the site of host, common shopping boilerplate,
// collapses whitespace and caps the length at a word boundary.
// A title reduced to nothing is returned trimmed.
func CleanTitle(title, host string) string {
	original := cleanText(title)
	if original == "" {
		return ""
	}

	// Step 1: Drop the site segment, at most twice ("Produit | Fnac.com | Fnac")
	tokens := siteTokens(host)
	cleaned := original
	for i := 0; i < 2; i++ {
		loc := siteSuffixPattern.FindStringSubmatchIndex(cleaned)
		if loc == nil || loc[0] == 0 || !namesSite(cleaned[loc[2]:loc[3]], tokens) {
			break
		}
		cleaned = strings.TrimSpace(cleaned[:loc[0]])
	}

	// Step 2: Remove shopping boilerplate
	cleaned = shoppingPrefixPattern.ReplaceAllString(cleaned, "")
	cleaned = shoppingSuffixPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return original
	}

	// Step 3: Limit length, cutting at a word boundary when possible
	if len(cleaned) > MaxTitleLength {
		cut := cleaned[:MaxTitleLength]
		if lastSpace := strings.LastIndex(cut, " "); lastSpace > MaxTitleLength/2 {
			cut = cut[:lastSpace]
		}
		cleaned = strings.ToValidUTF8(cut, "")
	}

	return cleaned
}

// siteTokens returns the alphanumeric labels of host, without "www" and the top-level domain.
// "www.leroymerlin.fr" gives ["leroymerlin"]; "deco.example.com" gives ["deco", "example"].
func siteTokens(host string) []string {
	labels := strings.Split(strings.TrimPrefix(strings.ToLower(host), "www."), ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	var tokens []string
	for _, label := range labels {
		if token := alphanumeric(label); len(token) >= 3 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// namesSite reports whether a title segment is the site name, e.g. "Leroy Merlin" for leroymerlin
func namesSite(segment string, tokens []string) bool {
	seg := alphanumeric(strings.ToLower(segment))
	if len(seg) < 3 {
		return false
	}
	for _, token := range tokens {
		if strings.Contains(seg, token) || strings.Contains(token, seg) {
			return true
		}
	}
	return false
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
