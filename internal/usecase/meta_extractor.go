package usecase

import (
	"regexp"
	"strings"

	"github.com/planachat/backend/internal/domain"
)

// amountPattern matches a number with optional thousands groups and decimals
const amountPattern = `(\d+(?:[\s.,\x{00a0}]\d{3})*(?:[.,]\d{1,2})?)`

// PricePatterns is the ordered list of regular expressions scanned over the raw HTML
// when no other strategy found a price. The first submatch holds the price text.
var PricePatterns = []*regexp.Regexp{
	// currency-prefixed: "€ 15,50", "EUR 15.50"
	regexp.MustCompile(`(?i)(?:€|&euro;|\bEUR)\s*` + amountPattern),
	// currency-suffixed: "15,50 €", "15.50 EUR", "15 euros"
	regexp.MustCompile(`(?i)` + amountPattern + `\s*(?:€|&euro;|EUR\b|euros?\b)`),
	// data-price="12,50", data-product-price='12.50'
	regexp.MustCompile(`(?i)data-(?:product-)?price\s*=\s*["']([^"']+)["']`),
	// "price": "12.50" or "amount": 12.5 JSON fragments
	regexp.MustCompile(`(?i)"(?:price|amount)"\s*:\s*"?(\d+(?:[.,]\d+)?)"?`),
	// itemprop="price" content="12.50", in either attribute order
	regexp.MustCompile(`(?i)itemprop\s*=\s*["']price["'][^>]*?content\s*=\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)content\s*=\s*["']([^"']+)["'][^>]*?itemprop\s*=\s*["']price["']`),
}

// ExtractGeneric resolves each field from, in order: JSON-LD, Open Graph and product
// meta tags, standard meta tags and <title>, then the JSON-LD price walk and
// the regex price patterns.
func ExtractGeneric(page *Page) domain.ProductFields {
	return domain.MergeFields(ExtractFromJSONLD(page), extractMetaFields(page))
}

// extractMetaFields is ExtractGeneric without the JSON-LD product graph
func extractMetaFields(page *Page) domain.ProductFields {
	openGraph := domain.ProductFields{
		Name:        page.metaContent(`meta[property="og:title"]`),
		ImageURL:    page.resolveURL(page.metaContent(`meta[property="og:image"]`, `meta[property="og:image:secure_url"]`)),
		Description: page.metaContent(`meta[property="og:description"]`),
		Price:       NormalizePrice(page.metaContent(`meta[property="og:price:amount"]`, `meta[property="product:price:amount"]`)),
	}

	standard := domain.ProductFields{
		Name:        page.metaContent(`meta[name="title"]`),
		ImageURL:    page.resolveURL(page.metaContent(`meta[name="image"]`)),
		Description: page.metaContent(`meta[name="description"]`),
	}
	if standard.Name == "" {
		var host string
		if page.URL != nil {
			host = page.URL.Hostname()
		}
		standard.Name = CleanTitle(page.Doc.Find("title").First().Text(), host)
	}

	fields := domain.MergeFields(openGraph, standard)
	if fields.Price == nil {
		fields.Price = FindJSONLDPrice(page)
	}
	if fields.Price == nil {
		fields.Price = ScanPricePatterns(page.HTML)
	}
	return fields
}

// ScanPricePatterns returns the price of the first pattern that yields a positive amount
func ScanPricePatterns(html string) *float64 {
	body := html
	if idx := strings.Index(strings.ToLower(html), "<body"); idx >= 0 {
		body = html[idx:]
	}

	for _, pattern := range PricePatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			if p := normalizePositivePrice(match[1]); p != nil {
				return p
			}
		}
	}
	return nil
}
