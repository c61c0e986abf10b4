package usecase

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/planachat/backend/internal/domain"
)

// SiteExtractor extracts product fields from a page of one known retailer
type SiteExtractor interface {
	Extract(page *Page) domain.ProductFields
}

// SiteExtractorFunc adapts a plain function to the SiteExtractor interface
type SiteExtractorFunc func(page *Page) domain.ProductFields

// Extract calls f(page)
func (f SiteExtractorFunc) Extract(page *Page) domain.ProductFields {
	return f(page)
}

// ImageSelector locates an image element and the attributes holding its URL, in preference order
type ImageSelector struct {
	Selector string
	Attrs    []string
}

// SplitPriceSelector locates a price rendered as separate integer and fraction nodes
type SplitPriceSelector struct {
	Whole    string
	Fraction string
}

// SelectorRecipe is a SiteExtractor driven by ordered CSS selector candidates per field.
// The first candidate with a non-empty value wins, which tolerates markup drift.
type SelectorRecipe struct {
	Title       []string
	SplitPrice  *SplitPriceSelector
	Price       []string
	Image       []ImageSelector
	Description []string
}

// itemPropPriceSelector is the fallback used by every recipe when its own price selectors miss
const itemPropPriceSelector = `meta[itemprop="price"], [itemprop="price"][content]`

// Extract implements SiteExtractor
func (r SelectorRecipe) Extract(page *Page) domain.ProductFields {
	fields := domain.ProductFields{
		Name:        firstText(page.Doc, r.Title),
		Description: firstText(page.Doc, r.Description),
		ImageURL:    page.resolveURL(firstImage(page.Doc, r.Image)),
	}

	if r.SplitPrice != nil {
		fields.Price = splitPrice(page.Doc, *r.SplitPrice)
	}
	if fields.Price == nil {
		fields.Price = firstPrice(page.Doc, r.Price)
	}
	if fields.Price == nil {
		fields.Price = firstPrice(page.Doc, []string{itemPropPriceSelector})
	}
	return fields
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = cleanText(s.Text())
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func firstImage(doc *goquery.Document, selectors []ImageSelector) string {
	for _, candidate := range selectors {
		var found string
		doc.Find(candidate.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range candidate.Attrs {
				if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
					found = strings.TrimSpace(v)
					return false
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// firstPrice reads content, then data-price, then the element text of each candidate
func firstPrice(doc *goquery.Document, selectors []string) *float64 {
	for _, selector := range selectors {
		var found *float64
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range []string{"content", "data-price"} {
				if v, ok := s.Attr(attr); ok {
					if found = normalizePositivePrice(v); found != nil {
						return false
					}
				}
			}
			found = normalizePositivePrice(s.Text())
			return found == nil
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// splitPrice joins "1 299," and "99" nodes into "1299.99" before normalization
func splitPrice(doc *goquery.Document, sel SplitPriceSelector) *float64 {
	whole := digitsOnly(doc.Find(sel.Whole).First().Text())
	if whole == "" {
		return nil
	}
	fraction := digitsOnly(doc.Find(sel.Fraction).First().Text())
	if fraction == "" {
		return normalizePositivePrice(whole)
	}
	return normalizePositivePrice(whole + "." + fraction)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type siteEntry struct {
	key       string
	extractor SiteExtractor
}

// SiteRegistry maps hostname tokens to site extractors.
// Lookup is a substring match on the lower-cased host; the first registered match wins.
type SiteRegistry struct {
	entries []siteEntry
}

// NewSiteRegistry creates an empty registry
func NewSiteRegistry() *SiteRegistry {
	return &SiteRegistry{}
}

// Register appends an extractor for hosts containing key
func (r *SiteRegistry) Register(key string, extractor SiteExtractor) {
	r.entries = append(r.entries, siteEntry{key: strings.ToLower(key), extractor: extractor})
}

// Lookup returns the extractor registered for host
func (r *SiteRegistry) Lookup(host string) (string, SiteExtractor, bool) {
	host = strings.ToLower(host)
	if host == "" {
		return "", nil, false
	}
	for _, entry := range r.entries {
		if strings.Contains(host, entry.key) {
			return entry.key, entry.extractor, true
		}
	}
	return "", nil, false
}

// ResolveSiteKey returns the registry key matching the hostname of rawURL
func (r *SiteRegistry) ResolveSiteKey(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	key, _, ok := r.Lookup(u.Hostname())
	return key, ok
}

// Keys lists the registered keys in lookup order
func (r *SiteRegistry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		keys = append(keys, entry.key)
	}
	return keys
}

// DefaultSiteRegistry returns the recipes for the supported French retailers
func DefaultSiteRegistry() *SiteRegistry {
	r := NewSiteRegistry()

	r.Register("amazon", SelectorRecipe{
		Title:      []string{"#productTitle", "#title", "h1"},
		SplitPrice: &SplitPriceSelector{Whole: ".a-price-whole", Fraction: ".a-price-fraction"},
		Price:      []string{".a-price .a-offscreen", "#priceblock_ourprice", "#priceblock_dealprice"},
		Image: []ImageSelector{
			{Selector: "#landingImage", Attrs: []string{"data-old-hires", "src"}},
			{Selector: "#imgBlkFront", Attrs: []string{"src"}},
			{Selector: "#main-image", Attrs: []string{"src"}},
		},
		Description: []string{"#feature-bullets", "#productDescription"},
	})

	r.Register("cdiscount", SelectorRecipe{
		Title: []string{`h1[itemprop="name"]`, ".fpDesCol h1", "h1"},
		Price: []string{".fpPrice", ".c-price", `span[itemprop="price"]`},
		Image: []ImageSelector{
			{Selector: "#picture0", Attrs: []string{"src"}},
			{Selector: ".fpMainImg img", Attrs: []string{"src", "data-src"}},
			{Selector: `img[itemprop="image"]`, Attrs: []string{"src"}},
		},
		Description: []string{".fpDesc", `[itemprop="description"]`},
	})

	r.Register("fnac", SelectorRecipe{
		Title: []string{".f-productHeader-Title", "h1.f-productHeader__heading", "h1"},
		Price: []string{".f-faPriceBox__price.userPrice", ".f-faPriceBox__price", ".f-priceBox-price"},
		Image: []ImageSelector{
			{Selector: ".f-productMedias__viewItem--main img", Attrs: []string{"src", "data-src"}},
			{Selector: ".f-productVisuals-mainMedia", Attrs: []string{"src"}},
		},
	})

	r.Register("darty", SelectorRecipe{
		Title: []string{".product_head .product_name", "h1.product-title", "h1"},
		Price: []string{".product_price .darty_prix", ".darty_prix", "[data-price]"},
		Image: []ImageSelector{
			{Selector: ".product_visual img", Attrs: []string{"src", "data-src"}},
			{Selector: "#darty_product_main_picture img", Attrs: []string{"src"}},
		},
	})

	r.Register("boulanger", SelectorRecipe{
		Title: []string{"h1.product-title__main", ".product-title h1", "h1"},
		Price: []string{".price__amount", ".fix-price", "p.price"},
		Image: []ImageSelector{
			{Selector: ".product-gallery img", Attrs: []string{"src", "data-src"}},
			{Selector: "img.product-image", Attrs: []string{"src"}},
		},
	})

	r.Register("leroymerlin", SelectorRecipe{
		Title: []string{"h1.a-productName", `h1[data-testid="product-name"]`, "h1"},
		Price: []string{`[data-testid="product-price"]`, ".m-price__price", ".js-main-price"},
		Image: []ImageSelector{
			{Selector: ".m-product-media img", Attrs: []string{"src", "data-src"}},
			{Selector: `img[data-testid="product-image"]`, Attrs: []string{"src"}},
		},
	})

	r.Register("ikea", SelectorRecipe{
		Title:      []string{".pip-header-section__title--big", "h1"},
		SplitPrice: &SplitPriceSelector{Whole: ".pip-temp-price__integer", Fraction: ".pip-temp-price__decimal"},
		Price:      []string{".pip-price__integer", ".pip-temp-price"},
		Image: []ImageSelector{
			{Selector: ".pip-media-grid__media-image img", Attrs: []string{"src"}},
			{Selector: ".pip-image", Attrs: []string{"src"}},
		},
		Description: []string{".pip-header-section__description-text"},
	})

	r.Register("decathlon", SelectorRecipe{
		Title: []string{"h1.product-name", `h1[data-testid="product-title"]`, "h1"},
		Price: []string{".vtmn-price", ".prc__active-price", `[data-testid="price"]`},
		Image: []ImageSelector{
			{Selector: ".product-main-image img", Attrs: []string{"src", "data-src"}},
			{Selector: "img.swiper-slide-image", Attrs: []string{"src"}},
		},
	})

	r.Register("manomano", SelectorRecipe{
		Title: []string{`h1[data-testid="product-title"]`, "h1"},
		Price: []string{`[data-testid="main-price-container"]`, `[data-testid="price-main"]`},
		Image: []ImageSelector{
			{Selector: `img[data-testid="main-image"]`, Attrs: []string{"src"}},
		},
	})

	r.Register("castorama", SelectorRecipe{
		Title: []string{"h1.product-title", `h1[data-test-id="product-title"]`, "h1"},
		Price: []string{`[data-test-id="product-price"]`, ".product-price"},
		Image: []ImageSelector{
			{Selector: `img[data-test-id="product-image"]`, Attrs: []string{"src"}},
			{Selector: ".product-image img", Attrs: []string{"src", "data-src"}},
		},
	})

	return r
}
