package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/planachat/backend/internal/domain"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// ExtractFromJSONLD reads product fields from the embedded JSON-LD blocks.
// Malformed blocks are skipped; the first block that yields a usable product wins.
func ExtractFromJSONLD(page *Page) domain.ProductFields {
	var result domain.ProductFields

	page.Doc.Find(jsonLDSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, ok := decodeJSONLD(s.Text())
		if !ok {
			return true
		}

		fields := fieldsFromJSONLD(data, page)
		if fields.Name != "" || fields.Price != nil {
			result = fields
			return false
		}
		return true
	})

	return result
}

// FindJSONLDPrice walks every JSON-LD value for the first price-like key.
// It is the explicit price search used when the product graph itself had no offer.
func FindJSONLDPrice(page *Page) *float64 {
	var found *float64

	page.Doc.Find(jsonLDSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, ok := decodeJSONLD(s.Text())
		if !ok {
			return true
		}
		found = walkForPrice(data)
		return found == nil
	})

	return found
}

func decodeJSONLD(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, false
	}
	return data, true
}

// fieldsFromJSONLD handles a top-level array, an @graph container, and direct
// Product, Offer and AggregateOffer nodes.
func fieldsFromJSONLD(data any, page *Page) domain.ProductFields {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if fields := fieldsFromJSONLD(item, page); fields.Name != "" || fields.Price != nil {
				return fields
			}
		}
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if node, ok := item.(map[string]any); ok && hasType(node, "Product") {
					return productFields(node, page)
				}
			}
		}

		switch {
		case hasType(v, "Product"):
			return productFields(v, page)
		case hasType(v, "AggregateOffer"):
			return domain.ProductFields{Price: aggregateOfferPrice(v)}
		case hasType(v, "Offer"):
			return domain.ProductFields{Price: priceValue(v["price"])}
		}
	}
	return domain.ProductFields{}
}

func productFields(node map[string]any, page *Page) domain.ProductFields {
	return domain.ProductFields{
		Name:        cleanText(stringValue(node["name"])),
		Description: cleanText(stringValue(node["description"])),
		ImageURL:    page.resolveURL(imageValue(node["image"])),
		Price:       offersPrice(node["offers"]),
	}
}

// offersPrice reads offers.price (object) or offers[0].price (array)
func offersPrice(offers any) *float64 {
	switch v := offers.(type) {
	case map[string]any:
		if hasType(v, "AggregateOffer") {
			return aggregateOfferPrice(v)
		}
		return priceValue(v["price"])
	case []any:
		if len(v) == 0 {
			return nil
		}
		if first, ok := v[0].(map[string]any); ok {
			return offersPrice(first)
		}
	}
	return nil
}

// aggregateOfferPrice prefers lowPrice, then highPrice, then price
func aggregateOfferPrice(node map[string]any) *float64 {
	for _, key := range []string{"lowPrice", "highPrice", "price"} {
		if p := priceValue(node[key]); p != nil {
			return p
		}
	}
	return nil
}

func walkForPrice(data any) *float64 {
	switch v := data.(type) {
	case map[string]any:
		for _, key := range []string{"price", "lowPrice"} {
			if p := priceValue(v[key]); p != nil {
				return p
			}
		}
		for _, child := range v {
			if p := walkForPrice(child); p != nil {
				return p
			}
		}
	case []any:
		for _, child := range v {
			if p := walkForPrice(child); p != nil {
				return p
			}
		}
	}
	return nil
}

// hasType reports whether @type equals want, or contains it when @type is an array
func hasType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return typeNameIs(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && typeNameIs(s, want) {
				return true
			}
		}
	}
	return false
}

// typeNameIs matches "Product", "schema:Product" and "https://schema.org/Product"
func typeNameIs(name, want string) bool {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "schema:"), "https://schema.org/")
	name = strings.TrimPrefix(name, "http://schema.org/")
	return strings.EqualFold(name, want)
}

func priceValue(v any) *float64 {
	switch p := v.(type) {
	case float64:
		if p < 0 {
			return nil
		}
		return NormalizePrice(fmt.Sprintf("%.2f", p))
	case string:
		return NormalizePrice(p)
	}
	return nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		if len(s) > 0 {
			return stringValue(s[0])
		}
	}
	return ""
}

// imageValue accepts a URL string, an array of URLs, or an ImageObject
func imageValue(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		for _, item := range img {
			if s := imageValue(item); s != "" {
				return s
			}
		}
	case map[string]any:
		if s := stringValue(img["url"]); s != "" {
			return s
		}
		return stringValue(img["contentUrl"])
	}
	return ""
}
