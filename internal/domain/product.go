package domain

import "strings"

// DefaultProductName is used when no extraction stage found a product name
const DefaultProductName = "Produit sans nom"

// ExtractedProduct represents the normalized product record returned by the extraction pipeline
type ExtractedProduct struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"` // nil when no strategy found a price
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	Link        string   `json:"link"`   // the URL the caller asked for
	Source      string   `json:"source"` // hostname without "www."
}

// HasPrice reports whether a price was extracted
func (p *ExtractedProduct) HasPrice() bool {
	return p != nil && p.Price != nil
}

// ProductFields is a partial product record produced by one extraction stage.
// Empty strings and a nil Price mean "not found".
type ProductFields struct {
	Name        string
	Price       *float64
	ImageURL    string
	Description string
}

// IsEmpty reports whether no field was found
func (f ProductFields) IsEmpty() bool {
	return f.Name == "" && f.Price == nil && f.ImageURL == "" && f.Description == ""
}

// Merge fills the fields still empty in f with the values of later.
// Fields already set in f are never overwritten.
func (f ProductFields) Merge(later ProductFields) ProductFields {
	if f.Name == "" {
		f.Name = later.Name
	}
	if f.Price == nil && later.Price != nil {
		price := *later.Price
		f.Price = &price
	}
	if f.ImageURL == "" {
		f.ImageURL = later.ImageURL
	}
	if f.Description == "" {
		f.Description = later.Description
	}
	return f
}

// MergeFields folds stages left to right: the first stage that set a field wins
func MergeFields(stages ...ProductFields) ProductFields {
	var merged ProductFields
	for _, stage := range stages {
		merged = merged.Merge(stage)
	}
	return merged
}

// SourceFromHost strips the "www." prefix and lower-cases a hostname
func SourceFromHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// Relay represents a third-party URL-relaying endpoint.
// URLTemplate contains a "{url}" placeholder replaced by the query-escaped target URL.
type Relay struct {
	Name        string `json:"name"`
	URLTemplate string `json:"urlTemplate"`
}

// RelayResponse is the raw response returned by a relay
type RelayResponse struct {
	StatusCode int
	Body       string
}

// ExtractRequest represents a product extraction request
type ExtractRequest struct {
	URL   string `json:"url" binding:"required"`
	Fresh bool   `json:"fresh,omitempty"` // bypass cached results (price recheck)
}
