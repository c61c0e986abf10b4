package usecase

import (
	"math"
	"strconv"
	"strings"
)

// NormalizePrice converts heterogeneous price text ("1.299,99 €", "€ 15.50", "29€")
// into a canonical amount. Currency symbols are discarded.
// Returns nil when no finite number can be read.
func NormalizePrice(text string) *float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}

	cleaned := b.String()
	if parts := strings.Split(cleaned, "."); len(parts) > 2 {
		// all separators but the last are thousands separators
		last := len(parts) - 1
		cleaned = strings.Join(parts[:last], "") + "." + parts[last]
	}
	if cleaned == "" || cleaned == "." {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil
	}

	rounded := math.Round(value*100) / 100
	if math.IsInf(rounded, 0) || math.IsNaN(rounded) {
		return nil
	}
	return &rounded
}

// normalizePositivePrice is NormalizePrice restricted to strictly positive amounts.
// Zero prices found by heuristics are placeholders more often than real prices.
func normalizePositivePrice(text string) *float64 {
	p := NormalizePrice(text)
	if p == nil || *p <= 0 {
		return nil
	}
	return p
}
