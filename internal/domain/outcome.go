package domain

// ExtractionOutcome is either a product or a failure, never both
type ExtractionOutcome struct {
	Product *ExtractedProduct `json:"product,omitempty"`
	Failure *ExtractionError  `json:"-"`
}

// Succeeded wraps a product into a successful outcome
func Succeeded(product *ExtractedProduct) ExtractionOutcome {
	return ExtractionOutcome{Product: product}
}

// Failed wraps an extraction error into a failed outcome
func Failed(err *ExtractionError) ExtractionOutcome {
	return ExtractionOutcome{Failure: err}
}

// Success reports whether the outcome carries a product
func (o ExtractionOutcome) Success() bool {
	return o.Product != nil
}

// Reason returns the failure reason, or an empty string on success
func (o ExtractionOutcome) Reason() string {
	if o.Failure == nil {
		return ""
	}
	return o.Failure.Reason
}
