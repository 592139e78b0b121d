package models

// OfferSummary is the per-offer header of a comparison.
type OfferSummary struct {
	OfferID       string      `json:"offerId"`
	CompanyID     string      `json:"companyId"`
	CompanyName   string      `json:"companyName"`
	TotalExclTax  float64     `json:"totalExclTax"`
	TotalInclTax  float64     `json:"totalInclTax"`
	DelayProposal *string     `json:"delayProposal,omitempty"`
	Status        OfferStatus `json:"status"`
}

// ComparisonCell holds one offer's figures for one matrix row. Total is nil
// whenever quantity or unit price is missing.
type ComparisonCell struct {
	Quantity  *float64 `json:"quantity,omitempty"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
	Total     *float64 `json:"total,omitempty"`
}

// ComparisonRow groups the line items sharing one trimmed label across all
// offers. Offers without a matching item have no cell; absence is meaningful.
type ComparisonRow struct {
	Label string                    `json:"label"`
	Cells map[string]ComparisonCell `json:"cells"` // keyed by offer id
}

// Comparison is the read-only cross-offer projection for one tender.
type Comparison struct {
	TenderID string          `json:"tenderId"`
	Offers   []OfferSummary  `json:"offers"`
	Rows     []ComparisonRow `json:"rows"`
}
