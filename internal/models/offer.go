package models

import "time"

// OfferStatus is the state of a bidder's submission.
type OfferStatus string

const (
	OfferSubmitted OfferStatus = "SUBMITTED"
	OfferWinner    OfferStatus = "WINNER"
	OfferRejected  OfferStatus = "REJECTED"
)

// Offer is a bidder's structured submission to one tender. An offer can only
// exist if its company holds an invitation for the same tender.
type Offer struct {
	ID            string          `json:"id"`
	TenderID      string          `json:"tenderId"`
	CompanyID     string          `json:"companyId"`
	CompanyName   string          `json:"companyName"`
	TotalExclTax  float64         `json:"totalExclTax"`
	TotalInclTax  float64         `json:"totalInclTax"`
	DelayProposal *string         `json:"delayProposal,omitempty"`
	Status        OfferStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	Items         []OfferLineItem `json:"items"`
}

// OfferLineItem is one priced line of an offer. Quantity and unit price are
// independently optional; bidders submit what they have.
type OfferLineItem struct {
	Label     string   `json:"label"`
	Quantity  *float64 `json:"quantity,omitempty"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
}

// Total returns quantity × unit price, or nil when either side is missing.
// A missing value is never coerced to zero.
func (li OfferLineItem) Total() *float64 {
	if li.Quantity == nil || li.UnitPrice == nil {
		return nil
	}
	total := *li.Quantity * *li.UnitPrice
	return &total
}

// OfferRequest is the payload for submitting an offer to a tender.
type OfferRequest struct {
	CompanyID     string          `json:"companyId"`
	CompanyName   string          `json:"companyName"`
	TotalExclTax  float64         `json:"totalExclTax"`
	TotalInclTax  float64         `json:"totalInclTax"`
	DelayProposal *string         `json:"delayProposal,omitempty"`
	Items         []OfferLineItem `json:"items"`
	ActorID       string          `json:"actorId"`
}

// AdjudicateRequest awards a tender to one offer.
type AdjudicateRequest struct {
	WinningOfferID string `json:"winningOfferId"`
	ActorID        string `json:"actorId"`
}
