package models

import "time"

// TenderStatus is the lifecycle state of a tender.
type TenderStatus string

const (
	TenderDraft       TenderStatus = "DRAFT"       // created, nobody invited yet
	TenderInvited     TenderStatus = "INVITED"     // at least one company invited
	TenderInProgress  TenderStatus = "IN_PROGRESS" // at least one offer received
	TenderAdjudicated TenderStatus = "ADJUDICATED" // awarded, terminal
	TenderCancelled   TenderStatus = "CANCELLED"   // administratively aborted, terminal
)

// tenderTransitions is the closed transition table. Status only ever moves
// forward through this graph; DRAFT may be awarded directly because the
// invitation rule is enforced at offer intake, not here.
var tenderTransitions = map[TenderStatus][]TenderStatus{
	TenderDraft:       {TenderInvited, TenderInProgress, TenderAdjudicated, TenderCancelled},
	TenderInvited:     {TenderInProgress, TenderAdjudicated, TenderCancelled},
	TenderInProgress:  {TenderAdjudicated, TenderCancelled},
	TenderAdjudicated: {},
	TenderCancelled:   {},
}

// ValidTenderStatus reports whether s is a known status value.
func ValidTenderStatus(s TenderStatus) bool {
	switch s {
	case TenderDraft, TenderInvited, TenderInProgress, TenderAdjudicated, TenderCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the tender may move from s to target.
// Re-entering the current state is not a transition; callers treat it as a no-op.
func (s TenderStatus) CanTransition(target TenderStatus) bool {
	for _, next := range tenderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s TenderStatus) Terminal() bool {
	return len(tenderTransitions[s]) == 0
}

// Tender is a call for competitive bids on one project, optionally tagged
// with a CFC budget code.
type Tender struct {
	ID                 string       `json:"id"`
	ProjectID          string       `json:"projectId"`
	Title              string       `json:"title"`
	BudgetCode         *string      `json:"budgetCode,omitempty"`
	Description        string       `json:"description"`
	QuestionDeadline   *time.Time   `json:"questionDeadline,omitempty"`
	OfferDeadline      *time.Time   `json:"offerDeadline,omitempty"`
	TaxRate            *float64     `json:"taxRate,omitempty"`
	Status             TenderStatus `json:"status"`
	OpenClarifications int          `json:"openClarifications"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Invitation records that a company is eligible to bid on a tender.
// Unique per (tender, company); re-inviting is a no-op.
type Invitation struct {
	TenderID  string    `json:"tenderId"`
	CompanyID string    `json:"companyId"`
	InvitedAt time.Time `json:"invitedAt"`
}

// TenderDetail is the full read view of a tender returned by the public
// operations: the tender row plus its invited companies and offers.
type TenderDetail struct {
	Tender
	InvitedCompanyIDs []string `json:"invitedCompanyIds"`
	Offers            []Offer  `json:"offers"`
}

// TenderRequest is the payload for creating a tender. Invited companies may
// be supplied up front, in which case the tender starts out INVITED.
type TenderRequest struct {
	ProjectID         string     `json:"projectId"`
	Title             string     `json:"title"`
	BudgetCode        *string    `json:"budgetCode,omitempty"`
	Description       string     `json:"description"`
	QuestionDeadline  *time.Time `json:"questionDeadline,omitempty"`
	OfferDeadline     *time.Time `json:"offerDeadline,omitempty"`
	TaxRate           *float64   `json:"taxRate,omitempty"`
	InvitedCompanyIDs []string   `json:"invitedCompanyIds,omitempty"`
	ActorID           string     `json:"actorId"`
}

// InviteRequest adds companies to a tender's invited set.
type InviteRequest struct {
	CompanyIDs []string `json:"companyIds"`
	ActorID    string   `json:"actorId"`
}

// ClarificationRequest records one question/answer exchange during the
// bidding period.
type ClarificationRequest struct {
	CompanyID string `json:"companyId"`
	Message   string `json:"message"`
	ActorID   string `json:"actorId"`
}
