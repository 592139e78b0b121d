package models

import "time"

// Project is the slice of the project directory the workflow needs: the
// owning organization and the default tax rate applied when a tender does
// not carry its own.
type Project struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	DefaultTaxRate float64 `json:"defaultTaxRate"`
}

// Contract is the downstream artifact created once per adjudication, for the
// winning company and the winning offer's tax-inclusive total. Never updated
// by this subsystem afterward.
type Contract struct {
	ID         string    `json:"id"`
	TenderID   string    `json:"tenderId"`
	ProjectID  string    `json:"projectId"`
	CompanyID  string    `json:"companyId"`
	Amount     float64   `json:"amount"`
	TaxRate    float64   `json:"taxRate"`
	BudgetCode *string   `json:"budgetCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BudgetAllocation links a contract to an existing project budget entry for
// the full contract amount. Created only when a matching entry exists.
type BudgetAllocation struct {
	ID            string    `json:"id"`
	ContractID    string    `json:"contractId"`
	BudgetEntryID string    `json:"budgetEntryId"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AuditEvent is the one-way record emitted after invite, submit, adjudicate
// and clarification operations. Delivery is the audit collaborator's concern.
type AuditEvent struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	TenderID  string            `json:"tenderId"`
	ActorID   string            `json:"actorId"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Audit actions emitted by the workflow.
const (
	AuditTenderCreated = "tender.created"
	AuditInvited       = "tender.invited"
	AuditOfferReceived = "tender.offer_received"
	AuditAdjudicated   = "tender.adjudicated"
	AuditClarification = "tender.clarification"
	AuditCancelled     = "tender.cancelled"
)
