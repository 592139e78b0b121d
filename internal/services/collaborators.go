package services

import (
	"context"

	"github.com/batiflow/tender-service/internal/models"
)

// ProjectDirectory resolves projects and their budget entries. The workflow
// only needs the owning organization, the default tax rate and budget-entry
// lookups; everything else about projects belongs to other subsystems.
type ProjectDirectory interface {
	ResolveProject(ctx context.Context, projectID string) (*models.Project, error)
	ResolveBudgetEntry(ctx context.Context, projectID, budgetCode string) (*string, error)
}

// AuditRecorder receives one-way audit events after invite, submit,
// adjudicate and clarification operations. Storage and delivery are the
// collaborator's concern; a failed record never fails the operation that
// emitted it (the adjudication audit entry is the exception, written inside
// the award transaction).
type AuditRecorder interface {
	Record(ctx context.Context, event models.AuditEvent) error
}
