package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/batiflow/tender-service/internal/models"
	"github.com/batiflow/tender-service/internal/repository"
)

// TenderService owns the tender lifecycle: creation, invitations,
// clarifications and administrative cancellation. Status transitions go
// through the closed table in models; nothing here sets a status freely.
type TenderService struct {
	Repo      repository.TenderRepository
	Directory ProjectDirectory
	Audit     AuditRecorder
}

// NewTenderService creates a new TenderService.
func NewTenderService(repo repository.TenderRepository, directory ProjectDirectory, audit AuditRecorder) *TenderService {
	return &TenderService{Repo: repo, Directory: directory, Audit: audit}
}

// CreateTender creates a tender in DRAFT, or INVITED when companies were
// supplied at creation time.
func (s *TenderService) CreateTender(ctx context.Context, req models.TenderRequest) (*models.Tender, error) {
	if req.Title == "" || req.ProjectID == "" {
		return nil, models.NewError(models.KindValidation, "missing required fields: title and projectId")
	}
	for _, companyID := range req.InvitedCompanyIDs {
		if companyID == "" {
			return nil, models.NewError(models.KindValidation, "invited company ids must not be empty")
		}
	}

	if _, err := s.Directory.ResolveProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	status := models.TenderDraft
	if len(req.InvitedCompanyIDs) > 0 {
		status = models.TenderInvited
	}

	tender, err := s.Repo.CreateTender(ctx, req, status)
	if err != nil {
		return nil, err
	}

	s.record(ctx, models.AuditEvent{
		Action:   models.AuditTenderCreated,
		TenderID: tender.ID,
		ActorID:  req.ActorID,
	})
	return tender, nil
}

// GetTender returns the tender detail view.
func (s *TenderService) GetTender(ctx context.Context, tenderID string) (*models.TenderDetail, error) {
	return s.Repo.GetTenderDetail(ctx, tenderID)
}

// ListTenders returns a page of tenders, optionally filtered by status.
func (s *TenderService) ListTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	for _, status := range statuses {
		if !models.ValidTenderStatus(models.TenderStatus(status)) {
			return nil, models.NewError(models.KindValidation, "unsupported tender status: %s", status)
		}
	}
	return s.Repo.ListTenders(ctx, limit, offset, statuses)
}

// Invite adds companies to the tender's invited set. Overlapping or repeated
// calls are idempotent: only the set difference is persisted and audited,
// and the DRAFT to INVITED transition fires only when the difference is
// non-empty.
func (s *TenderService) Invite(ctx context.Context, tenderID string, req models.InviteRequest) (*models.TenderDetail, error) {
	if len(req.CompanyIDs) == 0 {
		return nil, models.NewError(models.KindValidation, "companyIds must not be empty")
	}
	for _, companyID := range req.CompanyIDs {
		if companyID == "" {
			return nil, models.NewError(models.KindValidation, "company ids must not be empty")
		}
	}

	tender, err := s.Repo.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if tender.Status.Terminal() {
		return nil, models.NewError(models.KindValidation, "tender %s is %s and no longer accepts invitations", tenderID, tender.Status)
	}

	added, err := s.Repo.InviteCompanies(ctx, tenderID, req.CompanyIDs)
	if err != nil {
		return nil, err
	}

	if len(added) > 0 && tender.Status == models.TenderDraft {
		// A concurrent invite or submit may already have advanced the
		// status; a false return is the no-op case, not an error.
		if _, err := s.Repo.TransitionStatus(ctx, tenderID, []models.TenderStatus{models.TenderDraft}, models.TenderInvited); err != nil {
			return nil, err
		}
	}

	for _, companyID := range added {
		s.record(ctx, models.AuditEvent{
			Action:   models.AuditInvited,
			TenderID: tenderID,
			ActorID:  req.ActorID,
			Metadata: map[string]string{"companyId": companyID},
		})
	}

	return s.Repo.GetTenderDetail(ctx, tenderID)
}

// AddClarification appends one question/answer exchange and bumps the open
// counter. Clarifications stay possible regardless of tender status.
func (s *TenderService) AddClarification(ctx context.Context, tenderID string, req models.ClarificationRequest) (*models.Tender, error) {
	if req.Message == "" {
		return nil, models.NewError(models.KindValidation, "message must not be empty")
	}

	tender, err := s.Repo.AddClarification(ctx, tenderID, req.CompanyID, req.Message)
	if err != nil {
		return nil, err
	}

	s.record(ctx, models.AuditEvent{
		Action:   models.AuditClarification,
		TenderID: tenderID,
		ActorID:  req.ActorID,
		Metadata: map[string]string{"companyId": req.CompanyID},
	})
	return tender, nil
}

// CancelTender administratively aborts a non-terminal tender. Cancelling an
// already-cancelled tender is a no-op.
func (s *TenderService) CancelTender(ctx context.Context, tenderID, actorID string) (*models.Tender, error) {
	tender, err := s.Repo.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if tender.Status == models.TenderCancelled {
		return tender, nil
	}
	if !tender.Status.CanTransition(models.TenderCancelled) {
		return nil, models.NewError(models.KindValidation, "tender %s is %s and cannot be cancelled", tenderID, tender.Status)
	}

	moved, err := s.Repo.TransitionStatus(ctx, tenderID,
		[]models.TenderStatus{models.TenderDraft, models.TenderInvited, models.TenderInProgress},
		models.TenderCancelled)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, models.NewError(models.KindAlreadyAdjudicated, "tender %s reached a terminal state first", tenderID)
	}

	s.record(ctx, models.AuditEvent{
		Action:   models.AuditCancelled,
		TenderID: tenderID,
		ActorID:  actorID,
	})

	return s.Repo.GetTender(ctx, tenderID)
}

// record emits an audit event; failures are logged, never propagated.
func (s *TenderService) record(ctx context.Context, event models.AuditEvent) {
	if err := s.Audit.Record(ctx, event); err != nil {
		zap.L().Warn("audit record failed",
			zap.String("action", event.Action),
			zap.String("tenderId", event.TenderID),
			zap.Error(err))
	}
}
