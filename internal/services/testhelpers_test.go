package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/batiflow/tender-service/internal/models"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeTenderRepo is an in-memory TenderRepository.
type fakeTenderRepo struct {
	tenders        map[string]*models.Tender
	invitations    map[string]map[string]bool
	inviteOrder    map[string][]string
	offersByTender map[string][]models.Offer
	seq            int
}

func newFakeTenderRepo() *fakeTenderRepo {
	return &fakeTenderRepo{
		tenders:        make(map[string]*models.Tender),
		invitations:    make(map[string]map[string]bool),
		inviteOrder:    make(map[string][]string),
		offersByTender: make(map[string][]models.Offer),
	}
}

func (f *fakeTenderRepo) CreateTender(_ context.Context, req models.TenderRequest, status models.TenderStatus) (*models.Tender, error) {
	f.seq++
	now := time.Now().UTC()
	tender := &models.Tender{
		ID:               fmt.Sprintf("t-%d", f.seq),
		ProjectID:        req.ProjectID,
		Title:            req.Title,
		BudgetCode:       req.BudgetCode,
		Description:      req.Description,
		QuestionDeadline: req.QuestionDeadline,
		OfferDeadline:    req.OfferDeadline,
		TaxRate:          req.TaxRate,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.tenders[tender.ID] = tender
	for _, companyID := range req.InvitedCompanyIDs {
		f.addInvitation(tender.ID, companyID)
	}
	copied := *tender
	return &copied, nil
}

func (f *fakeTenderRepo) addInvitation(tenderID, companyID string) bool {
	if f.invitations[tenderID] == nil {
		f.invitations[tenderID] = make(map[string]bool)
	}
	if f.invitations[tenderID][companyID] {
		return false
	}
	f.invitations[tenderID][companyID] = true
	f.inviteOrder[tenderID] = append(f.inviteOrder[tenderID], companyID)
	return true
}

func (f *fakeTenderRepo) GetTender(_ context.Context, tenderID string) (*models.Tender, error) {
	tender, ok := f.tenders[tenderID]
	if !ok {
		return nil, models.NewError(models.KindNotFound, "tender %s not found", tenderID)
	}
	copied := *tender
	return &copied, nil
}

func (f *fakeTenderRepo) GetTenderDetail(ctx context.Context, tenderID string) (*models.TenderDetail, error) {
	tender, err := f.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	return &models.TenderDetail{
		Tender:            *tender,
		InvitedCompanyIDs: append([]string(nil), f.inviteOrder[tenderID]...),
		Offers:            append([]models.Offer(nil), f.offersByTender[tenderID]...),
	}, nil
}

func (f *fakeTenderRepo) ListTenders(_ context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	var tenders []models.Tender
	for _, tender := range f.tenders {
		tenders = append(tenders, *tender)
	}
	return tenders, nil
}

func (f *fakeTenderRepo) InviteCompanies(_ context.Context, tenderID string, companyIDs []string) ([]string, error) {
	var added []string
	for _, companyID := range companyIDs {
		if f.addInvitation(tenderID, companyID) {
			added = append(added, companyID)
		}
	}
	return added, nil
}

func (f *fakeTenderRepo) HasInvitation(_ context.Context, tenderID, companyID string) (bool, error) {
	return f.invitations[tenderID][companyID], nil
}

func (f *fakeTenderRepo) TransitionStatus(_ context.Context, tenderID string, from []models.TenderStatus, to models.TenderStatus) (bool, error) {
	tender, ok := f.tenders[tenderID]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if tender.Status == s {
			tender.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTenderRepo) AddClarification(_ context.Context, tenderID, companyID, message string) (*models.Tender, error) {
	tender, ok := f.tenders[tenderID]
	if !ok {
		return nil, models.NewError(models.KindNotFound, "tender %s not found", tenderID)
	}
	tender.OpenClarifications++
	copied := *tender
	return &copied, nil
}

// fakeOfferRepo is an in-memory OfferRepository. It shares the tender repo
// so a submit bumps the tender status the way the SQL implementation does.
type fakeOfferRepo struct {
	tenders *fakeTenderRepo
	offers  map[string]*models.Offer
	seq     int
}

func newFakeOfferRepo(tenders *fakeTenderRepo) *fakeOfferRepo {
	return &fakeOfferRepo{tenders: tenders, offers: make(map[string]*models.Offer)}
}

func (f *fakeOfferRepo) SubmitOffer(_ context.Context, tenderID string, req models.OfferRequest) (*models.Offer, error) {
	f.seq++
	offer := &models.Offer{
		ID:            fmt.Sprintf("o-%d", f.seq),
		TenderID:      tenderID,
		CompanyID:     req.CompanyID,
		CompanyName:   req.CompanyName,
		TotalExclTax:  req.TotalExclTax,
		TotalInclTax:  req.TotalInclTax,
		DelayProposal: req.DelayProposal,
		Status:        models.OfferSubmitted,
		CreatedAt:     time.Now().UTC(),
		Items:         req.Items,
	}
	f.offers[offer.ID] = offer
	f.tenders.offersByTender[tenderID] = append(f.tenders.offersByTender[tenderID], *offer)
	if tender, ok := f.tenders.tenders[tenderID]; ok {
		if tender.Status == models.TenderDraft || tender.Status == models.TenderInvited {
			tender.Status = models.TenderInProgress
		}
	}
	copied := *offer
	return &copied, nil
}

func (f *fakeOfferRepo) GetOffer(_ context.Context, offerID string) (*models.Offer, error) {
	offer, ok := f.offers[offerID]
	if !ok {
		return nil, models.NewError(models.KindInvalidOffer, "offer %s not found", offerID)
	}
	copied := *offer
	return &copied, nil
}

func (f *fakeOfferRepo) ListOffers(_ context.Context, tenderID string) ([]models.Offer, error) {
	return append([]models.Offer(nil), f.tenders.offersByTender[tenderID]...), nil
}

// fakeDirectory is an in-memory ProjectDirectory.
type fakeDirectory struct {
	projects map[string]*models.Project
	budgets  map[string]string // projectID/code -> entry id
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		projects: make(map[string]*models.Project),
		budgets:  make(map[string]string),
	}
}

func (f *fakeDirectory) ResolveProject(_ context.Context, projectID string) (*models.Project, error) {
	project, ok := f.projects[projectID]
	if !ok {
		return nil, models.NewError(models.KindNotFound, "project %s not found", projectID)
	}
	copied := *project
	return &copied, nil
}

func (f *fakeDirectory) ResolveBudgetEntry(_ context.Context, projectID, budgetCode string) (*string, error) {
	entryID, ok := f.budgets[projectID+"/"+budgetCode]
	if !ok {
		return nil, nil
	}
	return &entryID, nil
}

// fakeAudit records audit events.
type fakeAudit struct {
	events  []models.AuditEvent
	failErr error
}

func (f *fakeAudit) Record(_ context.Context, event models.AuditEvent) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAudit) byAction(action string) []models.AuditEvent {
	var matched []models.AuditEvent
	for _, event := range f.events {
		if event.Action == action {
			matched = append(matched, event)
		}
	}
	return matched
}

// fakeAwardRepo delegates to a callback so tests control the outcome.
type fakeAwardRepo struct {
	onAdjudicate func(tenderID, winningOfferID, actorID string) (*models.Contract, error)
	calls        int
}

func (f *fakeAwardRepo) Adjudicate(_ context.Context, tenderID, winningOfferID, actorID string) (*models.Contract, error) {
	f.calls++
	return f.onAdjudicate(tenderID, winningOfferID, actorID)
}
