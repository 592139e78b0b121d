package services

import (
	"context"
	"strings"

	"github.com/batiflow/tender-service/internal/models"
	"github.com/batiflow/tender-service/internal/repository"
)

// ComparisonService builds the read-only cross-offer projection.
type ComparisonService struct {
	Tenders repository.TenderRepository
	Offers  repository.OfferRepository
}

// NewComparisonService creates a new ComparisonService.
func NewComparisonService(tenders repository.TenderRepository, offers repository.OfferRepository) *ComparisonService {
	return &ComparisonService{Tenders: tenders, Offers: offers}
}

// Compare returns the per-offer summaries and the label-aligned line-item
// matrix for a tender. A tender without offers yields empty lists, not an
// error.
func (s *ComparisonService) Compare(ctx context.Context, tenderID string) (*models.Comparison, error) {
	if _, err := s.Tenders.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}

	offers, err := s.Offers.ListOffers(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	comparison := BuildComparison(tenderID, offers)
	return &comparison, nil
}

// BuildComparison aligns line items across offers by trimmed,
// case-preserving label text. Two items land in the same row exactly when
// their trimmed labels are identical; no fuzzy matching. Offers without an
// item under a label get no cell for that row, and a cell's total stays nil
// when quantity or unit price is missing. When a single offer repeats a
// label, the first item keeps the cell; later duplicates are ignored.
func BuildComparison(tenderID string, offers []models.Offer) models.Comparison {
	comparison := models.Comparison{
		TenderID: tenderID,
		Offers:   []models.OfferSummary{},
		Rows:     []models.ComparisonRow{},
	}

	rowIndex := make(map[string]int)
	for _, offer := range offers {
		comparison.Offers = append(comparison.Offers, models.OfferSummary{
			OfferID:       offer.ID,
			CompanyID:     offer.CompanyID,
			CompanyName:   offer.CompanyName,
			TotalExclTax:  offer.TotalExclTax,
			TotalInclTax:  offer.TotalInclTax,
			DelayProposal: offer.DelayProposal,
			Status:        offer.Status,
		})

		for _, item := range offer.Items {
			label := strings.TrimSpace(item.Label)
			idx, ok := rowIndex[label]
			if !ok {
				idx = len(comparison.Rows)
				rowIndex[label] = idx
				comparison.Rows = append(comparison.Rows, models.ComparisonRow{
					Label: label,
					Cells: make(map[string]models.ComparisonCell),
				})
			}
			if _, taken := comparison.Rows[idx].Cells[offer.ID]; taken {
				continue
			}
			comparison.Rows[idx].Cells[offer.ID] = models.ComparisonCell{
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.Total(),
			}
		}
	}

	return comparison
}
