package validate

import (
	"context"

	"github.com/ppiankov/customsdoc/internal/model"
)

// PartiesRule requires a shipper and a consignee name
type PartiesRule struct{}

// NewPartiesRule creates a new parties rule
func NewPartiesRule() *PartiesRule {
	return &PartiesRule{}
}

func (r *PartiesRule) Name() string { return "parties" }

// Evaluate resolves each party through PartyRef.ResolvedName, so a legacy
// snapshot counts when the direct name is absent.
func (r *PartiesRule) Evaluate(_ context.Context, s *model.Shipment, _ []model.LineItem) ([]model.ValidationIssue, error) {
	var issues []model.ValidationIssue

	if s.Shipper.ResolvedName() == "" {
		issues = append(issues, issue("MISSING_SHIPPER", model.SeverityError, "header.shipper", "Shipper name is required"))
	}
	if s.Consignee.ResolvedName() == "" {
		issues = append(issues, issue("MISSING_CONSIGNEE", model.SeverityError, "header.consignee", "Consignee name is required"))
	}

	return issues, nil
}
