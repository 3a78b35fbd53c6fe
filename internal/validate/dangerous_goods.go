package validate

import (
	"context"

	"github.com/ppiankov/customsdoc/internal/model"
)

// DangerousGoodsRule warns when DG lines sit under a header not flagged as DG
// and requires UN number and hazard class on every DG line.
type DangerousGoodsRule struct{}

// NewDangerousGoodsRule creates a new dangerous goods rule
func NewDangerousGoodsRule() *DangerousGoodsRule {
	return &DangerousGoodsRule{}
}

func (r *DangerousGoodsRule) Name() string { return "dangerous_goods" }

// Evaluate reports incomplete lines by their index in the full line list
func (r *DangerousGoodsRule) Evaluate(_ context.Context, s *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error) {
	var issues []model.ValidationIssue

	anyDG := false
	for _, line := range lines {
		if line.IsDangerousGoods {
			anyDG = true
			break
		}
	}

	// a DG header over non-DG lines is allowed
	if anyDG && !s.HasDangerousGoods {
		issues = append(issues, issue("DG_MISMATCH", model.SeverityWarning, "header.hasDangerousGoods",
			"Line items include dangerous goods but the shipment is not flagged as dangerous goods"))
	}

	for i, line := range lines {
		if !line.IsDangerousGoods {
			continue
		}
		if line.DGUnNumber == "" || line.DGHazardClass == "" {
			issues = append(issues, issue("DG_INCOMPLETE", model.SeverityError, linePath(i, "dgUnNumber"),
				"Dangerous goods line requires UN number and hazard class"))
		}
	}
	return issues, nil
}
