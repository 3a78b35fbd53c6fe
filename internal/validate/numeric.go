package validate

import (
	"context"
	"math"

	"github.com/ppiankov/customsdoc/internal/model"
)

// Absolute tolerances between summed lines and header totals
const (
	valueTolerance  = 1.00
	weightTolerance = 0.1
)

// NumericRule cross-checks line sums against the header totals
type NumericRule struct{}

// NewNumericRule creates a new numeric consistency rule
func NewNumericRule() *NumericRule {
	return &NumericRule{}
}

func (r *NumericRule) Name() string { return "numeric_consistency" }

// Evaluate treats missing values on either side as 0
func (r *NumericRule) Evaluate(_ context.Context, s *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error) {
	var issues []model.ValidationIssue

	var linesValue, linesWeight float64
	for _, line := range lines {
		linesValue += model.ValueOr(line.ExtendedValue, 0)
		linesWeight += model.ValueOr(line.NetWeightKg, 0)
	}

	headerValue := model.ValueOr(s.TotalCustomsValue, 0)
	if math.Abs(linesValue-headerValue) > valueTolerance {
		issues = append(issues, issue("VALUE_MISMATCH", model.SeverityWarning, "header.totalCustomsValue",
			"Sum of line values (%.2f) does not match header total (%.2f)", linesValue, headerValue))
	}

	headerWeight := model.ValueOr(s.TotalWeightKg, 0)
	if math.Abs(linesWeight-headerWeight) > weightTolerance {
		issues = append(issues, issue("WEIGHT_MISMATCH", model.SeverityWarning, "header.totalWeightKg",
			"Sum of line net weights (%.2f) does not match header total (%.2f)", linesWeight, headerWeight))
	}

	return issues, nil
}
