package validate

import (
	"context"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

// LineItemsRule checks that every line is complete enough to declare
type LineItemsRule struct{}

// NewLineItemsRule creates a new line items rule
func NewLineItemsRule() *LineItemsRule {
	return &LineItemsRule{}
}

func (r *LineItemsRule) Name() string { return "line_items" }

// Evaluate returns a single NO_LINE_ITEMS issue for an empty shipment and skips
// the per-line checks in that case.
func (r *LineItemsRule) Evaluate(_ context.Context, _ *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error) {
	if len(lines) == 0 {
		return []model.ValidationIssue{
			issue("NO_LINE_ITEMS", model.SeverityError, "lines", "Shipment must have at least one line item"),
		}, nil
	}

	var issues []model.ValidationIssue
	for i, line := range lines {
		if strings.TrimSpace(line.Description) == "" {
			issues = append(issues, issue("MISSING_DESCRIPTION", model.SeverityError, linePath(i, "description"),
				"Line item description is required"))
		}
		if line.Quantity == nil || *line.Quantity <= 0 {
			issues = append(issues, issue("INVALID_QUANTITY", model.SeverityError, linePath(i, "quantity"),
				"Quantity must be greater than 0"))
		}
		if line.UnitValue == nil || *line.UnitValue < 0 {
			issues = append(issues, issue("INVALID_VALUE", model.SeverityError, linePath(i, "unitValue"),
				"Unit value is required and cannot be negative"))
		}
	}
	return issues, nil
}
