package validate

import (
	"context"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

const minHTSDigits = 6

// HTSFormatRule requires a tariff code of at least six digits on every line
type HTSFormatRule struct{}

// NewHTSFormatRule creates a new HTS format rule
func NewHTSFormatRule() *HTSFormatRule {
	return &HTSFormatRule{}
}

func (r *HTSFormatRule) Name() string { return "hts_format" }

func (r *HTSFormatRule) Evaluate(_ context.Context, _ *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error) {
	var issues []model.ValidationIssue
	for i, line := range lines {
		if line.HTSCode == "" {
			issues = append(issues, issue("MISSING_HTS", model.SeverityError, linePath(i, "htsCode"), "HTS Code is required"))
			continue
		}
		if len(DigitsOnly(line.HTSCode)) < minHTSDigits {
			issues = append(issues, issue("INVALID_HTS", model.SeverityWarning, linePath(i, "htsCode"),
				"HTS Code %q appears too short (expected %d+ digits)", line.HTSCode, minHTSDigits))
		}
	}
	return issues, nil
}

// DigitsOnly strips everything except 0-9
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
