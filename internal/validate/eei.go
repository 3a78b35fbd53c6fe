package validate

import (
	"context"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

// DefaultEEIThreshold is the per-line value above which an export filing applies
const DefaultEEIThreshold = 2500.0

// Destinations exempt from the export filing requirement
var eeiExemptDestinations = map[string]bool{"CA": true, "US": true}

// EEIRule flags exports that need an electronic export filing but carry
// neither a filing number nor an exemption code.
type EEIRule struct {
	threshold float64
}

// NewEEIRule creates a rule with the given per-line threshold; zero or less
// uses DefaultEEIThreshold.
func NewEEIRule(threshold float64) *EEIRule {
	if threshold <= 0 {
		threshold = DefaultEEIThreshold
	}
	return &EEIRule{threshold: threshold}
}

func (r *EEIRule) Name() string { return "eei" }

func (r *EEIRule) Evaluate(_ context.Context, s *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error) {
	dest := strings.ToUpper(strings.TrimSpace(s.DestinationCountry))
	if eeiExemptDestinations[dest] {
		return nil, nil
	}

	required := false
	for _, line := range lines {
		if model.ValueOr(line.ExtendedValue, 0) > r.threshold {
			required = true
			break
		}
	}
	if !required || strings.TrimSpace(s.AESITN) != "" || strings.TrimSpace(s.EEIExemptionCode) != "" {
		return nil, nil
	}

	return []model.ValidationIssue{
		issue("EEI_REQUIRED", model.SeverityWarning, "header.aesItn",
			"A line exceeds %.0f in value; an AES ITN or EEI exemption code is required", r.threshold),
	}, nil
}
