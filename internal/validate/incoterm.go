package validate

import (
	"context"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

// Incoterms lists the recognized Incoterms 2020 codes
var Incoterms = []string{"EXW", "FCA", "FAS", "FOB", "CFR", "CIF", "CPT", "CIP", "DAP", "DPU", "DDP"}

var incotermSet = func() map[string]bool {
	m := make(map[string]bool, len(Incoterms))
	for _, code := range Incoterms {
		m[code] = true
	}
	return m
}()

// IncotermRule requires a recognized Incoterm on the header
type IncotermRule struct{}

// NewIncotermRule creates a new incoterm rule
func NewIncotermRule() *IncotermRule {
	return &IncotermRule{}
}

func (r *IncotermRule) Name() string { return "incoterm" }

// Evaluate compares after trimming and upper-casing, so "fob " is accepted
func (r *IncotermRule) Evaluate(_ context.Context, s *model.Shipment, _ []model.LineItem) ([]model.ValidationIssue, error) {
	code := strings.ToUpper(strings.TrimSpace(s.Incoterm))
	if code == "" {
		return []model.ValidationIssue{
			issue("VAL-001", model.SeverityError, "incoterm", "Incoterm is required"),
		}, nil
	}
	if !incotermSet[code] {
		return []model.ValidationIssue{
			issue("VAL-002", model.SeverityWarning, "incoterm",
				"Incoterm %q is not a recognized Incoterms 2020 code (%s)", s.Incoterm, strings.Join(Incoterms, ", ")),
		}, nil
	}
	return nil, nil
}
