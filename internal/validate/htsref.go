package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/customsdoc/internal/model"
)

// DefaultLookupTimeout bounds each tariff lookup when no timeout is configured
const DefaultLookupTimeout = 2 * time.Second

// CodeLookup answers whether a tariff code is known. Implementations live in
// the tariff package.
type CodeLookup interface {
	Contains(ctx context.Context, code string) (bool, error)
}

// HTSReferenceRule checks line tariff codes against a reference registry
type HTSReferenceRule struct {
	lookup  CodeLookup
	timeout time.Duration
}

// NewHTSReferenceRule creates a rule backed by lookup. A zero timeout uses
// DefaultLookupTimeout.
func NewHTSReferenceRule(lookup CodeLookup, timeout time.Duration) *HTSReferenceRule {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &HTSReferenceRule{lookup: lookup, timeout: timeout}
}

func (r *HTSReferenceRule) Name() string { return "hts_reference" }

// Evaluate never fails: a lookup error or timeout degrades to "unknown".
// Missing codes are left to the format rule.
func (r *HTSReferenceRule) Evaluate(ctx context.Context, _ *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error) {
	var issues []model.ValidationIssue
	results := make(map[string]lookupResult)

	for i, line := range lines {
		if line.HTSCode == "" {
			continue
		}

		res, seen := results[line.HTSCode]
		if !seen {
			res = r.contains(ctx, line.HTSCode)
			results[line.HTSCode] = res
		}

		switch {
		case res.err != nil:
			issues = append(issues, issue("HTS_UNKNOWN", model.SeverityWarning, linePath(i, "htsCode"),
				"HTS Code %q could not be verified: %v", line.HTSCode, res.err))
		case !res.known:
			issues = append(issues, issue("HTS_UNKNOWN", model.SeverityWarning, linePath(i, "htsCode"),
				"HTS Code %q not found in reference registry", line.HTSCode))
		}
	}
	return issues, nil
}

type lookupResult struct {
	known bool
	err   error
}

func (r *HTSReferenceRule) contains(ctx context.Context, code string) lookupResult {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	known, err := r.lookup.Contains(lookupCtx, code)
	if err != nil {
		return lookupResult{err: fmt.Errorf("lookup failed: %w", err)}
	}
	return lookupResult{known: known}
}
