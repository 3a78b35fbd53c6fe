// Package validate holds the trade-compliance rule set.
//
// Every rule is an independent, stateless unit: it sees the shipment header and
// its line items and returns zero or more issues. Rules never depend on each
// other having run and never mutate their inputs. Ordering and isolation are the
// pipeline's job, not the rules'.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/customsdoc/internal/model"
)

// Rule is one compliance check
type Rule interface {
	// Name returns the stable rule name used for config and reporting
	Name() string

	// Evaluate inspects the shipment and returns the issues it finds. An error
	// means the rule itself failed, not that the shipment is invalid.
	Evaluate(ctx context.Context, shipment *model.Shipment, lines []model.LineItem) ([]model.ValidationIssue, error)
}

// Options tunes the built-in rules
type Options struct {
	EEIThreshold float64
	Lookup       CodeLookup // nil disables the tariff reference rule
	Timeout      time.Duration
}

// DefaultRules returns the built-in rules in registration order
func DefaultRules(opts Options) []Rule {
	rules := []Rule{
		NewPartiesRule(),
		NewLineItemsRule(),
		NewNumericRule(),
		NewHTSFormatRule(),
	}
	if opts.Lookup != nil {
		rules = append(rules, NewHTSReferenceRule(opts.Lookup, opts.Timeout))
	}
	rules = append(rules,
		NewIncotermRule(),
		NewEEIRule(opts.EEIThreshold),
		NewDangerousGoodsRule(),
	)
	return rules
}

// Filter drops rules whose names appear in disabled, keeping order
func Filter(rules []Rule, disabled []string) []Rule {
	if len(disabled) == 0 {
		return rules
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !skip[r.Name()] {
			out = append(out, r)
		}
	}
	return out
}

func issue(code string, sev model.Severity, path, format string, args ...any) model.ValidationIssue {
	return model.ValidationIssue{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
	}
}

func linePath(idx int, field string) string {
	return fmt.Sprintf("lines[%d].%s", idx, field)
}
