package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/validate"
)

// RuleExecutionError is the issue code reported for a rule that failed
const RuleExecutionError = "RULE_EXECUTION_ERROR"

type ruleOutcome struct {
	issues   []model.ValidationIssue
	err      error
	duration time.Duration
}

// Validate runs every enabled rule over the shipment and returns the merged
// report. Rules evaluate concurrently, but issues are always ordered by rule
// registration order and then by emission order within a rule.
//
// A rule that returns an error or panics contributes one RULE_EXECUTION_ERROR
// issue and the other rules still run. With WithFailFast the first failure
// is returned as an error instead and no report is produced.
func (p *Pipeline) Validate(ctx context.Context, shipment *model.Shipment, lines []model.LineItem) (*model.Report, error) {
	if shipment == nil {
		shipment = &model.Shipment{}
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.validate")
	defer span.End()
	span.SetAttributes(
		attribute.String("shipment.id", shipment.ID),
		attribute.Int("lines", len(lines)),
		attribute.Int("rules", len(p.rules)),
	)

	outcomes := make([]ruleOutcome, len(p.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.ruleWorkers)
	for i, rule := range p.rules {
		g.Go(func() error {
			outcomes[i] = p.runRule(gctx, rule, shipment, lines)
			if p.failFast && outcomes[i].err != nil {
				return fmt.Errorf("rule %s: %w", rule.Name(), outcomes[i].err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := &model.Report{
		RunID:       p.newID(),
		ShipmentID:  shipment.ID,
		EvaluatedAt: p.now().UTC(),
		Issues:      []model.ValidationIssue{},
		Rules:       make([]model.RuleRun, 0, len(p.rules)),
	}

	for i, rule := range p.rules {
		out := outcomes[i]
		run := model.RuleRun{Name: rule.Name(), Duration: out.duration}

		if out.err != nil {
			run.Failed = true
			report.Issues = append(report.Issues, model.ValidationIssue{
				Code:     RuleExecutionError,
				Severity: model.SeverityError,
				Message:  fmt.Sprintf("Rule %q failed: %v", rule.Name(), out.err),
				Path:     "rules." + rule.Name(),
				Rule:     rule.Name(),
			})
			p.logger.Warn().Err(out.err).Str("rule", rule.Name()).Msg("rule failed")
		}

		for _, iss := range out.issues {
			if iss.Rule == "" {
				iss.Rule = rule.Name()
			}
			report.Issues = append(report.Issues, iss)
		}
		run.Issues = len(out.issues)
		report.Rules = append(report.Rules, run)
	}

	report.Summarize()
	span.SetAttributes(
		attribute.Int("issues", len(report.Issues)),
		attribute.Bool("blocking", report.Blocking),
	)
	p.logger.Debug().
		Str("run_id", report.RunID).
		Int("issues", len(report.Issues)).
		Bool("blocking", report.Blocking).
		Msg("validation complete")

	return report, nil
}

// runRule evaluates one rule inside its own span, converting a panic into
// an error.
func (p *Pipeline) runRule(ctx context.Context, rule validate.Rule, shipment *model.Shipment, lines []model.LineItem) (out ruleOutcome) {
	ctx, span := p.tracer.Start(ctx, "rule."+rule.Name())
	span.SetAttributes(attribute.String("rule", rule.Name()))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out.issues = nil
			out.err = fmt.Errorf("panic: %v", r)
		}
		out.duration = time.Since(start)

		if out.err != nil {
			span.RecordError(out.err)
			span.SetStatus(codes.Error, out.err.Error())
		}
		span.SetAttributes(attribute.Int("issues", len(out.issues)))
		span.End()

		p.metrics.ObserveRule(rule.Name(), out.duration, out.err != nil)
		for sev, n := range countBySeverity(out.issues) {
			p.metrics.AddIssues(rule.Name(), string(sev), n)
		}
	}()

	out.issues, out.err = rule.Evaluate(ctx, shipment, lines)
	if out.err != nil {
		// A failed rule contributes only its failure issue
		out.issues = nil
	}
	return out
}

func countBySeverity(issues []model.ValidationIssue) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, iss := range issues {
		counts[iss.Severity]++
	}
	return counts
}
