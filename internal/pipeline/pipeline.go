// Package pipeline wires ingestion (file → canonical document) and validation
// (shipment → report) together.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/customsdoc/internal/extract/adapters"
	"github.com/ppiankov/customsdoc/internal/metrics"
	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/validate"
)

const tracerName = "github.com/ppiankov/customsdoc/internal/pipeline"

// Pipeline ingests documents and runs the rule set over shipments
type Pipeline struct {
	adapters    *adapters.Registry
	rules       []validate.Rule
	ruleWorkers int
	failFast    bool
	maxBytes    int64
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	now         func() time.Time
	newID       func() string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger (default: disabled)
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics records ingestion and rule metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer overrides the global otel tracer
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithFailFast aborts Validate on the first rule that errors or panics
// instead of reporting it as a RULE_EXECUTION_ERROR issue.
func WithFailFast() Option {
	return func(p *Pipeline) { p.failFast = true }
}

// WithRuleWorkers bounds how many rules evaluate concurrently
func WithRuleWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.ruleWorkers = n
		}
	}
}

// WithMaxBytes limits the size of ingested files
func WithMaxBytes(n int64) Option {
	return func(p *Pipeline) { p.maxBytes = n }
}

// WithClock replaces time.Now for report timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline over the given adapters and rules. Rules keep their
// slice order in reports.
func New(registry *adapters.Registry, rules []validate.Rule, opts ...Option) *Pipeline {
	p := &Pipeline{
		adapters:    registry,
		rules:       rules,
		ruleWorkers: 4,
		logger:      zerolog.Nop(),
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromConfig builds the standard pipeline: built-in adapters, the default
// rules minus validation.disabled_rules, and the configured limits.
func FromConfig(cfg *model.Config, lookup validate.CodeLookup, opts ...Option) (*Pipeline, error) {
	delim, err := Delimiter(cfg.Ingest.CSVDelimiter)
	if err != nil {
		return nil, err
	}

	rules := validate.Filter(validate.DefaultRules(validate.Options{
		EEIThreshold: cfg.Validation.EEIThreshold,
		Lookup:       lookup,
		Timeout:      cfg.Tariff.Timeout,
	}), cfg.Validation.DisabledRules)

	base := []Option{
		WithRuleWorkers(cfg.Concurrency.RuleWorkers),
		WithMaxBytes(cfg.Ingest.MaxBytes),
	}
	if cfg.Validation.FailFast {
		base = append(base, WithFailFast())
	}

	return New(adapters.NewRegistry(delim), rules, append(base, opts...)...), nil
}

// Delimiter converts the configured delimiter string to a rune. "\t" and
// "tab" both mean a tab.
func Delimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '\n' || r[0] == '\r' || r[0] == '"' {
		return 0, fmt.Errorf("invalid csv delimiter %q", s)
	}
	return r[0], nil
}

// Adapters returns the format registry
func (p *Pipeline) Adapters() *adapters.Registry {
	return p.adapters
}

// Rules returns the enabled rules in registration order
func (p *Pipeline) Rules() []validate.Rule {
	return p.rules
}
