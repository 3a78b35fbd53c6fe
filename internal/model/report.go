package model

import "time"

// ValidationIssue is one finding emitted by a rule
type ValidationIssue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     string   `json:"path"`           // Locator into the shipment (e.g., "lines[2].htsCode")
	Rule     string   `json:"rule,omitempty"` // Name of the emitting rule
}

// Severity indicates how an issue affects submission
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Report is the outcome of one validation pipeline run
type Report struct {
	RunID       string            `json:"run_id"`
	ShipmentID  string            `json:"shipment_id,omitempty"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
	Issues      []ValidationIssue `json:"issues"`
	Counts      map[Severity]int  `json:"counts"`
	Blocking    bool              `json:"blocking"` // Any error-severity issue present
	Rules       []RuleRun         `json:"rules,omitempty"`
}

// RuleRun records how a single rule behaved during a run
type RuleRun struct {
	Name     string        `json:"name"`
	Issues   int           `json:"issues"`
	Duration time.Duration `json:"duration_ns"`
	Failed   bool          `json:"failed,omitempty"`
}

// Summarize fills Counts and Blocking from Issues
func (r *Report) Summarize() {
	r.Counts = map[Severity]int{
		SeverityError:   0,
		SeverityWarning: 0,
		SeverityInfo:    0,
	}
	r.Blocking = false
	for _, issue := range r.Issues {
		r.Counts[issue.Severity]++
		if issue.Severity == SeverityError {
			r.Blocking = true
		}
	}
}
