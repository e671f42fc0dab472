package model

// Severity classifies a verification issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding from the verification pass.
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"` // budget, itinerary, provenance, consistency, completeness
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// VerificationResult is the verifier's read-only assessment of a plan.
type VerificationResult struct {
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Issues  []Issue `json:"issues,omitempty"`
	Summary string  `json:"summary"`
}

// CountBySeverity tallies issues per severity level.
func (v VerificationResult) CountBySeverity() (errors, warnings, infos int) {
	for _, is := range v.Issues {
		switch is.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return errors, warnings, infos
}
