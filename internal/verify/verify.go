// Package verify cross-checks a finished planning pass. It reads the trip
// context, never writes it, and recomputes every figure it checks instead
// of trusting an agent's self-report.
package verify

import (
	"fmt"
	"math"

	"github.com/tripcraft/tripcraft/internal/agent"
	"github.com/tripcraft/tripcraft/internal/model"
)

// Scoring penalties per issue severity; the score floors at zero.
const (
	errorPenalty   = 20
	warningPenalty = 5
	infoPenalty    = 2
)

// floatTolerance absorbs accumulation noise when comparing recomputed
// totals against the budget agent's report.
const floatTolerance = 0.01

// Issue category labels.
const (
	issueBudget      = "budget"
	issueItinerary   = "itinerary"
	issueConsistency = "consistency"
	issueProvenance  = "provenance"
)

// Verifier scores a completed trip context against the original request.
type Verifier struct {
	// BudgetTolerancePct is how far (in percent) the recomputed total may
	// exceed the requested budget before the overage escalates from a
	// warning to an error.
	BudgetTolerancePct float64
}

// New builds a verifier with the given budget tolerance (percent).
func New(budgetTolerancePct float64) *Verifier {
	if budgetTolerancePct <= 0 {
		budgetTolerancePct = 10
	}
	return &Verifier{BudgetTolerancePct: budgetTolerancePct}
}

// Verify runs every check and produces the scored result.
func (v *Verifier) Verify(req model.TripRequest, tc *model.TripContext) model.VerificationResult {
	var issues []model.Issue
	issues = append(issues, v.checkBudget(req, tc)...)
	issues = append(issues, checkItineraryCoverage(req, tc)...)
	issues = append(issues, checkConsistency(tc)...)
	issues = append(issues, checkProvenance(tc)...)

	score := 100.0
	passed := true
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityError:
			score -= errorPenalty
			passed = false
		case model.SeverityWarning:
			score -= warningPenalty
		case model.SeverityInfo:
			score -= infoPenalty
		}
	}
	if score < 0 {
		score = 0
	}

	result := model.VerificationResult{
		Passed: passed,
		Score:  score,
		Issues: issues,
	}
	errors, warnings, infos := result.CountBySeverity()
	result.Summary = fmt.Sprintf("score %.0f/100: %d errors, %d warnings, %d notes",
		score, errors, warnings, infos)
	return result
}

// checkBudget recomputes the total cost from the category payloads and
// compares it against both the requested budget and the budget agent's own
// report.
func (v *Verifier) checkBudget(req model.TripRequest, tc *model.TripContext) []model.Issue {
	var issues []model.Issue

	var subtotal float64
	if lodging, ok := tc.Lodging(); ok {
		subtotal += lodging.TotalCost
	}
	if dining, ok := tc.Dining(); ok {
		subtotal += dining.EstimatedTotalCost
	}
	if transport, ok := tc.Transport(); ok {
		subtotal += transport.TotalCost
	}
	if dest, ok := tc.Destination(); ok {
		subtotal += agent.ActivitiesCost(dest, req.Travelers)
	}
	// Same estimation rates the budget agent applies.
	total := subtotal * 1.15

	if total > req.Budget {
		overPct := (total - req.Budget) / req.Budget * 100
		issue := model.Issue{
			Category: issueBudget,
			Message: fmt.Sprintf("recomputed cost %.2f exceeds budget %.2f by %.1f%%",
				total, req.Budget, overPct),
			Suggestion: "reduce lodging or transport spend, or raise the budget",
		}
		if overPct > v.BudgetTolerancePct {
			issue.Severity = model.SeverityError
		} else {
			issue.Severity = model.SeverityWarning
		}
		issues = append(issues, issue)
	}

	if budget, ok := tc.Budget(); ok {
		if math.Abs(budget.Total-total) > floatTolerance {
			issues = append(issues, model.Issue{
				Category: issueBudget,
				Severity: model.SeverityWarning,
				Message: fmt.Sprintf("budget agent reported total %.2f but recomputation gives %.2f",
					budget.Total, total),
			})
		}
	}
	return issues
}

// checkItineraryCoverage requires the itinerary to cover each requested
// date exactly once, in order, with no day left implicitly empty.
func checkItineraryCoverage(req model.TripRequest, tc *model.TripContext) []model.Issue {
	itinerary, ok := tc.Itinerary()
	if !ok {
		return []model.Issue{{
			Category: issueItinerary,
			Severity: model.SeverityError,
			Message:  "no itinerary was produced",
		}}
	}

	var issues []model.Issue
	days := req.Days()
	if len(itinerary.Days) != days {
		issues = append(issues, model.Issue{
			Category: issueItinerary,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("itinerary has %d days, trip spans %d", len(itinerary.Days), days),
		})
	}

	seen := make(map[string]bool, len(itinerary.Days))
	for i, day := range itinerary.Days {
		if want := req.StartDate.AddDays(i); i < days && !day.Date.Equal(want) {
			issues = append(issues, model.Issue{
				Category: issueItinerary,
				Severity: model.SeverityError,
				Message:  fmt.Sprintf("day %d dated %s, expected %s", day.DayNumber, day.Date, want),
			})
		}
		if seen[day.Date.String()] {
			issues = append(issues, model.Issue{
				Category: issueItinerary,
				Severity: model.SeverityError,
				Message:  fmt.Sprintf("date %s appears more than once", day.Date),
			})
		}
		seen[day.Date.String()] = true

		if len(day.Activities) == 0 && !day.RestDay {
			issues = append(issues, model.Issue{
				Category: issueItinerary,
				Severity: model.SeverityWarning,
				Message:  fmt.Sprintf("day %d has no activities and is not marked a rest day", day.DayNumber),
			})
		}
	}
	return issues
}

// checkConsistency verifies cross-category claims: the itinerary cannot
// schedule more attraction visits than the destination agent found.
func checkConsistency(tc *model.TripContext) []model.Issue {
	itinerary, ok := tc.Itinerary()
	if !ok {
		return nil
	}
	dest, ok := tc.Destination()
	if !ok {
		return nil
	}

	var scheduled int
	for _, day := range itinerary.Days {
		for _, act := range day.Activities {
			if act.Kind == "attraction" {
				scheduled++
			}
		}
	}
	if scheduled > len(dest.Attractions) {
		return []model.Issue{{
			Category: issueConsistency,
			Severity: model.SeverityError,
			Message: fmt.Sprintf("itinerary schedules %d attractions but only %d were found",
				scheduled, len(dest.Attractions)),
		}}
	}
	return nil
}

// checkProvenance flags every generated-tier category so the traveler knows
// which parts of the plan are unverified.
func checkProvenance(tc *model.TripContext) []model.Issue {
	var issues []model.Issue
	for _, cat := range model.AllCategories() {
		res, ok := tc.Get(cat)
		if !ok || res.Failed {
			continue
		}
		if res.Provenance == model.ProvenanceGenerated {
			issues = append(issues, model.Issue{
				Category:   issueProvenance,
				Severity:   model.SeverityInfo,
				Message:    string(cat) + " data is AI-generated and unverified",
				Suggestion: "confirm " + string(cat) + " details before booking",
			})
		}
	}
	return issues
}
