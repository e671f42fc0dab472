package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tripcraft/tripcraft/internal/model"
)

// Estimation fractions applied to the subtotal of the four main line items.
const (
	localTransitRate = 0.10
	miscRate         = 0.05
)

// budgetAgent aggregates costs from the independent agents' results into a
// breakdown against the requested budget. It performs no retrieval; a
// missing upstream result is replaced by its standard allocation share and
// documented.
type budgetAgent struct{}

// NewBudget builds the budget agent.
func NewBudget() Agent {
	return &budgetAgent{}
}

func (a *budgetAgent) Category() model.Category { return model.CategoryBudget }

func (a *budgetAgent) Execute(_ context.Context, req model.TripRequest, tc *model.TripContext) model.AgentResult {
	start := time.Now()
	alloc := model.AllocateBudget(req.Budget)

	var (
		defaults []string
		prov     model.Provenance
		present  int
	)
	useDefault := func(name string, share float64) float64 {
		defaults = append(defaults, fmt.Sprintf("%s estimated at its standard allocation share (%.0f)", name, share))
		return share
	}
	track := func(cat model.Category) {
		present++
		if res, ok := tc.Get(cat); ok {
			prov = model.WorstProvenance(prov, res.Provenance)
		}
	}

	breakdown := model.BudgetBreakdown{}

	if lodging, ok := tc.Lodging(); ok {
		breakdown.Lodging = lodging.TotalCost
		track(model.CategoryLodging)
	} else {
		breakdown.Lodging = useDefault("lodging", alloc.Lodging)
	}
	if dining, ok := tc.Dining(); ok {
		breakdown.Dining = dining.EstimatedTotalCost
		track(model.CategoryDining)
	} else {
		breakdown.Dining = useDefault("dining", alloc.Dining)
	}
	if transport, ok := tc.Transport(); ok {
		breakdown.Transport = transport.TotalCost
		track(model.CategoryTransport)
	} else {
		breakdown.Transport = useDefault("transport", alloc.Transport)
	}
	if dest, ok := tc.Destination(); ok {
		breakdown.Activities = ActivitiesCost(dest, req.Travelers)
		track(model.CategoryDestination)
	} else {
		breakdown.Activities = useDefault("activities", alloc.Activities)
	}

	subtotal := breakdown.Transport + breakdown.Lodging + breakdown.Dining + breakdown.Activities
	breakdown.LocalTransit = subtotal * localTransitRate
	breakdown.Misc = subtotal * miscRate

	total := breakdown.Total()
	payload := &model.BudgetPayload{
		TotalBudget:    req.Budget,
		Allocation:     alloc,
		Breakdown:      breakdown,
		Total:          total,
		Remaining:      req.Budget - total,
		WithinBudget:   total <= req.Budget,
		UtilizationPct: math.Round(total/req.Budget*1000) / 10,
		DefaultsUsed:   defaults,
	}
	if !payload.WithinBudget {
		payload.Suggestions = downgradeSuggestions(req, payload)
	}

	var warnings []string
	if !payload.WithinBudget {
		warnings = append(warnings, fmt.Sprintf("estimated cost %.0f exceeds budget %.0f", total, req.Budget))
	}

	return model.AgentResult{
		Category:   model.CategoryBudget,
		Payload:    payload,
		Provenance: prov,
		Confidence: confidence(prov, present, 4),
		Warnings:   warnings,
		DurationMS: millisSince(start),
	}
}

// ActivitiesCost sums entrance fees across the party. Shared with the
// verifier, which recomputes the same figure independently of this agent's
// self-report.
func ActivitiesCost(dest *model.DestinationPayload, travelers int) float64 {
	if travelers < 1 {
		travelers = 1
	}
	var fees float64
	for _, a := range dest.Attractions {
		fees += a.EntranceFee
	}
	return fees * float64(travelers)
}

// downgradeSuggestions proposes concrete cuts, respecting what the traveler
// asked for: never suggest dropping below a preference they explicitly set.
func downgradeSuggestions(req model.TripRequest, p *model.BudgetPayload) []string {
	var out []string
	over := p.Total - p.TotalBudget

	switch req.AccommodationOrDefault() {
	case model.AccommodationLuxury:
		out = append(out, "switch accommodation from luxury to mid-range to reduce the lodging spend")
	case model.AccommodationMidRange:
		out = append(out, "switch accommodation from mid-range to budget to reduce the lodging spend")
	}
	if cabinClassFor(req.AccommodationOrDefault()) != "economy" {
		out = append(out, "fly economy instead of "+cabinClassFor(req.AccommodationOrDefault()))
	}
	if p.Breakdown.Activities > over {
		out = append(out, "skip paid attractions in favor of free ones to close the gap")
	}
	if len(out) == 0 {
		out = append(out, fmt.Sprintf("shorten the trip or raise the budget by at least %.0f", over))
	}
	return out
}
