package agent

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/retrieval"
)

// diningMaxOptions caps how many restaurants the dining agent reports,
// after cuisine diversification.
const diningMaxOptions = 6

const mealsPerDay = 3

// dietaryConflicts maps a restriction to keywords that disqualify a
// restaurant outright unless it explicitly lists the restriction among its
// dietary options.
var dietaryConflicts = map[string][]string{
	"vegetarian": {"steakhouse", "bbq", "barbecue", "butcher"},
	"vegan":      {"steakhouse", "bbq", "barbecue", "butcher", "cheese", "creamery"},
	"halal":      {"pork", "bbq", "brewery"},
	"kosher":     {"pork", "shellfish", "seafood"},
}

// diningAgent picks a diverse, dietary-compatible set of restaurants and
// estimates the trip's food spend.
type diningAgent struct {
	retriever Retriever
}

// NewDining builds the dining agent.
func NewDining(r Retriever) Agent {
	return &diningAgent{retriever: r}
}

func (a *diningAgent) Category() model.Category { return model.CategoryDining }

func (a *diningAgent) Execute(ctx context.Context, req model.TripRequest, _ *model.TripContext) model.AgentResult {
	start := time.Now()

	res, err := a.retriever.Retrieve(ctx, retrieval.Query{
		Category:  model.CategoryDining,
		City:      req.Destination,
		Travelers: req.Travelers,
	})
	if err != nil {
		zap.L().Warn("dining agent failed", zap.String("city", req.Destination), zap.Error(err))
		return model.FailedResult(model.CategoryDining, err, millisSince(start))
	}

	all := res.Payload.([]model.Restaurant)
	warnings := res.Caveats

	filtered := filterDietary(all, req.Preferences.DietaryRestrictions)
	if len(filtered) == 0 {
		// Better an incompatible list with a loud warning than nothing.
		filtered = all
		warnings = append(warnings, "no restaurants satisfy the dietary restrictions; showing unfiltered options")
	}

	selected := diversifyByCuisine(filtered, diningMaxOptions)

	var avg float64
	for _, r := range selected {
		avg += r.AvgCostPerPerson
	}
	avg /= float64(len(selected))

	payload := &model.DiningPayload{
		Restaurants:        selected,
		EstimatedTotalCost: avg * mealsPerDay * float64(req.Days()) * float64(req.Travelers),
	}

	return model.AgentResult{
		Category:   model.CategoryDining,
		Payload:    payload,
		Provenance: res.Provenance,
		Confidence: confidence(res.Provenance, len(selected), diningMaxOptions),
		Warnings:   warnings,
		DurationMS: millisSince(start),
	}
}

// filterDietary keeps restaurants compatible with every restriction: either
// the restaurant lists the restriction as a dietary option, or nothing about
// it matches a conflict keyword.
func filterDietary(restaurants []model.Restaurant, restrictions []string) []model.Restaurant {
	if len(restrictions) == 0 {
		return restaurants
	}
	out := make([]model.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if compatibleWithAll(r, restrictions) {
			out = append(out, r)
		}
	}
	return out
}

func compatibleWithAll(r model.Restaurant, restrictions []string) bool {
	for _, restriction := range restrictions {
		key := strings.ToLower(strings.TrimSpace(restriction))
		if listsOption(r, key) {
			continue
		}
		for _, kw := range dietaryConflicts[key] {
			if containsFold(r.Cuisine, kw) || containsFold(r.Name, kw) || anyContainsFold(r.Specialties, kw) {
				return false
			}
		}
	}
	return true
}

func listsOption(r model.Restaurant, restriction string) bool {
	for _, opt := range r.DietaryOptions {
		if strings.EqualFold(strings.TrimSpace(opt), restriction) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

func anyContainsFold(ss []string, sub string) bool {
	for _, s := range ss {
		if containsFold(s, sub) {
			return true
		}
	}
	return false
}

// diversifyByCuisine picks the best-rated restaurant of each cuisine first,
// then backfills with the remaining best-rated until max.
func diversifyByCuisine(restaurants []model.Restaurant, max int) []model.Restaurant {
	sorted := make([]model.Restaurant, len(restaurants))
	copy(sorted, restaurants)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })

	selected := make([]model.Restaurant, 0, max)
	seen := make(map[string]bool)
	picked := make(map[string]bool)

	for _, r := range sorted {
		if len(selected) == max {
			return selected
		}
		cuisine := strings.ToLower(r.Cuisine)
		if seen[cuisine] {
			continue
		}
		seen[cuisine] = true
		picked[r.Name] = true
		selected = append(selected, r)
	}
	for _, r := range sorted {
		if len(selected) == max {
			break
		}
		if !picked[r.Name] {
			picked[r.Name] = true
			selected = append(selected, r)
		}
	}
	return selected
}
