// Package agent holds the six category agents. Each agent derives one
// category of the plan from the trip request, a retriever, and whatever
// earlier agents already wrote to the trip context. An agent never returns
// a Go error: failure is a marked AgentResult with zero confidence, so one
// bad category degrades the plan instead of sinking it.
package agent

import (
	"context"
	"math"
	"time"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/retrieval"
)

// Agent produces one category of the trip plan.
type Agent interface {
	Category() model.Category
	// Execute reads req and tc (never writes tc) and returns the category
	// result. The orchestrator owns writing results back to the context.
	Execute(ctx context.Context, req model.TripRequest, tc *model.TripContext) model.AgentResult
}

// Retriever is the slice of the retrieval engine the agents need. Narrowed
// to an interface so tests can substitute canned results.
type Retriever interface {
	Retrieve(ctx context.Context, q retrieval.Query) (*retrieval.Result, error)
}

// confidence scales the provenance ceiling by how complete the result is.
// got/want is clamped to [0,1] and the product rounded to one decimal.
func confidence(prov model.Provenance, got, want int) float64 {
	if want <= 0 {
		want = 1
	}
	ratio := float64(got) / float64(want)
	if ratio > 1 {
		ratio = 1
	}
	return math.Round(prov.ConfidenceCeiling()*ratio*10) / 10
}

func millisSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// All returns the six agents in scheduling order, sharing one retriever.
func All(r Retriever) []Agent {
	return []Agent{
		NewDestination(r),
		NewLodging(r),
		NewDining(r),
		NewTransport(r),
		NewBudget(),
		NewItinerary(),
	}
}

// ByCategory finds the agent for a category, for single-agent runs.
func ByCategory(r Retriever, cat model.Category) (Agent, bool) {
	for _, a := range All(r) {
		if a.Category() == cat {
			return a, true
		}
	}
	return nil, false
}
