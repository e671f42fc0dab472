package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/model"
)

func seedContext(t *testing.T, results ...model.AgentResult) *model.TripContext {
	t.Helper()
	tc := model.NewTripContext()
	for _, res := range results {
		require.NoError(t, tc.Put(res))
	}
	return tc
}

func TestBudgetAgentAggregates(t *testing.T) {
	tc := seedContext(t,
		model.AgentResult{
			Category:   model.CategoryLodging,
			Payload:    &model.LodgingPayload{TotalCost: 800},
			Provenance: model.ProvenanceCatalog,
		},
		model.AgentResult{
			Category:   model.CategoryDining,
			Payload:    &model.DiningPayload{EstimatedTotalCost: 600},
			Provenance: model.ProvenanceCatalog,
		},
		model.AgentResult{
			Category:   model.CategoryTransport,
			Payload:    &model.TransportPayload{TotalCost: 700},
			Provenance: model.ProvenanceLiveAPI,
		},
		model.AgentResult{
			Category: model.CategoryDestination,
			Payload: &model.DestinationPayload{Attractions: []model.Attraction{
				{Name: "a", EntranceFee: 10},
				{Name: "b", EntranceFee: 15},
			}},
			Provenance: model.ProvenanceGenerated,
		},
	)

	res := NewBudget().Execute(context.Background(), testRequest(), tc)
	require.False(t, res.Failed)
	p := res.Payload.(*model.BudgetPayload)

	// Activities: (10+15) × 2 travelers = 50.
	assert.InDelta(t, 50, p.Breakdown.Activities, 0.001)
	subtotal := 700.0 + 800 + 600 + 50
	assert.InDelta(t, subtotal*0.10, p.Breakdown.LocalTransit, 0.001)
	assert.InDelta(t, subtotal*0.05, p.Breakdown.Misc, 0.001)
	assert.InDelta(t, subtotal*1.15, p.Total, 0.001)
	assert.True(t, p.WithinBudget)
	assert.InDelta(t, 4000-subtotal*1.15, p.Remaining, 0.001)
	assert.Empty(t, p.DefaultsUsed)
	assert.Empty(t, p.Suggestions)

	// One generated input drags the whole budget's provenance down.
	assert.Equal(t, model.ProvenanceGenerated, res.Provenance)
	// All four inputs present → full ceiling.
	assert.InDelta(t, 70, res.Confidence, 0.001)
}

func TestBudgetAgentDefaultsForMissingInputs(t *testing.T) {
	tc := seedContext(t,
		model.AgentResult{
			Category:   model.CategoryLodging,
			Payload:    &model.LodgingPayload{TotalCost: 900},
			Provenance: model.ProvenanceCatalog,
		},
	)

	res := NewBudget().Execute(context.Background(), testRequest(), tc)
	p := res.Payload.(*model.BudgetPayload)

	// Missing dining, transport, and activities fall back to allocation
	// shares of the 4000 budget: 800, 1400, 400.
	assert.InDelta(t, 800, p.Breakdown.Dining, 0.001)
	assert.InDelta(t, 1400, p.Breakdown.Transport, 0.001)
	assert.InDelta(t, 400, p.Breakdown.Activities, 0.001)
	assert.Len(t, p.DefaultsUsed, 3)

	// 1 of 4 inputs present at catalog ceiling.
	assert.InDelta(t, 85*0.25, res.Confidence, 0.1)
}

func TestBudgetAgentOverBudgetSuggestions(t *testing.T) {
	tc := seedContext(t,
		model.AgentResult{
			Category:   model.CategoryTransport,
			Payload:    &model.TransportPayload{TotalCost: 5000},
			Provenance: model.ProvenanceLiveAPI,
		},
	)

	req := testRequest()
	req.Preferences.Accommodation = model.AccommodationLuxury
	res := NewBudget().Execute(context.Background(), req, tc)
	p := res.Payload.(*model.BudgetPayload)

	assert.False(t, p.WithinBudget)
	assert.Greater(t, p.UtilizationPct, 100.0)
	require.NotEmpty(t, p.Suggestions)
	assert.Contains(t, p.Suggestions[0], "luxury")
	assert.NotEmpty(t, res.Warnings)
}
