package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/retrieval"
)

// destinationAgent researches the destination city: profile, attractions,
// and local tips.
type destinationAgent struct {
	retriever Retriever
}

// NewDestination builds the destination agent.
func NewDestination(r Retriever) Agent {
	return &destinationAgent{retriever: r}
}

func (a *destinationAgent) Category() model.Category { return model.CategoryDestination }

// attractionCountFor scales how many attractions to research with trip
// length. A weekend needs a handful; a long stay needs variety.
func attractionCountFor(days int) int {
	switch {
	case days <= 2:
		return 5
	case days <= 4:
		return 8
	case days <= 7:
		return 12
	default:
		return 15
	}
}

func (a *destinationAgent) Execute(ctx context.Context, req model.TripRequest, _ *model.TripContext) model.AgentResult {
	start := time.Now()
	want := attractionCountFor(req.Days())

	res, err := a.retriever.Retrieve(ctx, retrieval.Query{
		Category: model.CategoryDestination,
		City:     req.Destination,
		Count:    want,
	})
	if err != nil {
		zap.L().Warn("destination agent failed", zap.String("city", req.Destination), zap.Error(err))
		return model.FailedResult(model.CategoryDestination, err, millisSince(start))
	}

	payload := res.Payload.(*model.DestinationPayload)
	return model.AgentResult{
		Category:   model.CategoryDestination,
		Payload:    payload,
		Provenance: res.Provenance,
		Confidence: confidence(res.Provenance, len(payload.Attractions), want),
		Warnings:   res.Caveats,
		DurationMS: millisSince(start),
	}
}
