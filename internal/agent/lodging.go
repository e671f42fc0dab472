package agent

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/retrieval"
)

// lodgingMaxOptions caps how many hotels the lodging agent reports.
const lodgingMaxOptions = 5

// lodgingAgent finds hotels within the lodging slice of the budget and
// recommends the best-rated affordable one.
type lodgingAgent struct {
	retriever Retriever
}

// NewLodging builds the lodging agent.
func NewLodging(r Retriever) Agent {
	return &lodgingAgent{retriever: r}
}

func (a *lodgingAgent) Category() model.Category { return model.CategoryLodging }

// perNightBudget is the lodging share of the budget spread over nights and
// travelers, with 50% headroom so a slightly-over option still surfaces.
func perNightBudget(req model.TripRequest) float64 {
	nights := req.Nights()
	if nights < 1 {
		nights = 1
	}
	travelers := req.Travelers
	if travelers < 1 {
		travelers = 1
	}
	return model.AllocateBudget(req.Budget).Lodging / float64(nights) / float64(travelers) * 1.5
}

// sortHotels orders best-rated first, cheaper among equals. It sorts a copy
// so catalog-backed slices are never reordered.
func sortHotels(hotels []model.Hotel) []model.Hotel {
	out := make([]model.Hotel, len(hotels))
	copy(out, hotels)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].PricePerNight < out[j].PricePerNight
	})
	return out
}

func (a *lodgingAgent) Execute(ctx context.Context, req model.TripRequest, _ *model.TripContext) model.AgentResult {
	start := time.Now()

	res, err := a.retriever.Retrieve(ctx, retrieval.Query{
		Category:         model.CategoryLodging,
		City:             req.Destination,
		MaxPricePerNight: perNightBudget(req),
		Travelers:        req.Travelers,
	})
	if err != nil {
		zap.L().Warn("lodging agent failed", zap.String("city", req.Destination), zap.Error(err))
		return model.FailedResult(model.CategoryLodging, err, millisSince(start))
	}

	hotels := sortHotels(res.Payload.([]model.Hotel))
	if len(hotels) > lodgingMaxOptions {
		hotels = hotels[:lodgingMaxOptions]
	}

	nights := req.Nights()
	rooms := model.RoomsFor(req.Travelers)
	recommended := hotels[0]
	payload := &model.LodgingPayload{
		Hotels:      hotels,
		Recommended: &recommended,
		Nights:      nights,
		Rooms:       rooms,
		TotalCost:   float64(nights) * recommended.PricePerNight * float64(rooms),
	}

	warnings := res.Caveats
	if recommended.PricePerNight*float64(rooms)*float64(nights) > model.AllocateBudget(req.Budget).Lodging {
		warnings = append(warnings, "recommended hotel exceeds the lodging budget share")
	}

	return model.AgentResult{
		Category:   model.CategoryLodging,
		Payload:    payload,
		Provenance: res.Provenance,
		Confidence: confidence(res.Provenance, len(hotels), lodgingMaxOptions),
		Warnings:   warnings,
		DurationMS: millisSince(start),
	}
}
