package agent

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/retrieval"
)

// transportAgent finds round-trip flights and recommends the cheapest,
// breaking price ties on duration.
type transportAgent struct {
	retriever Retriever
}

// NewTransport builds the transport agent.
func NewTransport(r Retriever) Agent {
	return &transportAgent{retriever: r}
}

func (a *transportAgent) Category() model.Category { return model.CategoryTransport }

// cabinClassFor maps the accommodation preference onto a flight cabin:
// travelers who book luxury hotels are not flying economy.
func cabinClassFor(tier model.AccommodationTier) string {
	switch tier {
	case model.AccommodationLuxury:
		return "business"
	case model.AccommodationMidRange:
		return "premium_economy"
	default:
		return "economy"
	}
}

func (a *transportAgent) Execute(ctx context.Context, req model.TripRequest, _ *model.TripContext) model.AgentResult {
	start := time.Now()

	res, err := a.retriever.Retrieve(ctx, retrieval.Query{
		Category:   model.CategoryTransport,
		City:       req.Destination,
		Origin:     req.Origin,
		DepartDate: req.StartDate,
		ReturnDate: req.EndDate,
		CabinClass: cabinClassFor(req.AccommodationOrDefault()),
		Travelers:  req.Travelers,
	})
	if err != nil {
		zap.L().Warn("transport agent failed",
			zap.String("origin", req.Origin),
			zap.String("destination", req.Destination),
			zap.Error(err),
		)
		return model.FailedResult(model.CategoryTransport, err, millisSince(start))
	}

	fo := res.Payload.(*retrieval.FlightOptions)
	outbound := sortFlights(fo.Outbound)
	ret := sortFlights(fo.Return)
	warnings := res.Caveats

	best := outbound[0]
	var bestReturn model.Flight
	if len(ret) > 0 {
		bestReturn = ret[0]
	} else {
		bestReturn = synthesizeReturn(best, req.EndDate)
		ret = []model.Flight{bestReturn}
		warnings = append(warnings, "no return flight data; return leg estimated from the outbound flight")
	}

	payload := &model.TransportPayload{
		Outbound:            outbound,
		Return:              ret,
		RecommendedOutbound: &best,
		RecommendedReturn:   &bestReturn,
		TotalCost:           (best.Price + bestReturn.Price) * float64(req.Travelers),
	}

	return model.AgentResult{
		Category:   model.CategoryTransport,
		Payload:    payload,
		Provenance: res.Provenance,
		Confidence: confidence(res.Provenance, len(outbound)+len(fo.Return), 4),
		Warnings:   warnings,
		DurationMS: millisSince(start),
	}
}

// sortFlights orders cheapest first, fastest among equals.
func sortFlights(flights []model.Flight) []model.Flight {
	out := make([]model.Flight, len(flights))
	copy(out, flights)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].DurationHours < out[j].DurationHours
	})
	return out
}

// synthesizeReturn mirrors an outbound flight for the return date, keeping
// price and duration as the best available estimate.
func synthesizeReturn(out model.Flight, returnDate model.Date) model.Flight {
	dep := returnDate.Time().Add(10 * time.Hour)
	return model.Flight{
		Airline:          out.Airline,
		FlightNumber:     out.FlightNumber + "R",
		DepartureAirport: out.ArrivalAirport,
		ArrivalAirport:   out.DepartureAirport,
		DepartureTime:    dep,
		ArrivalTime:      dep.Add(time.Duration(out.DurationHours * float64(time.Hour))),
		DurationHours:    out.DurationHours,
		Price:            out.Price,
		Stops:            out.Stops,
		CabinClass:       out.CabinClass,
	}
}
