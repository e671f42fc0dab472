// Package retrieval implements the tiered data-retrieval engine: live API,
// then static catalog, then generative fallback. Tiers are data, not control
// flow. Each chain is an ordered slice walked by one shared loop.
package retrieval

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/model"
)

// GeneratedCaveat is appended to every result produced by the generative
// fallback tier. It follows the result through caching and persistence.
const GeneratedCaveat = "unverified, AI-generated; please confirm before booking"

// Query describes one category-shaped retrieval request.
type Query struct {
	Category         model.Category
	City             string
	Origin           string
	Cuisine          string
	DepartDate       model.Date
	ReturnDate       model.Date
	CabinClass       string
	MaxPricePerNight float64
	Travelers        int
	Count            int
}

// Result is the outcome of a retrieval: the category payload plus where it
// came from. Provenance is assigned once and never upgraded.
type Result struct {
	Payload    any
	Provenance model.Provenance
	Caveats    []string
}

// FlightOptions is the transport-category payload: candidate flights per
// direction. Return may be empty; the transport agent synthesizes one.
type FlightOptions struct {
	Outbound []model.Flight
	Return   []model.Flight
}

// Tier is one data source in a category's fallback chain. Attempt returns
// the payload, whether it passes the category's sufficiency predicate, and
// any error. An insufficient payload is discarded whole, never merged.
type Tier interface {
	Name() string
	Provenance() model.Provenance
	Attempt(ctx context.Context, q Query) (any, bool, error)
}

// Retriever walks a per-category ordered tier chain. The order is fixed at
// construction (live API → catalog → generated); categories without a live
// API carry a two-tier chain.
type Retriever struct {
	chains map[model.Category][]Tier
}

// NewRetriever builds a retriever over explicit tier chains.
func NewRetriever(chains map[model.Category][]Tier) *Retriever {
	return &Retriever{chains: chains}
}

// Retrieve walks the query's tier chain until one tier yields a sufficient
// payload. Ordinary absence of data falls through to the next tier; only
// failure of the final tier is terminal for the query.
func (r *Retriever) Retrieve(ctx context.Context, q Query) (*Result, error) {
	chain, ok := r.chains[q.Category]
	if !ok || len(chain) == 0 {
		return nil, eris.Errorf("retrieval: no tiers configured for category %q", q.Category)
	}

	log := zap.L().With(
		zap.String("category", string(q.Category)),
		zap.String("city", q.City),
	)

	var lastErr error
	for i, tier := range chain {
		terminal := i == len(chain)-1

		payload, sufficient, err := tier.Attempt(ctx, q)
		if err != nil {
			lastErr = err
			if terminal {
				return nil, eris.Wrapf(err, "retrieval: %s tier failed terminally", tier.Name())
			}
			log.Warn("retrieval: tier failed, falling through",
				zap.String("tier", tier.Name()),
				zap.Error(err),
			)
			continue
		}
		if !sufficient {
			if terminal {
				return nil, eris.Errorf("retrieval: %s tier returned insufficient data and no tiers remain", tier.Name())
			}
			log.Debug("retrieval: tier insufficient, falling through",
				zap.String("tier", tier.Name()),
			)
			continue
		}

		res := &Result{
			Payload:    payload,
			Provenance: tier.Provenance(),
		}
		if res.Provenance == model.ProvenanceGenerated {
			res.Caveats = append(res.Caveats, GeneratedCaveat)
		}
		log.Info("retrieval: tier hit",
			zap.String("tier", tier.Name()),
			zap.String("provenance", string(res.Provenance)),
		)
		return res, nil
	}

	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "retrieval: all tiers exhausted")
	}
	return nil, eris.New("retrieval: all tiers exhausted")
}

// Chain returns the configured tier names for a category, in order.
func (r *Retriever) Chain(cat model.Category) []string {
	tiers := r.chains[cat]
	names := make([]string, 0, len(tiers))
	for _, t := range tiers {
		names = append(names, t.Name())
	}
	return names
}

// Sufficient is the per-category completeness predicate shared by every
// tier: at least one attraction, hotel, restaurant, or outbound flight.
func Sufficient(cat model.Category, payload any) bool {
	switch cat {
	case model.CategoryDestination:
		p, ok := payload.(*model.DestinationPayload)
		return ok && p != nil && len(p.Attractions) > 0
	case model.CategoryLodging:
		hotels, ok := payload.([]model.Hotel)
		return ok && len(hotels) > 0
	case model.CategoryDining:
		restaurants, ok := payload.([]model.Restaurant)
		return ok && len(restaurants) > 0
	case model.CategoryTransport:
		fo, ok := payload.(*FlightOptions)
		return ok && fo != nil && len(fo.Outbound) > 0
	default:
		return false
	}
}
