package retrieval

import (
	"context"

	"github.com/tripcraft/tripcraft/internal/catalog"
	"github.com/tripcraft/tripcraft/internal/model"
)

// catalogTier is Tier-2 for every category: read-only lookup against the
// seeded dataset, keyed case- and diacritics-insensitively.
type catalogTier struct {
	cat *catalog.Catalog
}

// NewCatalogTier builds the catalog tier shared by all categories.
func NewCatalogTier(cat *catalog.Catalog) Tier {
	return &catalogTier{cat: cat}
}

func (t *catalogTier) Name() string                 { return "catalog" }
func (t *catalogTier) Provenance() model.Provenance { return model.ProvenanceCatalog }

// Attempt never errors: a catalog miss is ordinary absence, reported as
// insufficient so the chain falls through.
func (t *catalogTier) Attempt(_ context.Context, q Query) (any, bool, error) {
	var payload any
	switch q.Category {
	case model.CategoryDestination:
		dest, ok := t.cat.Lookup(q.City)
		if !ok {
			return nil, false, nil
		}
		p := &model.DestinationPayload{
			Info:        dest.Info,
			Attractions: dest.Attractions,
			LocalTips:   dest.LocalTips,
		}
		if q.Count > 0 && len(p.Attractions) > q.Count {
			p.Attractions = p.Attractions[:q.Count]
		}
		payload = p

	case model.CategoryLodging:
		hotels := t.cat.Hotels(q.City, q.MaxPricePerNight)
		if len(hotels) == 0 {
			// Nothing under the sub-budget hint: better to surface what the
			// city has than nothing at all.
			hotels = t.cat.Hotels(q.City, 0)
		}
		if q.Count > 0 && len(hotels) > q.Count {
			hotels = hotels[:q.Count]
		}
		payload = hotels

	case model.CategoryDining:
		restaurants := t.cat.Restaurants(q.City, q.Cuisine)
		if len(restaurants) == 0 && q.Cuisine != "" {
			restaurants = t.cat.Restaurants(q.City, "")
		}
		if q.Count > 0 && len(restaurants) > q.Count {
			restaurants = restaurants[:q.Count]
		}
		payload = restaurants

	case model.CategoryTransport:
		if q.Origin == "" {
			return nil, false, nil
		}
		fo := &FlightOptions{
			Outbound: t.cat.Flights(q.Origin, q.City),
			Return:   t.cat.Flights(q.City, q.Origin),
		}
		payload = fo

	default:
		return nil, false, nil
	}

	return payload, Sufficient(q.Category, payload), nil
}
