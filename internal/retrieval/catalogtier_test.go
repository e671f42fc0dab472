package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/catalog"
	"github.com/tripcraft/tripcraft/internal/model"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.New(
		[]catalog.Destination{
			{
				Info: model.DestinationInfo{Name: "Lisbon", Country: "Portugal"},
				Attractions: []model.Attraction{
					{Name: "Belem Tower", EntranceFee: 8},
					{Name: "Alfama", EntranceFee: 0},
					{Name: "Oceanario", EntranceFee: 25},
				},
				Hotels: []model.Hotel{
					{Name: "Baixa House", PricePerNight: 240, Rating: 4.8},
					{Name: "Hostel Central", PricePerNight: 45, Rating: 4.1},
				},
				Restaurants: []model.Restaurant{
					{Name: "Cervejaria Ramiro", Cuisine: "seafood", AvgCostPerPerson: 40},
					{Name: "Ze da Mouraria", Cuisine: "portuguese", AvgCostPerPerson: 18},
				},
			},
		},
		[]catalog.FlightRoute{
			{
				Origin:      "London",
				Destination: "Lisbon",
				Flights:     []model.Flight{{Airline: "TAP", FlightNumber: "TP1363", Price: 120}},
			},
		},
	)
}

func TestCatalogTierDestination(t *testing.T) {
	tier := NewCatalogTier(testCatalog(t))
	assert.Equal(t, "catalog", tier.Name())
	assert.Equal(t, model.ProvenanceCatalog, tier.Provenance())

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDestination,
		City:     "lisbon",
		Count:    2,
	})
	require.NoError(t, err)
	require.True(t, ok)
	p := payload.(*model.DestinationPayload)
	assert.Equal(t, "Lisbon", p.Info.Name)
	assert.Len(t, p.Attractions, 2)
}

func TestCatalogTierDestinationMiss(t *testing.T) {
	tier := NewCatalogTier(testCatalog(t))
	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDestination,
		City:     "Ulaanbaatar",
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, payload)
}

func TestCatalogTierLodgingBudgetFallback(t *testing.T) {
	tier := NewCatalogTier(testCatalog(t))

	// Under budget: only the hostel qualifies.
	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category:         model.CategoryLodging,
		City:             "Lisbon",
		MaxPricePerNight: 60,
	})
	require.NoError(t, err)
	require.True(t, ok)
	hotels := payload.([]model.Hotel)
	require.Len(t, hotels, 1)
	assert.Equal(t, "Hostel Central", hotels[0].Name)

	// Budget excludes everything: fall back to the full list rather than
	// reporting the city as having no lodging.
	payload, ok, err = tier.Attempt(context.Background(), Query{
		Category:         model.CategoryLodging,
		City:             "Lisbon",
		MaxPricePerNight: 10,
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, payload.([]model.Hotel), 2)
}

func TestCatalogTierDiningCuisineFallback(t *testing.T) {
	tier := NewCatalogTier(testCatalog(t))

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDining,
		City:     "Lisbon",
		Cuisine:  "seafood",
	})
	require.NoError(t, err)
	require.True(t, ok)
	restaurants := payload.([]model.Restaurant)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Cervejaria Ramiro", restaurants[0].Name)

	payload, ok, err = tier.Attempt(context.Background(), Query{
		Category: model.CategoryDining,
		City:     "Lisbon",
		Cuisine:  "ethiopian",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, payload.([]model.Restaurant), 2)
}

func TestCatalogTierTransport(t *testing.T) {
	tier := NewCatalogTier(testCatalog(t))

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryTransport,
		City:     "Lisbon",
		Origin:   "London",
	})
	require.NoError(t, err)
	require.True(t, ok)
	fo := payload.(*FlightOptions)
	require.Len(t, fo.Outbound, 1)
	assert.Equal(t, "TP1363", fo.Outbound[0].FlightNumber)
	assert.Empty(t, fo.Return)

	// No origin means no flight search at all.
	_, ok, err = tier.Attempt(context.Background(), Query{
		Category: model.CategoryTransport,
		City:     "Lisbon",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}
