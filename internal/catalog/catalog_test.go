package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/model"
)

func testCatalog() *Catalog {
	return New([]Destination{
		{
			Info: model.DestinationInfo{Name: "Lisbon", Country: "Portugal"},
			Attractions: []model.Attraction{
				{Name: "Belem Tower"}, {Name: "Alfama"},
			},
			Hotels: []model.Hotel{
				{Name: "Hotel Avenida", PricePerNight: 180, Rating: 4.6},
				{Name: "Baixa Hostel", PricePerNight: 40, Rating: 4.0},
			},
			Restaurants: []model.Restaurant{
				{Name: "Cervejaria Ramiro", Cuisine: "Seafood"},
				{Name: "Pasta Nostra", Cuisine: "Italian"},
			},
		},
		{
			Info: model.DestinationInfo{Name: "São Paulo", Country: "Brazil"},
		},
	}, []FlightRoute{
		{
			Origin:      "London",
			Destination: "Lisbon",
			Flights:     []model.Flight{{FlightNumber: "TP1363", Price: 160}},
		},
	})
}

func TestLookupExactAndNormalized(t *testing.T) {
	c := testCatalog()

	d, ok := c.Lookup("Lisbon")
	require.True(t, ok)
	assert.Equal(t, "Portugal", d.Info.Country)

	// Case and diacritics do not matter.
	_, ok = c.Lookup("lisbon")
	assert.True(t, ok)
	_, ok = c.Lookup("Sao Paulo")
	assert.True(t, ok)
}

func TestLookupFuzzy(t *testing.T) {
	c := testCatalog()

	// "Lisbon, Portugal" shares one of two tokens with "lisbon": 0.5 makes
	// the threshold.
	d, ok := c.Lookup("Lisbon, Portugal!")
	require.True(t, ok)
	assert.Equal(t, "Lisbon", d.Info.Name)

	_, ok = c.Lookup("Reykjavik")
	assert.False(t, ok)
}

func TestLookupFuzzyThresholdOption(t *testing.T) {
	dests := []Destination{{Info: model.DestinationInfo{Name: "Lisbon"}}}

	// A 0.5-similarity query that the default accepts is rejected once the
	// threshold is raised.
	strict := New(dests, nil, WithFuzzyThreshold(0.9))
	_, ok := strict.Lookup("Lisbon, Portugal!")
	assert.False(t, ok)

	// One shared token in three misses the default but clears a lax one.
	lax := New(dests, nil, WithFuzzyThreshold(0.3))
	_, ok = lax.Lookup("sunny old Lisbon")
	assert.True(t, ok)
	def := New(dests, nil)
	_, ok = def.Lookup("sunny old Lisbon")
	assert.False(t, ok)

	// Non-positive values keep the default.
	zero := New(dests, nil, WithFuzzyThreshold(0))
	_, ok = zero.Lookup("Lisbon, Portugal!")
	assert.True(t, ok)
}

func TestHotelsBudgetFilter(t *testing.T) {
	c := testCatalog()

	assert.Len(t, c.Hotels("Lisbon", 0), 2)
	cheap := c.Hotels("Lisbon", 100)
	require.Len(t, cheap, 1)
	assert.Equal(t, "Baixa Hostel", cheap[0].Name)
	assert.Nil(t, c.Hotels("Atlantis", 0))
}

func TestRestaurantsCuisineFilter(t *testing.T) {
	c := testCatalog()

	assert.Len(t, c.Restaurants("Lisbon", ""), 2)
	italian := c.Restaurants("Lisbon", "italian")
	require.Len(t, italian, 1)
	assert.Equal(t, "Pasta Nostra", italian[0].Name)
	assert.Empty(t, c.Restaurants("Lisbon", "sushi"))
}

func TestFlightsRouteLookup(t *testing.T) {
	c := testCatalog()

	flights := c.Flights("london", "LISBON")
	require.Len(t, flights, 1)
	assert.Equal(t, "TP1363", flights[0].FlightNumber)
	assert.Empty(t, c.Flights("Lisbon", "London"))
}

func TestCitiesAndStats(t *testing.T) {
	c := testCatalog()

	assert.ElementsMatch(t, []string{"Lisbon", "São Paulo"}, c.Cities())

	s := c.Stats()
	assert.Equal(t, 2, s.Cities)
	assert.Equal(t, 2, s.Attractions)
	assert.Equal(t, 2, s.Hotels)
	assert.Equal(t, 2, s.Restaurants)
	assert.Equal(t, 1, s.Routes)
}

func TestDuplicateKeyKeepsFirst(t *testing.T) {
	c := New([]Destination{
		{Info: model.DestinationInfo{Name: "Lisbon", Country: "Portugal"}},
		{Info: model.DestinationInfo{Name: "LISBON", Country: "Spain"}},
	}, nil)

	d, ok := c.Lookup("Lisbon")
	require.True(t, ok)
	assert.Equal(t, "Portugal", d.Info.Country)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	seed := `
destinations:
  - info:
      name: Kyoto
      country: Japan
    attractions:
      - name: Fushimi Inari
        kind: shrine
    hotels:
      - name: Ryokan Sakura
        price_per_night: 210
        rating: 4.8
routes:
  - origin: Osaka
    destination: Kyoto
    flights:
      - flight_number: NH123
        price: 90
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kyoto.yaml"), []byte(seed), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)

	d, ok := c.Lookup("Kyoto")
	require.True(t, ok)
	assert.Equal(t, "Japan", d.Info.Country)
	require.Len(t, d.Hotels, 1)
	assert.InDelta(t, 210, d.Hotels[0].PricePerNight, 0.001)
	assert.Len(t, c.Flights("Osaka", "Kyoto"), 1)
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "sao paulo", normalizeKey("São Paulo"))
	assert.Equal(t, "new york city", normalizeKey("  New York, City! "))
	assert.Equal(t, "", normalizeKey("—"))
}
