package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/catalog"
	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/orchestrator"
	"github.com/tripcraft/tripcraft/internal/retrieval"
	"github.com/tripcraft/tripcraft/internal/store"
	"github.com/tripcraft/tripcraft/internal/verify"
)

type fakeRetriever struct {
	results map[model.Category]*retrieval.Result
}

func (f *fakeRetriever) Retrieve(_ context.Context, q retrieval.Query) (*retrieval.Result, error) {
	res, ok := f.results[q.Category]
	if !ok {
		return nil, eris.Errorf("no canned result for %q", q.Category)
	}
	return res, nil
}

func testHandler(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	r := &fakeRetriever{results: map[model.Category]*retrieval.Result{
		model.CategoryDestination: {
			Payload: &model.DestinationPayload{
				Info: model.DestinationInfo{Name: "Lisbon", Lat: 38.7223, Lon: -9.1393},
				Attractions: []model.Attraction{
					{Name: "Belem Tower", Kind: "monument", Lat: 38.6916, Lon: -9.2160},
					{Name: "Alfama", Kind: "district", Lat: 38.7118, Lon: -9.1296},
				},
			},
			Provenance: model.ProvenanceCatalog,
		},
		model.CategoryLodging: {
			Payload:    []model.Hotel{{Name: "Hotel Avenida", PricePerNight: 180, Rating: 4.6}},
			Provenance: model.ProvenanceCatalog,
		},
		model.CategoryDining: {
			Payload:    []model.Restaurant{{Name: "Taberna do Fado", Cuisine: "portuguese", AvgCostPerPerson: 30, Rating: 4.5}},
			Provenance: model.ProvenanceCatalog,
		},
		model.CategoryTransport: {
			Payload: &retrieval.FlightOptions{
				Outbound: []model.Flight{{FlightNumber: "TP1363", DepartureAirport: "LHR", ArrivalAirport: "LIS", Price: 160, DurationHours: 2.8}},
				Return:   []model.Flight{{FlightNumber: "TP1362", DepartureAirport: "LIS", ArrivalAirport: "LHR", Price: 150, DurationHours: 2.7}},
			},
			Provenance: model.ProvenanceCatalog,
		},
	}}

	planner := orchestrator.New(st, r, verify.New(10), 30*time.Second)
	cat := catalog.New([]catalog.Destination{
		{Info: model.DestinationInfo{Name: "Lisbon"}},
		{Info: model.DestinationInfo{Name: "Tokyo"}},
	}, nil)
	return NewHandler(planner, cat), st
}

func postTrip(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trips", bytes.NewReader(raw)))
	return rec
}

func validRequest() model.TripRequest {
	return model.TripRequest{
		Destination: "Lisbon",
		Origin:      "London",
		StartDate:   model.NewDate(2027, 5, 10),
		EndDate:     model.NewDate(2027, 5, 14),
		Budget:      4000,
		Travelers:   2,
	}
}

func TestHealth(t *testing.T) {
	h, _ := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCreateTripAccepted(t *testing.T) {
	h, _ := testHandler(t)
	rec := postTrip(t, h, validRequest())
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["trip_id"])

	// Poll until the background run finishes.
	deadline := time.After(10 * time.Second)
	for {
		getRec := httptest.NewRecorder()
		h.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/api/trips/"+resp["trip_id"], nil))
		require.Equal(t, http.StatusOK, getRec.Code)

		var trip model.Trip
		require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &trip))
		if trip.Status.Terminal() {
			assert.Equal(t, model.TripStatusVerified, trip.Status)
			assert.NotNil(t, trip.Verification)
			return
		}
		select {
		case <-deadline:
			t.Fatal("trip never reached a terminal status")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestCreateTripRejectsBadBody(t *testing.T) {
	h, _ := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trips", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTripRejectsInvalidRequest(t *testing.T) {
	h, _ := testHandler(t)
	req := validRequest()
	req.Travelers = 0
	rec := postTrip(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestGetTripNotFound(t *testing.T) {
	h, _ := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trips/no-such-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTrips(t *testing.T) {
	h, st := testHandler(t)
	_, err := st.CreateTrip(context.Background(), validRequest())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trips?destination=Lisbon", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trips []model.Trip `json:"trips"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trips?limit=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogCities(t *testing.T) {
	h, _ := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/cities", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lisbon")
	assert.Contains(t, rec.Body.String(), "Tokyo")
}
