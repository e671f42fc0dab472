package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRequest() model.TripRequest {
	return model.TripRequest{
		Destination: "Lisbon",
		Origin:      "London",
		StartDate:   model.NewDate(2027, 5, 10),
		EndDate:     model.NewDate(2027, 5, 12),
		Budget:      3000,
		Travelers:   2,
	}
}

func TestSQLiteCreateAndGetTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTrip(ctx, sampleRequest())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, model.TripStatusCreated, created.Status)

	got, err := s.GetTrip(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Lisbon", got.Request.Destination)
	assert.Equal(t, "2027-05-10", got.Request.StartDate.String())
	assert.Empty(t, got.Results)
	assert.Nil(t, got.Verification)
}

func TestSQLiteGetTripNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTrip(context.Background(), "no-such-trip")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteUpdateTripStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trip, err := s.CreateTrip(ctx, sampleRequest())
	require.NoError(t, err)

	require.NoError(t, s.UpdateTripStatus(ctx, trip.ID, model.TripStatusRunning, ""))
	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripStatusRunning, got.Status)
	assert.Empty(t, got.Error)

	require.NoError(t, s.UpdateTripStatus(ctx, trip.ID, model.TripStatusFailed, "all agents failed"))
	got, err = s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripStatusFailed, got.Status)
	assert.Equal(t, "all agents failed", got.Error)
}

func TestSQLiteUpdateTripStatusNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateTripStatus(context.Background(), "missing", model.TripStatusRunning, "")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteSetAgentResultWriteThrough(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trip, err := s.CreateTrip(ctx, sampleRequest())
	require.NoError(t, err)

	require.NoError(t, s.SetAgentResult(ctx, trip.ID, model.AgentResult{
		Category:   model.CategoryLodging,
		Payload:    &model.LodgingPayload{TotalCost: 450, Nights: 2, Rooms: 1},
		Provenance: model.ProvenanceCatalog,
		Confidence: 80,
	}))

	// A poller sees the partial result before the run finishes.
	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Contains(t, got.Results, model.CategoryLodging)
	res := got.Results[model.CategoryLodging]
	assert.Equal(t, model.ProvenanceCatalog, res.Provenance)
	assert.InDelta(t, 80, res.Confidence, 0.001)

	// Re-writing the same category replaces the snapshot.
	require.NoError(t, s.SetAgentResult(ctx, trip.ID, model.AgentResult{
		Category:   model.CategoryLodging,
		Provenance: model.ProvenanceGenerated,
		Confidence: 60,
	}))
	got, err = s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceGenerated, got.Results[model.CategoryLodging].Provenance)
	assert.Len(t, got.Results, 1)
}

func TestSQLiteSetVerification(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trip, err := s.CreateTrip(ctx, sampleRequest())
	require.NoError(t, err)

	require.NoError(t, s.SetVerification(ctx, trip.ID, model.VerificationResult{
		Passed:  true,
		Score:   93,
		Summary: "score 93/100: 0 errors, 1 warnings, 1 notes",
		Issues: []model.Issue{
			{Severity: model.SeverityWarning, Category: "budget", Message: "slightly over"},
		},
	}))

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Verification)
	assert.True(t, got.Verification.Passed)
	assert.InDelta(t, 93, got.Verification.Score, 0.001)
	require.Len(t, got.Verification.Issues, 1)
}

func TestSQLiteListTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateTrip(ctx, sampleRequest())
	require.NoError(t, err)

	second := sampleRequest()
	second.Destination = "Kyoto"
	_, err = s.CreateTrip(ctx, second)
	require.NoError(t, err)

	require.NoError(t, s.UpdateTripStatus(ctx, first.ID, model.TripStatusVerified, ""))

	all, err := s.ListTrips(ctx, TripFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	verified, err := s.ListTrips(ctx, TripFilter{Status: model.TripStatusVerified})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, first.ID, verified[0].ID)

	kyoto, err := s.ListTrips(ctx, TripFilter{Destination: "Kyoto"})
	require.NoError(t, err)
	require.Len(t, kyoto, 1)
	assert.Equal(t, "Kyoto", kyoto[0].Request.Destination)

	limited, err := s.ListTrips(ctx, TripFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
