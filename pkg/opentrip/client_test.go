package opentrip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/resilience"
)

func TestDestination_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/places/Kyoto", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Kyoto", "country": "Japan",
			"description": "Former imperial capital",
			"timezone": "Asia/Tokyo", "currency": "JPY",
			"lat": 35.0116, "lon": 135.7681
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	dest, err := client.Destination(context.Background(), "Kyoto")

	require.NoError(t, err)
	assert.Equal(t, "Kyoto", dest.Name)
	assert.Equal(t, "Japan", dest.Country)
	assert.InDelta(t, 35.0116, dest.Lat, 0.0001)
}

func TestAttractions_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/Kyoto/attractions", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"attractions": [
			{"name": "Fushimi Inari", "kind": "temple", "entrance_fee": 0, "duration_hours": 2},
			{"name": "Kinkaku-ji", "kind": "temple", "entrance_fee": 500, "duration_hours": 1.5}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	attractions, err := client.Attractions(context.Background(), "Kyoto", 10)

	require.NoError(t, err)
	require.Len(t, attractions, 2)
	assert.Equal(t, "Fushimi Inari", attractions[0].Name)
	assert.InDelta(t, 500, attractions[1].EntranceFee, 0.001)
}

func TestDestination_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Destination(context.Background(), "Atlantis")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, resilience.IsTransient(err))
}

func TestDestination_TransientStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Destination(context.Background(), "Kyoto")

	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestDestination_AuthError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Destination(context.Background(), "Kyoto")

	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "401")
}
