package retrieval

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/pkg/llm"
)

type fakeLLM struct {
	raw     json.RawMessage
	err     error
	lastReq llm.GenerateRequest
}

func (f *fakeLLM) GenerateJSON(_ context.Context, req llm.GenerateRequest) (json.RawMessage, llm.TokenUsage, error) {
	f.lastReq = req
	return f.raw, llm.TokenUsage{}, f.err
}

func TestGeneratedTierDestination(t *testing.T) {
	fake := &fakeLLM{raw: json.RawMessage(`{
		"info": {"name": "Atlantis", "country": "Unknown"},
		"attractions": [
			{"name": "Sunken Palace", "kind": "ruin", "entrance_fee": 12, "duration_hours": 2}
		],
		"local_tips": ["bring a snorkel"]
	}`)}
	tier := NewGeneratedTier(fake, "test-model", time.Second)
	assert.Equal(t, "generated", tier.Name())
	assert.Equal(t, model.ProvenanceGenerated, tier.Provenance())

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDestination,
		City:     "Atlantis",
		Count:    5,
	})
	require.NoError(t, err)
	require.True(t, ok)
	p := payload.(*model.DestinationPayload)
	assert.Equal(t, "Atlantis", p.Info.Name)
	require.Len(t, p.Attractions, 1)
	assert.Equal(t, "Sunken Palace", p.Attractions[0].Name)
	assert.Contains(t, fake.lastReq.Prompt, "Atlantis")
	assert.NotEmpty(t, fake.lastReq.Schema)
}

func TestGeneratedTierLodging(t *testing.T) {
	fake := &fakeLLM{raw: json.RawMessage(`{
		"hotels": [
			{"name": "Coral Inn", "kind": "hotel", "price_per_night": 90, "rating": 4.2}
		]
	}`)}
	tier := NewGeneratedTier(fake, "test-model", time.Second)

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category:         model.CategoryLodging,
		City:             "Atlantis",
		MaxPricePerNight: 120,
	})
	require.NoError(t, err)
	require.True(t, ok)
	hotels := payload.([]model.Hotel)
	require.Len(t, hotels, 1)
	assert.Equal(t, "Coral Inn", hotels[0].Name)
	assert.Contains(t, fake.lastReq.Prompt, "120")
}

func TestGeneratedTierTransport(t *testing.T) {
	fake := &fakeLLM{raw: json.RawMessage(`{
		"outbound": [
			{"airline": "Pegasus Air", "flight_number": "PG100", "price": 310,
			 "departure_time": "2026-09-01T08:00:00Z", "arrival_time": "2026-09-01T14:30:00Z",
			 "duration_hours": 6.5, "stops": 0, "cabin_class": "economy"}
		],
		"return": []
	}`)}
	tier := NewGeneratedTier(fake, "test-model", time.Second)

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category:   model.CategoryTransport,
		City:       "Atlantis",
		Origin:     "Athens",
		DepartDate: model.NewDate(2026, 9, 1),
		ReturnDate: model.NewDate(2026, 9, 8),
	})
	require.NoError(t, err)
	require.True(t, ok)
	fo := payload.(*FlightOptions)
	require.Len(t, fo.Outbound, 1)
	assert.Equal(t, "PG100", fo.Outbound[0].FlightNumber)
}

func TestGeneratedTierTransportRequiresOrigin(t *testing.T) {
	tier := NewGeneratedTier(&fakeLLM{}, "test-model", time.Second)
	_, _, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryTransport,
		City:     "Atlantis",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origin")
}

func TestGeneratedTierMalformedJSON(t *testing.T) {
	fake := &fakeLLM{raw: json.RawMessage(`{"hotels": "not a list"}`)}
	tier := NewGeneratedTier(fake, "test-model", time.Second)

	_, _, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryLodging,
		City:     "Atlantis",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode generated")
}

func TestGeneratedTierUnknownCategory(t *testing.T) {
	tier := NewGeneratedTier(&fakeLLM{}, "test-model", time.Second)
	_, _, err := tier.Attempt(context.Background(), Query{Category: model.Category("weather")})
	require.Error(t, err)
}
