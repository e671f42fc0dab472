package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/pkg/llm"
)

const generatedSystem = "You are a meticulous travel-data assistant. " +
	"Produce plausible, internally consistent travel data for the requested city. " +
	"Prices are in USD. Respond with JSON only."

// generatedTier is Tier-3: plausible data synthesized by the language model.
// It is the terminal tier of every chain, so its failures surface to the
// caller instead of falling through.
type generatedTier struct {
	client  llm.Client
	model   string
	timeout time.Duration
}

// NewGeneratedTier builds the generative fallback tier. timeout bounds each
// model call independently of the caller's deadline.
func NewGeneratedTier(client llm.Client, modelName string, timeout time.Duration) Tier {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &generatedTier{client: client, model: modelName, timeout: timeout}
}

func (t *generatedTier) Name() string                 { return "generated" }
func (t *generatedTier) Provenance() model.Provenance { return model.ProvenanceGenerated }

func (t *generatedTier) Attempt(ctx context.Context, q Query) (any, bool, error) {
	prompt, schema, err := generatePrompt(q)
	if err != nil {
		return nil, false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	raw, usage, err := t.client.GenerateJSON(callCtx, llm.GenerateRequest{
		System: generatedSystem,
		Prompt: prompt,
		Schema: schema,
	})
	if err != nil {
		return nil, false, eris.Wrapf(err, "retrieval: generate %s for %q", q.Category, q.City)
	}
	usage.LogCost(t.model, "retrieval."+string(q.Category))

	payload, err := decodeGenerated(q, raw)
	if err != nil {
		// Malformed model output is a hard failure here, not a fall-through.
		return nil, false, eris.Wrapf(err, "retrieval: decode generated %s for %q", q.Category, q.City)
	}
	return payload, Sufficient(q.Category, payload), nil
}

func generatePrompt(q Query) (prompt, schema string, err error) {
	switch q.Category {
	case model.CategoryDestination:
		count := q.Count
		if count <= 0 {
			count = 10
		}
		prompt = fmt.Sprintf(
			"Describe the city %q as a travel destination and list its %d most notable attractions. "+
				"Include realistic entrance fees, typical visit durations in hours, and approximate coordinates.",
			q.City, count)
		schema = `{"info":{"name":"","country":"","description":"","best_time_to_visit":"","timezone":"","currency":"","language":"","lat":0,"lon":0},` +
			`"attractions":[{"name":"","kind":"","description":"","address":"","lat":0,"lon":0,"opening_hours":"","entrance_fee":0,"duration_hours":0}],` +
			`"local_tips":[""]}`

	case model.CategoryLodging:
		prompt = fmt.Sprintf("List 5 realistic lodging options in %q", q.City)
		if q.MaxPricePerNight > 0 {
			prompt += fmt.Sprintf(" with nightly rates around or under %.0f USD", q.MaxPricePerNight)
		}
		prompt += ". Mix hotel kinds and ratings."
		schema = `{"hotels":[{"name":"","kind":"","description":"","address":"","price_per_night":0,"rating":0,"amenities":[""],"distance_to_center_km":0,"room_type":""}]}`

	case model.CategoryDining:
		prompt = fmt.Sprintf("List 6 realistic restaurants in %q", q.City)
		if q.Cuisine != "" {
			prompt += fmt.Sprintf(" favoring %s cuisine", q.Cuisine)
		}
		prompt += ". Vary price ranges and include dietary options where plausible."
		schema = `{"restaurants":[{"name":"","cuisine":"","description":"","address":"","price_range":"","avg_cost_per_person":0,"rating":0,"specialties":[""],"dietary_options":[""]}]}`

	case model.CategoryTransport:
		if q.Origin == "" {
			return "", "", eris.New("retrieval: transport generation requires an origin")
		}
		cabin := q.CabinClass
		if cabin == "" {
			cabin = "economy"
		}
		prompt = fmt.Sprintf(
			"Invent 3 plausible %s-class flight options from %q to %q departing %s, "+
				"and 3 return options departing %s. Use real airline names and realistic prices and durations. "+
				"Timestamps are RFC 3339.",
			cabin, q.Origin, q.City, q.DepartDate, q.ReturnDate)
		schema = `{"outbound":[{"airline":"","flight_number":"","departure_airport":"","arrival_airport":"","departure_time":"","arrival_time":"","duration_hours":0,"price":0,"stops":0,"cabin_class":""}],` +
			`"return":[{"airline":"","flight_number":"","departure_airport":"","arrival_airport":"","departure_time":"","arrival_time":"","duration_hours":0,"price":0,"stops":0,"cabin_class":""}]}`

	default:
		return "", "", eris.Errorf("retrieval: no generator for category %q", q.Category)
	}
	return prompt, schema, nil
}

func decodeGenerated(q Query, raw json.RawMessage) (any, error) {
	switch q.Category {
	case model.CategoryDestination:
		var p model.DestinationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case model.CategoryLodging:
		var wire struct {
			Hotels []model.Hotel `json:"hotels"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, err
		}
		return wire.Hotels, nil
	case model.CategoryDining:
		var wire struct {
			Restaurants []model.Restaurant `json:"restaurants"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, err
		}
		return wire.Restaurants, nil
	case model.CategoryTransport:
		var wire struct {
			Outbound []model.Flight `json:"outbound"`
			Return   []model.Flight `json:"return"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, err
		}
		return &FlightOptions{Outbound: wire.Outbound, Return: wire.Return}, nil
	default:
		return nil, eris.Errorf("retrieval: no decoder for category %q", q.Category)
	}
}
