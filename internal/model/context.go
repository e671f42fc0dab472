package model

import (
	"sync"

	"github.com/rotisserie/eris"
)

// TripContext is the shared accumulator for one planning pass. Each category
// key is written exactly once by its agent; dependents only read. It is the
// only shared-mutable structure in the pipeline.
type TripContext struct {
	mu      sync.RWMutex
	results map[Category]AgentResult
}

// NewTripContext creates an empty context for a single planning pass.
func NewTripContext() *TripContext {
	return &TripContext{results: make(map[Category]AgentResult)}
}

// Put stores an agent result. Writing the same category twice violates the
// single-writer-per-key invariant and returns an error.
func (c *TripContext) Put(res AgentResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.results[res.Category]; exists {
		return eris.Errorf("context: category %q already written", res.Category)
	}
	c.results[res.Category] = res
	return nil
}

// Get returns the result for a category. Readers must tolerate absence:
// an upstream agent may have failed or not finished.
func (c *TripContext) Get(cat Category) (AgentResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[cat]
	return res, ok
}

// Snapshot returns a copy of all results written so far.
func (c *TripContext) Snapshot() map[Category]AgentResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Category]AgentResult, len(c.results))
	for k, v := range c.results {
		out[k] = v
	}
	return out
}

// Destination returns the destination payload if that agent succeeded.
func (c *TripContext) Destination() (*DestinationPayload, bool) {
	return payloadOf[DestinationPayload](c, CategoryDestination)
}

// Lodging returns the lodging payload if that agent succeeded.
func (c *TripContext) Lodging() (*LodgingPayload, bool) {
	return payloadOf[LodgingPayload](c, CategoryLodging)
}

// Dining returns the dining payload if that agent succeeded.
func (c *TripContext) Dining() (*DiningPayload, bool) {
	return payloadOf[DiningPayload](c, CategoryDining)
}

// Transport returns the transport payload if that agent succeeded.
func (c *TripContext) Transport() (*TransportPayload, bool) {
	return payloadOf[TransportPayload](c, CategoryTransport)
}

// Budget returns the budget payload if that agent succeeded.
func (c *TripContext) Budget() (*BudgetPayload, bool) {
	return payloadOf[BudgetPayload](c, CategoryBudget)
}

// Itinerary returns the itinerary payload if that agent succeeded.
func (c *TripContext) Itinerary() (*ItineraryPayload, bool) {
	return payloadOf[ItineraryPayload](c, CategoryItinerary)
}

func payloadOf[T any](c *TripContext, cat Category) (*T, bool) {
	res, ok := c.Get(cat)
	if !ok || res.Failed {
		return nil, false
	}
	p, ok := res.Payload.(*T)
	if !ok {
		return nil, false
	}
	return p, true
}
