// Package store persists trips across their planning lifecycle. Agent
// results are written through per category as they land, so a poller sees
// partial plans while the run is still in flight.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tripcraft/tripcraft/internal/config"
	"github.com/tripcraft/tripcraft/internal/model"
)

// ErrNotFound is returned when a trip id does not exist.
var ErrNotFound = eris.New("store: trip not found")

// TripFilter specifies criteria for listing trips.
type TripFilter struct {
	Status      model.TripStatus `json:"status,omitempty"`
	Destination string           `json:"destination,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	Offset      int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for trip planning runs.
type Store interface {
	// CreateTrip persists a new trip in the created state and returns it.
	CreateTrip(ctx context.Context, req model.TripRequest) (*model.Trip, error)

	// UpdateTripStatus moves the trip through its lifecycle. errMsg is only
	// recorded for failed status.
	UpdateTripStatus(ctx context.Context, tripID string, status model.TripStatus, errMsg string) error

	// SetAgentResult snapshots one category result as soon as it lands.
	SetAgentResult(ctx context.Context, tripID string, res model.AgentResult) error

	// SetVerification attaches the verifier's assessment.
	SetVerification(ctx context.Context, tripID string, v model.VerificationResult) error

	GetTrip(ctx context.Context, tripID string) (*model.Trip, error)
	ListTrips(ctx context.Context, filter TripFilter) ([]model.Trip, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the store named by the config driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
