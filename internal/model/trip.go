package model

import "time"

// TripStatus is the lifecycle state of a planning run.
type TripStatus string

const (
	TripStatusCreated  TripStatus = "created"
	TripStatusRunning  TripStatus = "running"
	TripStatusVerified TripStatus = "verified"
	TripStatusFailed   TripStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s TripStatus) Terminal() bool {
	return s == TripStatusVerified || s == TripStatusFailed
}

// Trip is the persisted aggregate for one planning run: the request,
// lifecycle state, per-category result snapshots, and the verification.
type Trip struct {
	ID           string                   `json:"id"`
	Request      TripRequest              `json:"request"`
	Status       TripStatus               `json:"status"`
	Results      map[Category]AgentResult `json:"results,omitempty"`
	Verification *VerificationResult      `json:"verification,omitempty"`
	Error        string                   `json:"error,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}
