package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Pace controls how densely the itinerary agent packs each day.
type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceModerate Pace = "moderate"
	PacePacked   Pace = "packed"
)

// AccommodationTier is the lodging quality band the traveler asked for.
type AccommodationTier string

const (
	AccommodationBudget   AccommodationTier = "budget"
	AccommodationMidRange AccommodationTier = "mid-range"
	AccommodationLuxury   AccommodationTier = "luxury"
)

// Preferences holds free-form and enumerated traveler preferences.
type Preferences struct {
	Accommodation       AccommodationTier `json:"accommodation" yaml:"accommodation"`
	Interests           []string          `json:"interests,omitempty" yaml:"interests"`
	DietaryRestrictions []string          `json:"dietary_restrictions,omitempty" yaml:"dietary_restrictions"`
	Pace                Pace              `json:"pace" yaml:"pace"`
}

// TripRequest is the immutable planning input. Once accepted by the planner
// it is never modified.
type TripRequest struct {
	Destination string      `json:"destination" yaml:"destination"`
	Origin      string      `json:"origin,omitempty" yaml:"origin"`
	StartDate   Date        `json:"start_date" yaml:"start_date"`
	EndDate     Date        `json:"end_date" yaml:"end_date"`
	Budget      float64     `json:"budget" yaml:"budget"`
	Travelers   int         `json:"travelers" yaml:"travelers"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
}

// Validate checks the request invariants. now is injectable so tests don't
// depend on the wall clock.
func (r TripRequest) Validate(now time.Time) error {
	if strings.TrimSpace(r.Destination) == "" {
		return eris.New("request: destination is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return eris.New("request: start_date and end_date are required")
	}
	if !r.StartDate.Before(r.EndDate) {
		return eris.New("request: end_date must be after start_date")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if r.StartDate.Time().Before(today) {
		return eris.New("request: start_date must not be in the past")
	}
	if r.Budget <= 0 {
		return eris.New("request: budget must be positive")
	}
	if r.Travelers < 1 {
		return eris.New("request: travelers must be at least 1")
	}
	return nil
}

// Days returns the number of calendar days the trip covers, inclusive of
// both endpoints. A Jan 1 → Jan 3 trip spans 3 days.
func (r TripRequest) Days() int {
	return r.EndDate.DaysSince(r.StartDate) + 1
}

// Nights returns the number of hotel nights.
func (r TripRequest) Nights() int {
	return r.EndDate.DaysSince(r.StartDate)
}

// PaceOrDefault returns the requested pace, defaulting to moderate.
func (r TripRequest) PaceOrDefault() Pace {
	switch r.Preferences.Pace {
	case PaceRelaxed, PaceModerate, PacePacked:
		return r.Preferences.Pace
	default:
		return PaceModerate
	}
}

// AccommodationOrDefault returns the requested tier, defaulting to mid-range.
func (r TripRequest) AccommodationOrDefault() AccommodationTier {
	switch r.Preferences.Accommodation {
	case AccommodationBudget, AccommodationMidRange, AccommodationLuxury:
		return r.Preferences.Accommodation
	default:
		return AccommodationMidRange
	}
}
