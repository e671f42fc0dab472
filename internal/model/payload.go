package model

import (
	"math"
	"time"
)

// DestinationInfo describes the destination city itself.
type DestinationInfo struct {
	Name            string  `json:"name" yaml:"name"`
	Country         string  `json:"country" yaml:"country"`
	Description     string  `json:"description" yaml:"description"`
	BestTimeToVisit string  `json:"best_time_to_visit,omitempty" yaml:"best_time_to_visit"`
	Timezone        string  `json:"timezone,omitempty" yaml:"timezone"`
	Currency        string  `json:"currency,omitempty" yaml:"currency"`
	Language        string  `json:"language,omitempty" yaml:"language"`
	Lat             float64 `json:"lat,omitempty" yaml:"lat"`
	Lon             float64 `json:"lon,omitempty" yaml:"lon"`
}

// Attraction is a point of interest at the destination.
type Attraction struct {
	Name          string  `json:"name" yaml:"name"`
	Kind          string  `json:"kind" yaml:"kind"` // temple, museum, park, beach, ...
	Description   string  `json:"description" yaml:"description"`
	Address       string  `json:"address,omitempty" yaml:"address"`
	Lat           float64 `json:"lat,omitempty" yaml:"lat"`
	Lon           float64 `json:"lon,omitempty" yaml:"lon"`
	OpeningHours  string  `json:"opening_hours,omitempty" yaml:"opening_hours"`
	EntranceFee   float64 `json:"entrance_fee" yaml:"entrance_fee"`
	DurationHours float64 `json:"duration_hours" yaml:"duration_hours"`
}

// DestinationPayload is the destination agent's structured output.
type DestinationPayload struct {
	Info        DestinationInfo `json:"info"`
	Attractions []Attraction    `json:"attractions"`
	LocalTips   []string        `json:"local_tips,omitempty"`
}

// Hotel is one lodging option.
type Hotel struct {
	Name               string   `json:"name" yaml:"name"`
	Kind               string   `json:"kind" yaml:"kind"` // hotel, hostel, resort, villa, guesthouse
	Description        string   `json:"description" yaml:"description"`
	Address            string   `json:"address,omitempty" yaml:"address"`
	PricePerNight      float64  `json:"price_per_night" yaml:"price_per_night"`
	Rating             float64  `json:"rating" yaml:"rating"`
	Amenities          []string `json:"amenities,omitempty" yaml:"amenities"`
	DistanceToCenterKM float64  `json:"distance_to_center_km,omitempty" yaml:"distance_to_center_km"`
	RoomType           string   `json:"room_type,omitempty" yaml:"room_type"`
}

// LodgingPayload is the lodging agent's structured output.
type LodgingPayload struct {
	Hotels      []Hotel `json:"hotels"`
	Recommended *Hotel  `json:"recommended,omitempty"`
	Nights      int     `json:"nights"`
	Rooms       int     `json:"rooms"`
	TotalCost   float64 `json:"total_cost"`
}

// Restaurant is one dining option.
type Restaurant struct {
	Name             string   `json:"name" yaml:"name"`
	Cuisine          string   `json:"cuisine" yaml:"cuisine"`
	Description      string   `json:"description" yaml:"description"`
	Address          string   `json:"address,omitempty" yaml:"address"`
	PriceRange       string   `json:"price_range,omitempty" yaml:"price_range"` // $ .. $$$$
	AvgCostPerPerson float64  `json:"avg_cost_per_person" yaml:"avg_cost_per_person"`
	Rating           float64  `json:"rating" yaml:"rating"`
	Specialties      []string `json:"specialties,omitempty" yaml:"specialties"`
	DietaryOptions   []string `json:"dietary_options,omitempty" yaml:"dietary_options"`
}

// DiningPayload is the dining agent's structured output.
type DiningPayload struct {
	Restaurants        []Restaurant `json:"restaurants"`
	EstimatedTotalCost float64      `json:"estimated_total_cost"`
}

// Flight is one flight option.
type Flight struct {
	Airline          string    `json:"airline" yaml:"airline"`
	FlightNumber     string    `json:"flight_number" yaml:"flight_number"`
	DepartureAirport string    `json:"departure_airport" yaml:"departure_airport"`
	ArrivalAirport   string    `json:"arrival_airport" yaml:"arrival_airport"`
	DepartureTime    time.Time `json:"departure_time" yaml:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time" yaml:"arrival_time"`
	DurationHours    float64   `json:"duration_hours" yaml:"duration_hours"`
	Price            float64   `json:"price" yaml:"price"`
	Stops            int       `json:"stops" yaml:"stops"`
	CabinClass       string    `json:"cabin_class" yaml:"cabin_class"`
}

// TransportPayload is the transport agent's structured output.
type TransportPayload struct {
	Outbound            []Flight `json:"outbound"`
	Return              []Flight `json:"return"`
	RecommendedOutbound *Flight  `json:"recommended_outbound,omitempty"`
	RecommendedReturn   *Flight  `json:"recommended_return,omitempty"`
	TotalCost           float64  `json:"total_cost"`
}

// BudgetAllocation is the up-front split of the total budget across
// categories: transport 35%, lodging 30%, dining 20%, activities 10%,
// miscellaneous 5%.
type BudgetAllocation struct {
	Transport  float64 `json:"transport"`
	Lodging    float64 `json:"lodging"`
	Dining     float64 `json:"dining"`
	Activities float64 `json:"activities"`
	Misc       float64 `json:"misc"`
}

// AllocateBudget splits a total budget using the standard allocation.
func AllocateBudget(total float64) BudgetAllocation {
	return BudgetAllocation{
		Transport:  total * 0.35,
		Lodging:    total * 0.30,
		Dining:     total * 0.20,
		Activities: total * 0.10,
		Misc:       total * 0.05,
	}
}

// BudgetBreakdown is the per-line-item spend estimate.
type BudgetBreakdown struct {
	Transport    float64 `json:"transport"`
	Lodging      float64 `json:"lodging"`
	Dining       float64 `json:"dining"`
	Activities   float64 `json:"activities"`
	LocalTransit float64 `json:"local_transit"`
	Misc         float64 `json:"misc"`
}

// Total sums all line items.
func (b BudgetBreakdown) Total() float64 {
	return b.Transport + b.Lodging + b.Dining + b.Activities + b.LocalTransit + b.Misc
}

// BudgetPayload is the budget agent's structured output.
type BudgetPayload struct {
	TotalBudget    float64          `json:"total_budget"`
	Allocation     BudgetAllocation `json:"allocation"`
	Breakdown      BudgetBreakdown  `json:"breakdown"`
	Total          float64          `json:"total"`
	Remaining      float64          `json:"remaining"`
	WithinBudget   bool             `json:"within_budget"`
	UtilizationPct float64          `json:"utilization_pct"`
	DefaultsUsed   []string         `json:"defaults_used,omitempty"`
	Suggestions    []string         `json:"suggestions,omitempty"`
}

// Activity is one itinerary slot.
type Activity struct {
	Time          string  `json:"time"` // HH:MM
	Name          string  `json:"name"`
	Kind          string  `json:"kind"` // attraction, dining, hotel, transport, rest
	Location      string  `json:"location,omitempty"`
	Description   string  `json:"description,omitempty"`
	DurationHours float64 `json:"duration_hours"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// ItineraryDay covers exactly one calendar day of the trip. A day with no
// activities must be explicitly marked a rest day.
type ItineraryDay struct {
	DayNumber     int        `json:"day_number"`
	Date          Date       `json:"date"`
	Title         string     `json:"title"`
	Activities    []Activity `json:"activities,omitempty"`
	RestDay       bool       `json:"rest_day,omitempty"`
	EstimatedCost float64    `json:"estimated_cost"`
	Notes         string     `json:"notes,omitempty"`
}

// ItineraryPayload is the itinerary agent's structured output.
type ItineraryPayload struct {
	Days            []ItineraryDay `json:"days"`
	TotalActivities int            `json:"total_activities"`
	Overview        string         `json:"overview"`
	Tips            []string       `json:"tips,omitempty"`
}

// RoomsFor returns the number of double rooms needed for a party.
func RoomsFor(travelers int) int {
	if travelers < 1 {
		return 1
	}
	return int(math.Ceil(float64(travelers) / 2))
}
