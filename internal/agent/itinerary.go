package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/tripcraft/tripcraft/internal/model"
)

// Fixed day-slot times.
const (
	slotCheckIn = "15:00"
	slotLunch   = "12:30"
	slotDinner  = "19:00"
)

// attractionSlots are filled in order as pace allows, then sorted into the
// day chronologically.
var attractionSlots = []string{"09:00", "14:30", "11:00", "16:30"}

// itineraryAgent lays retrieved attractions and restaurants out over the
// trip's days. It performs no retrieval of its own.
type itineraryAgent struct{}

// NewItinerary builds the itinerary agent.
func NewItinerary() Agent {
	return &itineraryAgent{}
}

func (a *itineraryAgent) Category() model.Category { return model.CategoryItinerary }

// paceCap is the maximum attractions scheduled per full day.
func paceCap(p model.Pace) int {
	switch p {
	case model.PaceRelaxed:
		return 2
	case model.PacePacked:
		return 4
	default:
		return 3
	}
}

func (a *itineraryAgent) Execute(_ context.Context, req model.TripRequest, tc *model.TripContext) model.AgentResult {
	start := time.Now()

	dest, ok := tc.Destination()
	if !ok {
		return model.FailedResult(model.CategoryItinerary,
			eris.New("itinerary requires destination data and none is available"),
			millisSince(start))
	}

	var warnings []string
	dining, haveDining := tc.Dining()
	if !haveDining {
		warnings = append(warnings, "no dining data; meals are generic placeholders")
	}

	ordered := orderByProximity(dest.Attractions, dest.Info.Lat, dest.Info.Lon)
	perDay := paceCap(req.PaceOrDefault())
	days := req.Days()
	meals := newMealPicker(dining, req.Travelers)

	var (
		out        []model.ItineraryDay
		nextAttr   int
		totalActs  int
		activeDays int
	)
	takeAttractions := func(n int) []model.Attraction {
		end := nextAttr + n
		if end > len(ordered) {
			end = len(ordered)
		}
		batch := ordered[nextAttr:end]
		nextAttr = end
		return batch
	}

	for dayNum := 1; dayNum <= days; dayNum++ {
		date := req.StartDate.AddDays(dayNum - 1)
		day := model.ItineraryDay{DayNumber: dayNum, Date: date}

		switch {
		case dayNum == 1:
			day.Title = "Arrival & Check-in"
			day.Activities = append(day.Activities, checkInActivity(tc))
			day.Activities = append(day.Activities, meals.pick(slotDinner, "Dinner"))

		case dayNum == days:
			day.Title = "Final Day & Departure"
			for _, attr := range takeAttractions(1) {
				day.Activities = append(day.Activities, attractionActivity(attr, attractionSlots[0], req.Travelers))
			}
			day.Activities = append(day.Activities, meals.pick(slotLunch, "Lunch"))

		default:
			batch := takeAttractions(perDay)
			if len(batch) == 0 {
				day.Title = "Rest Day"
				day.RestDay = true
				day.Notes = "No scheduled sightseeing"
				break
			}
			day.Title = fmt.Sprintf("Exploring %s", dest.Info.Name)
			for i, attr := range batch {
				day.Activities = append(day.Activities, attractionActivity(attr, attractionSlots[i], req.Travelers))
			}
			day.Activities = append(day.Activities, meals.pick(slotLunch, "Lunch"), meals.pick(slotDinner, "Dinner"))
		}

		sort.SliceStable(day.Activities, func(i, j int) bool {
			return day.Activities[i].Time < day.Activities[j].Time
		})
		for _, act := range day.Activities {
			day.EstimatedCost += act.EstimatedCost
		}
		totalActs += len(day.Activities)
		if !day.RestDay {
			activeDays++
		}
		out = append(out, day)
	}

	payload := &model.ItineraryPayload{
		Days:            out,
		TotalActivities: totalActs,
		Overview: fmt.Sprintf("%d-day %s-paced trip to %s covering %d attractions",
			days, req.PaceOrDefault(), dest.Info.Name, nextAttr),
		Tips: dest.LocalTips,
	}

	prov := worstInputProvenance(tc, model.CategoryDestination, model.CategoryDining)
	return model.AgentResult{
		Category:   model.CategoryItinerary,
		Payload:    payload,
		Provenance: prov,
		Confidence: confidence(prov, activeDays, days),
		Warnings:   warnings,
		DurationMS: millisSince(start),
	}
}

// orderByProximity chains attractions by nearest-neighbour hops starting
// from the city center, so consecutive itinerary slots stay geographically
// close. Attractions without coordinates go last, in input order.
func orderByProximity(attractions []model.Attraction, centerLat, centerLon float64) []model.Attraction {
	var located, unlocated []model.Attraction
	for _, a := range attractions {
		if a.Lat != 0 || a.Lon != 0 {
			located = append(located, a)
		} else {
			unlocated = append(unlocated, a)
		}
	}

	ordered := make([]model.Attraction, 0, len(attractions))
	cursor := geom.Coord{centerLon, centerLat}
	remaining := append([]model.Attraction(nil), located...)
	for len(remaining) > 0 {
		best, bestDist := 0, xy.Distance(cursor, geom.Coord{remaining[0].Lon, remaining[0].Lat})
		for i := 1; i < len(remaining); i++ {
			if d := xy.Distance(cursor, geom.Coord{remaining[i].Lon, remaining[i].Lat}); d < bestDist {
				best, bestDist = i, d
			}
		}
		picked := remaining[best]
		ordered = append(ordered, picked)
		cursor = geom.Coord{picked.Lon, picked.Lat}
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return append(ordered, unlocated...)
}

func attractionActivity(a model.Attraction, slot string, travelers int) model.Activity {
	if travelers < 1 {
		travelers = 1
	}
	return model.Activity{
		Time:          slot,
		Name:          a.Name,
		Kind:          "attraction",
		Location:      a.Address,
		Description:   a.Description,
		DurationHours: a.DurationHours,
		EstimatedCost: a.EntranceFee * float64(travelers),
	}
}

func checkInActivity(tc *model.TripContext) model.Activity {
	name := "Hotel check-in"
	if lodging, ok := tc.Lodging(); ok && lodging.Recommended != nil {
		name = "Check in at " + lodging.Recommended.Name
	}
	return model.Activity{
		Time:          slotCheckIn,
		Name:          name,
		Kind:          "hotel",
		DurationHours: 1,
	}
}

// mealPicker cycles through the dining shortlist so the same restaurant is
// not recommended twice in a row.
type mealPicker struct {
	restaurants []model.Restaurant
	travelers   int
	next        int
}

func newMealPicker(dining *model.DiningPayload, travelers int) *mealPicker {
	if travelers < 1 {
		travelers = 1
	}
	p := &mealPicker{travelers: travelers}
	if dining != nil {
		p.restaurants = dining.Restaurants
	}
	return p
}

func (p *mealPicker) pick(slot, meal string) model.Activity {
	if len(p.restaurants) == 0 {
		return model.Activity{
			Time:          slot,
			Name:          meal + " at a local restaurant",
			Kind:          "dining",
			DurationHours: 1.5,
		}
	}
	r := p.restaurants[p.next%len(p.restaurants)]
	p.next++
	return model.Activity{
		Time:          slot,
		Name:          meal + " at " + r.Name,
		Kind:          "dining",
		Location:      r.Address,
		DurationHours: 1.5,
		EstimatedCost: r.AvgCostPerPerson * float64(p.travelers),
	}
}

// worstInputProvenance reports the lowest-trust tier among the inputs the
// agent actually consumed.
func worstInputProvenance(tc *model.TripContext, cats ...model.Category) model.Provenance {
	var prov model.Provenance
	for _, cat := range cats {
		if res, ok := tc.Get(cat); ok && !res.Failed {
			prov = model.WorstProvenance(prov, res.Provenance)
		}
	}
	return prov
}
