// Package export renders a planned trip as an XLSX workbook, one sheet per
// category plus a summary.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/tripcraft/tripcraft/internal/model"
)

// WriteFile renders the trip workbook to path.
func WriteFile(trip *model.Trip, path string) error {
	f, err := Workbook(trip)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

// Workbook builds the in-memory workbook. Failed or missing categories get
// no sheet; the summary always renders.
func Workbook(trip *model.Trip) (*xlsx.File, error) {
	f := xlsx.NewFile()

	if err := summarySheet(f, trip); err != nil {
		return nil, err
	}
	if p, ok := payloadAs[model.ItineraryPayload](trip.Results[model.CategoryItinerary]); ok {
		if err := itinerarySheet(f, p); err != nil {
			return nil, err
		}
	}
	if p, ok := payloadAs[model.BudgetPayload](trip.Results[model.CategoryBudget]); ok {
		if err := budgetSheet(f, p); err != nil {
			return nil, err
		}
	}
	if p, ok := payloadAs[model.LodgingPayload](trip.Results[model.CategoryLodging]); ok {
		if err := lodgingSheet(f, p); err != nil {
			return nil, err
		}
	}
	if p, ok := payloadAs[model.DiningPayload](trip.Results[model.CategoryDining]); ok {
		if err := diningSheet(f, p); err != nil {
			return nil, err
		}
	}
	if p, ok := payloadAs[model.TransportPayload](trip.Results[model.CategoryTransport]); ok {
		if err := transportSheet(f, p); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// payloadAs recovers a typed payload. In-process results carry the struct
// pointer; results loaded from the store carry generic JSON maps and need a
// round-trip.
func payloadAs[T any](res model.AgentResult) (*T, bool) {
	if res.Failed || res.Payload == nil {
		return nil, false
	}
	if p, ok := res.Payload.(*T); ok {
		return p, true
	}
	raw, err := json.Marshal(res.Payload)
	if err != nil {
		return nil, false
	}
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func summarySheet(f *xlsx.File, trip *model.Trip) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	kv := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		row.AddCell().Value = value
	}
	req := trip.Request
	kv("Trip ID", trip.ID)
	kv("Destination", req.Destination)
	kv("Origin", req.Origin)
	kv("Dates", req.StartDate.String()+" to "+req.EndDate.String())
	kv("Travelers", fmt.Sprintf("%d", req.Travelers))
	kv("Budget", money(req.Budget))
	kv("Status", string(trip.Status))
	if trip.Verification != nil {
		kv("Verification score", fmt.Sprintf("%.0f/100", trip.Verification.Score))
		kv("Verification", trip.Verification.Summary)
	}

	sheet.AddRow()
	header := sheet.AddRow()
	for _, h := range []string{"Category", "Provenance", "Confidence", "Warnings"} {
		header.AddCell().Value = h
	}
	for _, cat := range append(model.IndependentCategories(), model.DependentCategories()...) {
		res, ok := trip.Results[cat]
		if !ok {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().Value = string(cat)
		if res.Failed {
			row.AddCell().Value = "failed"
			row.AddCell().Value = "-"
			row.AddCell().Value = res.Error
			continue
		}
		row.AddCell().Value = string(res.Provenance)
		row.AddCell().SetFloatWithFormat(res.Confidence, "0.0")
		row.AddCell().Value = fmt.Sprintf("%d", len(res.Warnings))
	}
	return nil
}

func itinerarySheet(f *xlsx.File, p *model.ItineraryPayload) error {
	sheet, err := f.AddSheet("Itinerary")
	if err != nil {
		return eris.Wrap(err, "export: add itinerary sheet")
	}
	header := sheet.AddRow()
	for _, h := range []string{"Day", "Date", "Title", "Time", "Activity", "Kind", "Cost"} {
		header.AddCell().Value = h
	}
	for _, day := range p.Days {
		if day.RestDay {
			row := sheet.AddRow()
			row.AddCell().SetInt(day.DayNumber)
			row.AddCell().Value = day.Date.String()
			row.AddCell().Value = day.Title
			continue
		}
		for _, act := range day.Activities {
			row := sheet.AddRow()
			row.AddCell().SetInt(day.DayNumber)
			row.AddCell().Value = day.Date.String()
			row.AddCell().Value = day.Title
			row.AddCell().Value = act.Time
			row.AddCell().Value = act.Name
			row.AddCell().Value = act.Kind
			row.AddCell().SetFloatWithFormat(act.EstimatedCost, "0.00")
		}
	}
	return nil
}

func budgetSheet(f *xlsx.File, p *model.BudgetPayload) error {
	sheet, err := f.AddSheet("Budget")
	if err != nil {
		return eris.Wrap(err, "export: add budget sheet")
	}
	header := sheet.AddRow()
	header.AddCell().Value = "Line item"
	header.AddCell().Value = "Amount"

	line := func(name string, amount float64) {
		row := sheet.AddRow()
		row.AddCell().Value = name
		row.AddCell().SetFloatWithFormat(amount, "0.00")
	}
	line("Transport", p.Breakdown.Transport)
	line("Lodging", p.Breakdown.Lodging)
	line("Dining", p.Breakdown.Dining)
	line("Activities", p.Breakdown.Activities)
	line("Local transit", p.Breakdown.LocalTransit)
	line("Miscellaneous", p.Breakdown.Misc)
	line("Total", p.Total)
	line("Budget", p.TotalBudget)
	line("Remaining", p.Remaining)

	if len(p.Suggestions) > 0 {
		sheet.AddRow()
		sheet.AddRow().AddCell().Value = "Suggestions"
		for _, s := range p.Suggestions {
			sheet.AddRow().AddCell().Value = s
		}
	}
	return nil
}

func lodgingSheet(f *xlsx.File, p *model.LodgingPayload) error {
	sheet, err := f.AddSheet("Lodging")
	if err != nil {
		return eris.Wrap(err, "export: add lodging sheet")
	}
	header := sheet.AddRow()
	for _, h := range []string{"Hotel", "Type", "Rating", "Price/night", "Recommended"} {
		header.AddCell().Value = h
	}
	for _, h := range p.Hotels {
		row := sheet.AddRow()
		row.AddCell().Value = h.Name
		row.AddCell().Value = h.Kind
		row.AddCell().SetFloatWithFormat(h.Rating, "0.0")
		row.AddCell().SetFloatWithFormat(h.PricePerNight, "0.00")
		if p.Recommended != nil && p.Recommended.Name == h.Name {
			row.AddCell().Value = "yes"
		}
	}
	return nil
}

func diningSheet(f *xlsx.File, p *model.DiningPayload) error {
	sheet, err := f.AddSheet("Dining")
	if err != nil {
		return eris.Wrap(err, "export: add dining sheet")
	}
	header := sheet.AddRow()
	for _, h := range []string{"Restaurant", "Cuisine", "Rating", "Avg cost/person"} {
		header.AddCell().Value = h
	}
	for _, r := range p.Restaurants {
		row := sheet.AddRow()
		row.AddCell().Value = r.Name
		row.AddCell().Value = r.Cuisine
		row.AddCell().SetFloatWithFormat(r.Rating, "0.0")
		row.AddCell().SetFloatWithFormat(r.AvgCostPerPerson, "0.00")
	}
	return nil
}

func transportSheet(f *xlsx.File, p *model.TransportPayload) error {
	sheet, err := f.AddSheet("Transport")
	if err != nil {
		return eris.Wrap(err, "export: add transport sheet")
	}
	header := sheet.AddRow()
	for _, h := range []string{"Leg", "Airline", "Flight", "From", "To", "Duration (h)", "Price"} {
		header.AddCell().Value = h
	}
	flight := func(leg string, fl *model.Flight) {
		if fl == nil {
			return
		}
		row := sheet.AddRow()
		row.AddCell().Value = leg
		row.AddCell().Value = fl.Airline
		row.AddCell().Value = fl.FlightNumber
		row.AddCell().Value = fl.DepartureAirport
		row.AddCell().Value = fl.ArrivalAirport
		row.AddCell().SetFloatWithFormat(fl.DurationHours, "0.0")
		row.AddCell().SetFloatWithFormat(fl.Price, "0.00")
	}
	flight("Outbound", p.RecommendedOutbound)
	flight("Return", p.RecommendedReturn)

	row := sheet.AddRow()
	row.AddCell().Value = "Total (all travelers)"
	row.AddCell().SetFloatWithFormat(p.TotalCost, "0.00")
	return nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
