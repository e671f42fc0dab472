package model

// Category identifies one of the six planning domains.
type Category string

const (
	CategoryDestination Category = "destination"
	CategoryLodging     Category = "lodging"
	CategoryDining      Category = "dining"
	CategoryTransport   Category = "transport"
	CategoryBudget      Category = "budget"
	CategoryItinerary   Category = "itinerary"
)

// IndependentCategories are the agents with no inter-agent dependencies;
// they run concurrently.
func IndependentCategories() []Category {
	return []Category{CategoryDestination, CategoryLodging, CategoryDining, CategoryTransport}
}

// DependentCategories run after the independent tier resolves, in order.
func DependentCategories() []Category {
	return []Category{CategoryBudget, CategoryItinerary}
}

// AllCategories returns every category in scheduling order.
func AllCategories() []Category {
	return append(IndependentCategories(), DependentCategories()...)
}

// Provenance records which data tier ultimately produced a result. It is
// assigned once at retrieval time and never upgraded.
type Provenance string

const (
	ProvenanceLiveAPI   Provenance = "live-api"
	ProvenanceCatalog   Provenance = "catalog"
	ProvenanceGenerated Provenance = "generated"
)

// Rank orders provenances by trust: higher is better.
func (p Provenance) Rank() int {
	switch p {
	case ProvenanceLiveAPI:
		return 3
	case ProvenanceCatalog:
		return 2
	case ProvenanceGenerated:
		return 1
	default:
		return 0
	}
}

// ConfidenceCeiling is the maximum confidence an agent may report for data
// of this provenance. Generated results are always capped below catalog
// and live results.
func (p Provenance) ConfidenceCeiling() float64 {
	switch p {
	case ProvenanceLiveAPI:
		return 95
	case ProvenanceCatalog:
		return 85
	case ProvenanceGenerated:
		return 70
	default:
		return 50
	}
}

// WorstProvenance returns the lower-trust of the two. Agents that issue
// several retrievals report the worst tier they touched.
func WorstProvenance(a, b Provenance) Provenance {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// AgentResult is the immutable output of one agent invocation. Downstream
// components read it; nothing mutates it after the agent returns.
type AgentResult struct {
	Category   Category   `json:"category"`
	Payload    any        `json:"payload,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
	Confidence float64    `json:"confidence"`
	Warnings   []string   `json:"warnings,omitempty"`
	Failed     bool       `json:"failed,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// FailedResult builds the canonical failure marker for a category: zero
// confidence, explicit flag, and a warning naming the cause.
func FailedResult(cat Category, err error, durationMS int64) AgentResult {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return AgentResult{
		Category:   cat,
		Confidence: 0,
		Failed:     true,
		Error:      msg,
		Warnings:   []string{string(cat) + " agent failed: " + msg},
		DurationMS: durationMS,
	}
}
