package retrieval

import (
	"time"

	"github.com/tripcraft/tripcraft/internal/catalog"
	"github.com/tripcraft/tripcraft/internal/config"
	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/resilience"
	"github.com/tripcraft/tripcraft/pkg/amadeus"
	"github.com/tripcraft/tripcraft/pkg/llm"
	"github.com/tripcraft/tripcraft/pkg/opentrip"
)

// Clients are the external data sources the tier chains draw on. A nil live
// client drops that category's live tier; the catalog and generator are
// always present.
type Clients struct {
	OpenTrip opentrip.Client
	Amadeus  amadeus.Client
	LLM      llm.Client
	Model    string
}

// BuildRetriever assembles the per-category tier chains. Destination and
// transport get the full live chain; lodging and dining have no live API and
// start at the catalog. Each live service gets its own circuit breaker so a
// flaky flight API cannot trip destination lookups.
func BuildRetriever(cfg config.RetrievalConfig, cat *catalog.Catalog, clients Clients) *Retriever {
	genTimeout := time.Duration(cfg.GenTimeoutSecs) * time.Second

	catalogTier := NewCatalogTier(cat)
	generated := NewGeneratedTier(clients.LLM, clients.Model, genTimeout)

	liveOpts := func() LiveOptions {
		return LiveOptions{
			Timeout: time.Duration(cfg.LiveTimeoutSecs) * time.Second,
			Retry:   resilience.FromRetryConfig(cfg.LiveMaxAttempts, cfg.InitialBackoffMs, 0, 0, 0),
			Breaker: resilience.NewCircuitBreaker(resilience.FromCircuitConfig(cfg.FailureThreshold, cfg.ResetTimeoutSecs)),
		}
	}

	chains := map[model.Category][]Tier{
		model.CategoryLodging: {catalogTier, generated},
		model.CategoryDining:  {catalogTier, generated},
	}

	if clients.OpenTrip != nil {
		chains[model.CategoryDestination] = []Tier{
			NewDestinationLiveTier(clients.OpenTrip, liveOpts()),
			catalogTier,
			generated,
		}
	} else {
		chains[model.CategoryDestination] = []Tier{catalogTier, generated}
	}

	if clients.Amadeus != nil {
		chains[model.CategoryTransport] = []Tier{
			NewTransportLiveTier(clients.Amadeus, liveOpts()),
			catalogTier,
			generated,
		}
	} else {
		chains[model.CategoryTransport] = []Tier{catalogTier, generated}
	}

	return NewRetriever(chains)
}
