// Package orchestrator runs the two-level agent graph for a trip: the four
// independent agents fan out concurrently under one deadline, then budget
// and itinerary run sequentially over their results, then the verifier
// scores the whole plan.
package orchestrator

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tripcraft/tripcraft/internal/agent"
	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/store"
	"github.com/tripcraft/tripcraft/internal/verify"
)

// DefaultDeadline bounds one full planning pass.
const DefaultDeadline = 120 * time.Second

// Planner owns the planning lifecycle: persistence, agent scheduling, and
// verification.
type Planner struct {
	store    store.Store
	agents   map[model.Category]agent.Agent
	verifier *verify.Verifier
	deadline time.Duration
}

// New builds a planner. retriever feeds the category agents; deadline <= 0
// falls back to the default.
func New(st store.Store, retriever agent.Retriever, verifier *verify.Verifier, deadline time.Duration) *Planner {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	agents := make(map[model.Category]agent.Agent)
	for _, a := range agent.All(retriever) {
		agents[a.Category()] = a
	}
	return &Planner{
		store:    st,
		agents:   agents,
		verifier: verifier,
		deadline: deadline,
	}
}

// PlanTrip validates and persists the request, then launches the planning
// pass on its own goroutine and returns the trip id immediately.
func (p *Planner) PlanTrip(ctx context.Context, req model.TripRequest) (string, error) {
	if err := req.Validate(time.Now()); err != nil {
		return "", err
	}
	trip, err := p.store.CreateTrip(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, "orchestrator: create trip")
	}

	// The caller's context ends with its HTTP request; the planning pass
	// must not.
	go func() {
		if err := p.Execute(context.Background(), trip.ID, req); err != nil {
			zap.L().Error("planning pass failed",
				zap.String("trip_id", trip.ID),
				zap.Error(err),
			)
		}
	}()
	return trip.ID, nil
}

// GetTripStatus returns the trip with whatever results exist so far.
func (p *Planner) GetTripStatus(ctx context.Context, tripID string) (*model.Trip, error) {
	return p.store.GetTrip(ctx, tripID)
}

// ListTrips returns persisted trips matching the filter.
func (p *Planner) ListTrips(ctx context.Context, filter store.TripFilter) ([]model.Trip, error) {
	return p.store.ListTrips(ctx, filter)
}

// RunSingleAgent executes one agent against an empty context, without
// persistence. Debug surface: dependent agents see no upstream results.
func (p *Planner) RunSingleAgent(ctx context.Context, cat model.Category, req model.TripRequest) (model.AgentResult, error) {
	a, ok := p.agents[cat]
	if !ok {
		return model.AgentResult{}, eris.Errorf("orchestrator: unknown category %q", cat)
	}
	if err := req.Validate(time.Now()); err != nil {
		return model.AgentResult{}, err
	}
	return a.Execute(ctx, req, model.NewTripContext()), nil
}

// Execute runs the full planning pass for an already-persisted trip. ctx
// cancellation abandons in-flight retrievals; results already written stay
// usable.
func (p *Planner) Execute(ctx context.Context, tripID string, req model.TripRequest) error {
	log := zap.L().With(
		zap.String("trip_id", tripID),
		zap.String("destination", req.Destination),
	)
	log.Info("planning pass starting", zap.Duration("deadline", p.deadline))

	setStatus := func(status model.TripStatus, errMsg string) {
		if err := p.store.UpdateTripStatus(ctx, tripID, status, errMsg); err != nil {
			log.Warn("failed to update trip status", zap.Error(err))
		}
	}
	setStatus(model.TripStatusRunning, "")

	runCtx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	tc := model.NewTripContext()
	runAgent := func(agentCtx context.Context, cat model.Category) model.AgentResult {
		res := p.agents[cat].Execute(agentCtx, req, tc)
		if err := tc.Put(res); err != nil {
			log.Warn("dropping duplicate agent result", zap.String("category", string(cat)), zap.Error(err))
			return res
		}
		// Write through immediately so a poller sees partial plans.
		if err := p.store.SetAgentResult(ctx, tripID, res); err != nil {
			log.Warn("failed to persist agent result", zap.String("category", string(cat)), zap.Error(err))
		}
		log.Info("agent finished",
			zap.String("category", string(cat)),
			zap.Bool("failed", res.Failed),
			zap.String("provenance", string(res.Provenance)),
			zap.Float64("confidence", res.Confidence),
			zap.Int64("duration_ms", res.DurationMS),
		)
		return res
	}

	// Level one: independent agents in parallel. Agents report failure in
	// the result instead of an error, so the group never short-circuits;
	// a deadline expiry surfaces as failed results from pending agents.
	g, gCtx := errgroup.WithContext(runCtx)
	failures := make(chan model.Category, len(model.IndependentCategories()))
	for _, cat := range model.IndependentCategories() {
		g.Go(func() error {
			if res := runAgent(gCtx, cat); res.Failed {
				failures <- cat
			}
			return nil
		})
	}
	_ = g.Wait()
	close(failures)

	var failed int
	for range failures {
		failed++
	}
	if failed == len(model.IndependentCategories()) {
		msg := "all independent agents failed"
		log.Error(msg)
		setStatus(model.TripStatusFailed, msg)
		return eris.New("orchestrator: " + msg)
	}

	// Level two: dependents run in order over the accumulated context.
	for _, cat := range model.DependentCategories() {
		runAgent(runCtx, cat)
	}

	verification := p.verifier.Verify(req, tc)
	if err := p.store.SetVerification(ctx, tripID, verification); err != nil {
		log.Warn("failed to persist verification", zap.Error(err))
	}
	setStatus(model.TripStatusVerified, "")

	log.Info("planning pass complete",
		zap.Float64("score", verification.Score),
		zap.Bool("passed", verification.Passed),
		zap.Int("failed_agents", failed),
	)
	return nil
}
