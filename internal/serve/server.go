// Package serve exposes the planner over HTTP. Trip creation is
// asynchronous: the POST returns 202 with a trip id and the caller polls
// for results while agents land.
package serve

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/catalog"
	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/orchestrator"
	"github.com/tripcraft/tripcraft/internal/store"
)

// Server wires planner and catalog into HTTP handlers.
type Server struct {
	planner *orchestrator.Planner
	catalog *catalog.Catalog
}

// NewHandler builds the API router.
func NewHandler(planner *orchestrator.Planner, cat *catalog.Catalog) http.Handler {
	s := &Server{planner: planner, catalog: cat}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/trips", s.handleCreateTrip)
		r.Get("/trips", s.handleListTrips)
		r.Get("/trips/{id}", s.handleGetTrip)
		r.Get("/catalog/cities", s.handleCities)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req model.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(time.Now()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tripID, err := s.planner.PlanTrip(r.Context(), req)
	if err != nil {
		zap.L().Error("failed to start planning", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start planning")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"trip_id": tripID,
		"status":  string(model.TripStatusCreated),
	})
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.planner.GetTripStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		zap.L().Error("failed to load trip", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	filter := store.TripFilter{
		Status:      model.TripStatus(r.URL.Query().Get("status")),
		Destination: r.URL.Query().Get("destination"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	trips, err := s.planner.ListTrips(r.Context(), filter)
	if err != nil {
		zap.L().Error("failed to list trips", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list trips")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trips": trips,
		"count": len(trips),
	})
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cities": s.catalog.Cities()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
