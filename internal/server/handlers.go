package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sternrassler/krishi-connect/pkg/pipeline"
	"github.com/Sternrassler/krishi-connect/pkg/weather"
)

// NotFoundMessage is returned for scheme ids missing from the cache.
const NotFoundMessage = "scheme not found in cache"

// SupersededMessage is returned when a newer request canceled this one.
const SupersededMessage = "superseded by a newer request"

// OutcomeHeader carries the pipeline outcome of the request's run.
const OutcomeHeader = "X-Krishi-Outcome"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Readiness check failed")
		respondError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleListSchemes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page := parsePage(r)

	res := s.deps.Pipeline.Run(r.Context(), query, page)
	s.respondRun(w, res)
}

func (s *Server) handleRefreshSchemes(w http.ResponseWriter, r *http.Request) {
	showBanner := true
	if v := r.URL.Query().Get("banner"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "banner must be a boolean")
			return
		}
		showBanner = parsed
	}

	res := s.deps.Pipeline.Refresh(r.Context(), showBanner)
	s.respondRun(w, res)
}

// respondRun writes the view of what the request's own run committed. A run
// that was superseded by a newer one answers 409 instead of the newer run's
// data.
func (s *Server) respondRun(w http.ResponseWriter, res pipeline.Result) {
	if errors.Is(res.Err, pipeline.ErrClosed) {
		respondError(w, http.StatusServiceUnavailable, "pipeline closed")
		return
	}

	w.Header().Set(OutcomeHeader, string(res.Outcome))
	if !res.Committed() {
		respondError(w, http.StatusConflict, SupersededMessage)
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Pipeline.ViewFor(res))
}

func (s *Server) handleSchemeDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok, err := s.deps.Pipeline.Lookup(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed: "+err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, NotFoundMessage)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		respondError(w, http.StatusServiceUnavailable, "job feed not configured")
		return
	}

	page, err := s.deps.Jobs.Page(r.Context(), parsePage(r))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Job feed unavailable")
		respondError(w, http.StatusBadGateway, "Failed to fetch jobs: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.deps.Weather == nil {
		respondError(w, http.StatusServiceUnavailable, "weather not configured")
		return
	}

	coords, err := parseCoordinates(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conditions, err := s.deps.Weather.Current(r.Context(), coords)
	switch {
	case errors.Is(err, weather.ErrMissingAPIKey):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		s.logger.Warn().Err(err).Msg("Weather lookup failed")
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondJSON(w, http.StatusOK, conditions)
	}
}

// parsePage reads a 1-based page, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseCoordinates returns nil when neither lat nor lon is given.
func parseCoordinates(r *http.Request) (*weather.Coordinates, error) {
	q := r.URL.Query()
	lat, lon := q.Get("lat"), q.Get("lon")
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, errors.New("lat and lon must be given together")
	}

	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil || latF < -90 || latF > 90 {
		return nil, errors.New("invalid lat")
	}
	lonF, err := strconv.ParseFloat(lon, 64)
	if err != nil || lonF < -180 || lonF > 180 {
		return nil, errors.New("invalid lon")
	}
	return &weather.Coordinates{Lat: latF, Lon: lonF}, nil
}
