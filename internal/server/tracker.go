package server

import (
	"errors"
	"net/http"

	"arena-god/internal/api"
	"arena-god/internal/constants"
	"arena-god/internal/lookup"
	"arena-god/internal/middleware"
	"arena-god/internal/service"

	"github.com/rs/zerolog"
)

type RateLimitSource interface {
	GetRateLimitInfo() api.RateLimitInfo
}

type TrackerServer struct {
	tracker   *service.TrackerService
	rateLimit RateLimitSource
	logger    zerolog.Logger
}

func NewTrackerServer(tracker *service.TrackerService, riot *api.RiotClient, logger zerolog.Logger) *TrackerServer {
	return NewTrackerServerWith(tracker, riot, logger)
}

func NewTrackerServerWith(tracker *service.TrackerService, rateLimit RateLimitSource, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{tracker: tracker, rateLimit: rateLimit, logger: logger}
}

// Register mounts the tracker API and the riot proxy on mux. Every route is
// bounded by RequestTimeout except /api/player, which runs under the sync's
// own SyncTimeout.
func (s *TrackerServer) Register(mux *http.ServeMux, proxy *ProxyServer) {
	bounded := middleware.Timeout(constants.RequestTimeout)

	mux.Handle("GET "+constants.ProxyRoutePath, bounded(proxy))
	mux.HandleFunc("GET /api/player", s.GetPlayer)
	mux.Handle("GET /api/account", bounded(http.HandlerFunc(s.GetAccount)))
	mux.Handle("GET /api/progress", bounded(http.HandlerFunc(s.GetProgress)))
	mux.Handle("GET /api/history", bounded(http.HandlerFunc(s.GetHistory)))
	mux.Handle("POST /api/reset", bounded(http.HandlerFunc(s.Reset)))
	mux.HandleFunc("GET /api/ratelimit", s.GetRateLimit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})
}

func (s *TrackerServer) GetPlayer(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, s.logger)
	gameName := r.URL.Query().Get("gameName")
	tagLine := r.URL.Query().Get("tagLine")

	report, err := s.tracker.Sync(r.Context(), gameName, tagLine)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, service.ErrInvalidRiotID):
		writeError(w, http.StatusBadRequest, "Game name and tag line are required")
	case errors.Is(err, lookup.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "Account not found in any region")
	default:
		logger.Error().Err(err).Str("name", gameName).Str("tag", tagLine).Msg("sync failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *TrackerServer) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.tracker.Account(r.Context())
	if err != nil {
		requestLogger(r, s.logger).Error().Err(err).Msg("failed to load account")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "No player tracked")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *TrackerServer) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.tracker.Progress(r.Context())
	if err != nil {
		requestLogger(r, s.logger).Error().Err(err).Msg("failed to load progress")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *TrackerServer) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.tracker.History(r.Context())
	if err != nil {
		requestLogger(r, s.logger).Error().Err(err).Msg("failed to load history")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *TrackerServer) Reset(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(r.Context()); err != nil {
		requestLogger(r, s.logger).Error().Err(err).Msg("failed to reset")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *TrackerServer) GetRateLimit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rateLimit.GetRateLimitInfo())
}
