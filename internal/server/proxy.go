package server

import (
	"context"
	"errors"
	"net/http"

	"arena-god/internal/api"
	"arena-god/internal/constants"
	"arena-god/internal/lookup"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// ProxyServer forwards /api/riot queries upstream so browsers never see the
// API token. Upstream failures are passed through with their status.
type ProxyServer struct {
	upstream lookup.Fetcher
	logger   zerolog.Logger
}

func NewProxyServer(upstream *api.RiotClient, logger zerolog.Logger) *ProxyServer {
	return NewProxyServerWith(upstream, logger)
}

func NewProxyServerWith(upstream lookup.Fetcher, logger zerolog.Logger) *ProxyServer {
	return &ProxyServer{upstream: upstream, logger: logger}
}

func (s *ProxyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, s.logger)

	q, err := api.ParseQuery(r.URL.Query())
	if err != nil {
		var qe *api.QueryError
		if errors.As(err, &qe) {
			writeError(w, http.StatusBadRequest, qe.Message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.ExternalAPITimeout)
	defer cancel()

	resp, err := s.upstream.Fetch(ctx, q)
	if err != nil {
		logger.Error().Err(err).Str("endpoint", string(q.Endpoint)).Str("region", q.Region.String()).Msg("error in riot proxy")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !gjson.ValidBytes(resp.Body) {
		logger.Error().Int("status", resp.Status).Str("endpoint", string(q.Endpoint)).Msg("upstream returned non-JSON body")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusOK
	if !resp.OK() {
		status = resp.Status
		logger.Debug().Int("status", status).Str("endpoint", string(q.Endpoint)).Str("region", q.Region.String()).Msg("upstream error passed through")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(resp.Body) //nolint:errcheck
}
