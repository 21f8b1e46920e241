package lookup

import (
	"context"
	"fmt"

	"arena-god/internal/api"
	"arena-god/internal/constants"
	"arena-god/internal/domain"
	"arena-god/internal/region"

	"github.com/rs/zerolog"
)

// Fetcher issues one upstream query. *api.RiotClient and *ProxyFetcher
// implement it.
type Fetcher interface {
	Fetch(ctx context.Context, q api.Query) (*api.Response, error)
}

// Resolver finds accounts and matches across regional clusters. Requests are
// issued one at a time.
type Resolver struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewResolver(fetcher Fetcher, logger zerolog.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, logger: logger}
}

// ResolveAccount tries every region in order and returns the first account
// that validates. Per-region failures are logged and skipped.
func (r *Resolver) ResolveAccount(ctx context.Context, gameName, tagLine string) (*domain.Account, error) {
	for _, reg := range region.Ordered() {
		resp, err := r.fetch(ctx, api.Query{
			Endpoint: api.EndpointAccount,
			Region:   reg,
			GameName: gameName,
			TagLine:  tagLine,
		})
		if err != nil {
			r.logger.Warn().Err(err).Str("region", reg.String()).Str("name", gameName).Str("tag", tagLine).Msg("failed to find account in region")
			continue
		}

		acc, err := parseAccount(resp.Body)
		if err != nil {
			r.logger.Warn().Err(err).Str("region", reg.String()).Msg("account response failed validation")
			continue
		}

		r.logger.Info().Str("region", reg.String()).Str("puuid", acc.Puuid).Msg("account found")
		return acc, nil
	}

	return nil, fmt.Errorf("%w: %s#%s", ErrAccountNotFound, gameName, tagLine)
}

// ResolveMatchIDs returns the first non-empty page of Arena match ids found
// across regions. An empty result from one region does not stop the search,
// and no matches anywhere is an empty slice rather than an error.
func (r *Resolver) ResolveMatchIDs(ctx context.Context, puuid string) ([]string, error) {
	for _, reg := range region.Ordered() {
		resp, err := r.fetch(ctx, api.Query{
			Endpoint: api.EndpointMatches,
			Region:   reg,
			Puuid:    puuid,
			Queue:    constants.ArenaQueueID,
		})
		if err != nil {
			r.logger.Warn().Err(err).Str("region", reg.String()).Str("puuid", puuid).Msg("failed to fetch matches from region")
			continue
		}

		ids, err := parseMatchIDs(resp.Body)
		if err != nil {
			r.logger.Warn().Err(err).Str("region", reg.String()).Msg("match id response failed validation")
			continue
		}

		if len(ids) > 0 {
			r.logger.Info().Str("region", reg.String()).Int("count", len(ids)).Msg("found matches in region")
			return ids, nil
		}
		r.logger.Debug().Str("region", reg.String()).Str("puuid", puuid).Msg("no matches in region")
	}

	return []string{}, nil
}

// ResolveMatchDetail fetches one match from the region its id was played on.
// There is no fallback to other regions.
func (r *Resolver) ResolveMatchDetail(ctx context.Context, matchID string) (*domain.MatchInfo, error) {
	reg := region.FromMatchID(matchID)

	resp, err := r.fetch(ctx, api.Query{
		Endpoint: api.EndpointMatch,
		Region:   reg,
		MatchID:  matchID,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("region", reg.String()).Str("match_id", matchID).Msg("failed to fetch match info")
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}

	info, err := parseMatchInfo(matchID, resp.Body)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", matchID).Msg("match response failed validation")
		return nil, fmt.Errorf("failed to parse match %s: %w", matchID, err)
	}
	return info, nil
}

func (r *Resolver) fetch(ctx context.Context, q api.Query) (*api.Response, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	resp, err := r.fetcher.Fetch(apiCtx, q)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &UpstreamError{Region: q.Region, Status: resp.Status}
	}
	return resp, nil
}
