package lookup

import (
	"context"

	"arena-god/internal/domain"
)

// MatchCache stores validated match details by match id. Entries never expire.
type MatchCache interface {
	CachedMatch(ctx context.Context, matchID string) (*domain.MatchInfo, bool, error)
	CacheMatch(ctx context.Context, matchID string, info *domain.MatchInfo) error
}

// CachedMatchDetail serves matchID from cache when present, otherwise resolves
// it and writes the result through. Cache failures degrade to a plain fetch.
func (r *Resolver) CachedMatchDetail(ctx context.Context, cache MatchCache, matchID string) (*domain.MatchInfo, error) {
	info, ok, err := cache.CachedMatch(ctx, matchID)
	if err != nil {
		r.logger.Warn().Err(err).Str("match_id", matchID).Msg("match cache read failed, fetching")
	} else if ok {
		r.logger.Debug().Str("match_id", matchID).Msg("match served from cache")
		return info, nil
	}

	info, err = r.ResolveMatchDetail(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := cache.CacheMatch(ctx, matchID, info); err != nil {
		r.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to cache match")
	}
	return info, nil
}
