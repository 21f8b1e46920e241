package store

import (
	"context"
	"encoding/json"
	"fmt"

	"arena-god/internal/domain"

	"github.com/rs/zerolog"
)

const (
	KeyRiotID        = "arena-god-riot-id"
	KeyMatchHistory  = "arena-god-match-history"
	KeyArenaProgress = "arena-god-progress"
	KeyMatchCache    = "arena-god-match-cache"
)

// Storage persists the tracker state under four fixed keys. Each value is
// JSON and is replaced whole on every write.
type Storage struct {
	kv     KV
	logger zerolog.Logger
}

func NewStorage(kv KV, logger zerolog.Logger) *Storage {
	return &Storage{kv: kv, logger: logger}
}

func (s *Storage) RiotID(ctx context.Context) (*domain.Account, error) {
	var acc domain.Account
	found, err := s.load(ctx, KeyRiotID, &acc)
	if err != nil || !found {
		return nil, err
	}
	return &acc, nil
}

func (s *Storage) SetRiotID(ctx context.Context, acc *domain.Account) error {
	return s.save(ctx, KeyRiotID, acc)
}

func (s *Storage) MatchHistory(ctx context.Context) ([]domain.MatchResult, error) {
	history := []domain.MatchResult{}
	if _, err := s.load(ctx, KeyMatchHistory, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.MatchResult{}
	}
	return history, nil
}

func (s *Storage) SetMatchHistory(ctx context.Context, history []domain.MatchResult) error {
	if history == nil {
		history = []domain.MatchResult{}
	}
	return s.save(ctx, KeyMatchHistory, history)
}

func (s *Storage) ArenaProgress(ctx context.Context) (*domain.ArenaProgress, error) {
	progress := &domain.ArenaProgress{}
	if _, err := s.load(ctx, KeyArenaProgress, progress); err != nil {
		return nil, err
	}
	if progress.FirstPlaceChampions == nil {
		progress.FirstPlaceChampions = []string{}
	}
	return progress, nil
}

func (s *Storage) SetArenaProgress(ctx context.Context, progress *domain.ArenaProgress) error {
	return s.save(ctx, KeyArenaProgress, progress)
}

func (s *Storage) MatchCache(ctx context.Context) (map[string]*domain.MatchInfo, error) {
	cache := map[string]*domain.MatchInfo{}
	if _, err := s.load(ctx, KeyMatchCache, &cache); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = map[string]*domain.MatchInfo{}
	}
	return cache, nil
}

func (s *Storage) SetMatchCache(ctx context.Context, cache map[string]*domain.MatchInfo) error {
	return s.save(ctx, KeyMatchCache, cache)
}

func (s *Storage) CachedMatch(ctx context.Context, matchID string) (*domain.MatchInfo, bool, error) {
	cache, err := s.MatchCache(ctx)
	if err != nil {
		return nil, false, err
	}
	info, ok := cache[matchID]
	return info, ok && info != nil, nil
}

// CacheMatch rewrites the whole cache map; concurrent writers race and the
// last one wins.
func (s *Storage) CacheMatch(ctx context.Context, matchID string, info *domain.MatchInfo) error {
	cache, err := s.MatchCache(ctx)
	if err != nil {
		return err
	}
	cache[matchID] = info
	return s.SetMatchCache(ctx, cache)
}

// ClearPlayer drops identity, history and progress but keeps cached matches.
func (s *Storage) ClearPlayer(ctx context.Context) error {
	for _, key := range []string{KeyRiotID, KeyMatchHistory, KeyArenaProgress} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *Storage) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read key")
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Storage) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write key")
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
