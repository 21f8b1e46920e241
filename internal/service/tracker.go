package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"arena-god/internal/constants"
	"arena-god/internal/domain"
	"arena-god/internal/lookup"
	"arena-god/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidRiotID = errors.New("game name and tag line are required")

type TrackerService struct {
	resolver *lookup.Resolver
	storage  *store.Storage
	logger   zerolog.Logger
	details  singleflight.Group
}

func NewTrackerService(resolver *lookup.Resolver, storage *store.Storage, logger zerolog.Logger) *TrackerService {
	return &TrackerService{resolver: resolver, storage: storage, logger: logger}
}

type SyncReport struct {
	RunID        string                `json:"runId"`
	Account      *domain.Account       `json:"account"`
	NewResults   []domain.MatchResult  `json:"newResults"`
	Skipped      int                   `json:"skipped"`
	TotalMatches int                   `json:"totalMatches"`
	Progress     *domain.ArenaProgress `json:"progress"`
}

// Sync resolves the player, pulls their recent Arena matches and folds any
// new placements into the stored history and first-place progress.
func (s *TrackerService) Sync(ctx context.Context, gameName, tagLine string) (*SyncReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.SyncTimeout)
	defer cancel()

	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimPrefix(strings.TrimSpace(tagLine), "#")
	if gameName == "" || tagLine == "" {
		return nil, ErrInvalidRiotID
	}

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	logger := s.logger.With().Str("run_id", runID).Logger()
	logger.Info().Str("name", gameName).Str("tag", tagLine).Msg("sync started")

	acc, err := s.account(ctx, logger, gameName, tagLine)
	if err != nil {
		return nil, err
	}

	ids, err := s.resolver.ResolveMatchIDs(ctx, acc.Puuid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match ids: %w", err)
	}

	history, err := s.storage.MatchHistory(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.storage.ArenaProgress(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(history))
	for _, h := range history {
		known[h.MatchID] = struct{}{}
	}

	report := &SyncReport{RunID: runID, Account: acc, NewResults: []domain.MatchResult{}}
	progressChanged := false

	for _, matchID := range ids {
		if _, ok := known[matchID]; ok {
			continue
		}

		info, err := s.matchDetail(ctx, matchID)
		if err != nil {
			logger.Warn().Err(err).Str("match_id", matchID).Msg("skipping match")
			report.Skipped++
			continue
		}

		result, ok := lookup.FindParticipantResult(info, acc.Puuid)
		if !ok {
			logger.Warn().Str("match_id", matchID).Str("puuid", acc.Puuid).Msg("player not in match participants")
			report.Skipped++
			continue
		}

		report.NewResults = append(report.NewResults, domain.MatchResult{
			MatchID:   matchID,
			Champion:  result.Champion,
			Placement: result.Placement,
		})
		known[matchID] = struct{}{}

		if result.Placement == 1 && !slices.Contains(progress.FirstPlaceChampions, result.Champion) {
			progress.FirstPlaceChampions = append(progress.FirstPlaceChampions, result.Champion)
			progressChanged = true
		}
	}

	if len(report.NewResults) > 0 {
		history = append(slices.Clone(report.NewResults), history...)
		if err := s.storage.SetMatchHistory(ctx, history); err != nil {
			return nil, err
		}
	}
	if progressChanged {
		if err := s.storage.SetArenaProgress(ctx, progress); err != nil {
			return nil, err
		}
	}

	report.TotalMatches = len(history)
	report.Progress = progress

	logger.Info().
		Int("new", len(report.NewResults)).
		Int("skipped", report.Skipped).
		Int("total", report.TotalMatches).
		Int("first_places", len(progress.FirstPlaceChampions)).
		Msg("sync completed")
	return report, nil
}

// account reuses the stored identity when the requested Riot ID matches it.
// A different player replaces the stored identity and its history.
func (s *TrackerService) account(ctx context.Context, logger zerolog.Logger, gameName, tagLine string) (*domain.Account, error) {
	stored, err := s.storage.RiotID(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read stored identity")
	}
	if stored != nil && strings.EqualFold(stored.GameName, gameName) && strings.EqualFold(stored.TagLine, tagLine) {
		logger.Debug().Str("puuid", stored.Puuid).Msg("using stored identity")
		return stored, nil
	}

	acc, err := s.resolver.ResolveAccount(ctx, gameName, tagLine)
	if err != nil {
		return nil, err
	}

	if stored != nil && stored.Puuid != acc.Puuid {
		logger.Info().Str("previous", stored.Puuid).Str("puuid", acc.Puuid).Msg("player changed, clearing history")
		if err := s.storage.ClearPlayer(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.storage.SetRiotID(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// matchDetail shares one in-flight lookup per match id across concurrent
// syncs. The shared lookup runs detached from the caller that started it, so
// cancelling one sync never fails the others waiting on the same match.
func (s *TrackerService) matchDetail(ctx context.Context, matchID string) (*domain.MatchInfo, error) {
	ch := s.details.DoChan(matchID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ExternalAPITimeout)
		defer cancel()
		return s.resolver.CachedMatchDetail(fetchCtx, s.storage, matchID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug().Str("match_id", matchID).Msg("match detail shared with concurrent sync")
		}
		return res.Val.(*domain.MatchInfo), nil
	}
}

func (s *TrackerService) Account(ctx context.Context) (*domain.Account, error) {
	return s.storage.RiotID(ctx)
}

func (s *TrackerService) Progress(ctx context.Context) (*domain.ArenaProgress, error) {
	return s.storage.ArenaProgress(ctx)
}

func (s *TrackerService) History(ctx context.Context) ([]domain.MatchResult, error) {
	return s.storage.MatchHistory(ctx)
}

// Reset forgets the tracked player. Cached match details are kept.
func (s *TrackerService) Reset(ctx context.Context) error {
	s.logger.Info().Msg("resetting tracked player")
	return s.storage.ClearPlayer(ctx)
}
