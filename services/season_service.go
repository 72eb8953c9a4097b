package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/mauer01/5D-Chess-League-Bot/brackets"
	"github.com/mauer01/5D-Chess-League-Bot/elo"
	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
)

// inactivityThreshold is the number of consecutively missed seasons after
// which a player's rating starts drifting back toward the initial value.
const inactivityThreshold = 2

// DivisionSummary describes one (sub)division created at season start.
type DivisionSummary struct {
	Name     string `json:"name"`
	Players  int    `json:"players"`
	Pairings int    `json:"pairings"`
}

// SeasonStartResult is the success payload of starting a season.
type SeasonStartResult struct {
	SeasonNumber  int               `json:"season_number"`
	TotalPairings int               `json:"total_pairings"`
	Divisions     []DivisionSummary `json:"divisions"`
}

// SeasonEndResult is the success payload of closing a season.
type SeasonEndResult struct {
	EndedSeason int `json:"ended_season"`
	NextSeason  int `json:"next_season"`
}

type SeasonService interface {
	StartSeason(ctx context.Context) (*SeasonStartResult, error)
	EndSeason(ctx context.Context) (*SeasonEndResult, error)
	GetPairings(ctx context.Context, seasonNumber *int, division *string) ([]*models.Pairing, error)
}

type seasonService struct {
	playerRepo  repositories.PlayerRepository
	seasonRepo  repositories.SeasonRepository
	pairingRepo repositories.PairingRepository
	txRunner    repositories.TxRunner
	ranges      []models.LeagueRange
	hub         *brackets.Hub
	logger      *slog.Logger
	rng         *rand.Rand
}

func NewSeasonService(
	playerRepo repositories.PlayerRepository,
	seasonRepo repositories.SeasonRepository,
	pairingRepo repositories.PairingRepository,
	txRunner repositories.TxRunner,
	ranges []models.LeagueRange,
	hub *brackets.Hub,
	logger *slog.Logger,
) SeasonService {
	return &seasonService{
		playerRepo:  playerRepo,
		seasonRepo:  seasonRepo,
		pairingRepo: pairingRepo,
		txRunner:    txRunner,
		ranges:      ranges,
		hub:         hub,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartSeason groups the signed-up players into divisions, generates the
// full round-robin pairing set, and activates the season. When there is
// nobody to group it aborts and leaves the season inactive. Missed-season
// counters and inactivity decay are settled in the same transaction, so a
// player who sits this one out rejoins a later season at the decayed
// rating.
func (s *seasonService) StartSeason(ctx context.Context) (*SeasonStartResult, error) {
	season, err := s.seasonRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load latest season: %w", err)
	}
	if season.Active {
		return nil, ErrSeasonAlreadyActive
	}

	signed, err := s.playerRepo.ListBySignedUp(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(signed) == 0 {
		return nil, ErrNoPlayersToGroup
	}

	rated := make([]brackets.RatedPlayer, len(signed))
	for i, p := range signed {
		rated[i] = brackets.RatedPlayer{ID: p.ID, Elo: p.Elo}
	}
	groups := brackets.GroupPlayers(rated, s.ranges)
	if len(groups) == 0 {
		return nil, ErrNoDivisionsFormed
	}

	// Deterministic division order; subgroup membership is shuffled
	// inside SplitGroup on purpose.
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	var allPairings []*models.Pairing
	var divisions []DivisionSummary
	for _, name := range groupNames {
		subgroups := brackets.SplitGroup(groups[name], s.rng)
		for i, subgroup := range subgroups {
			subName := brackets.SubgroupName(name, i, len(subgroups))
			pairings := brackets.GenerateRoundRobin(subName, season.SeasonNumber, subgroup)
			allPairings = append(allPairings, pairings...)
			divisions = append(divisions, DivisionSummary{
				Name:     subName,
				Players:  len(subgroup),
				Pairings: len(pairings),
			})
		}
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.playerRepo.BumpMissedSeasons(ctx, exec); err != nil {
			return err
		}
		if err := s.playerRepo.DecayInactive(ctx, exec, elo.InitialRating, elo.KFactor, inactivityThreshold); err != nil {
			return err
		}
		if err := s.pairingRepo.CreateBatch(ctx, exec, allPairings); err != nil {
			return err
		}
		return s.seasonRepo.SetActive(ctx, exec, season.SeasonNumber, true)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("season started",
		slog.Int("season", season.SeasonNumber),
		slog.Int("divisions", len(divisions)),
		slog.Int("pairings", len(allPairings)))

	if s.hub != nil {
		for _, div := range divisions {
			s.hub.BroadcastToDivision(models.NormalizeLeagueName(div.Name), brackets.Message{
				Type:     brackets.EventPairingsGenerated,
				Division: models.NormalizeLeagueName(div.Name),
				Payload:  div,
			})
		}
	}

	return &SeasonStartResult{
		SeasonNumber:  season.SeasonNumber,
		TotalPairings: len(allPairings),
		Divisions:     divisions,
	}, nil
}

// EndSeason closes the active season and sets up the next one, which stays
// inactive until explicitly started. Signup flags reset so everyone has to
// opt in again.
func (s *seasonService) EndSeason(ctx context.Context) (*SeasonEndResult, error) {
	season, err := s.seasonRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load latest season: %w", err)
	}
	if !season.Active {
		return nil, ErrNoActiveSeason
	}

	next := season.SeasonNumber + 1
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.seasonRepo.SetActive(ctx, exec, season.SeasonNumber, false); err != nil {
			return err
		}
		if err := s.seasonRepo.Create(ctx, exec, &models.Season{SeasonNumber: next}); err != nil {
			return err
		}
		return s.playerRepo.ResetSignupFlags(ctx, exec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("season ended", slog.Int("season", season.SeasonNumber), slog.Int("next", next))
	return &SeasonEndResult{EndedSeason: season.SeasonNumber, NextSeason: next}, nil
}

// GetPairings lists pairings for a season (default: latest) and optional
// division label. Label matching honors the suffix and synonym
// normalization rules.
func (s *seasonService) GetPairings(ctx context.Context, seasonNumber *int, division *string) ([]*models.Pairing, error) {
	var number int
	if seasonNumber != nil {
		if _, err := s.seasonRepo.GetByNumber(ctx, *seasonNumber); err != nil {
			if errors.Is(err, repositories.ErrSeasonNotFound) {
				return nil, ErrSeasonNotFound
			}
			return nil, err
		}
		number = *seasonNumber
	} else {
		season, err := s.seasonRepo.GetLatest(ctx)
		if err != nil {
			if errors.Is(err, repositories.ErrSeasonNotFound) {
				return nil, ErrSeasonNotFound
			}
			return nil, err
		}
		number = season.SeasonNumber
	}

	pairings, err := s.pairingRepo.ListBySeason(ctx, number, nil)
	if err != nil {
		return nil, err
	}
	if division == nil {
		return pairings, nil
	}

	filtered := make([]*models.Pairing, 0, len(pairings))
	for _, p := range pairings {
		if models.SameLeague(p.GroupName, *division) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
