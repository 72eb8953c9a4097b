package services

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
)

type StandingsService interface {
	DivisionRanking(ctx context.Context, seasonNumber int, division string) ([]models.Standing, error)
}

type standingsService struct {
	seasonRepo  repositories.SeasonRepository
	pairingRepo repositories.PairingRepository
	matchRepo   repositories.MatchHistoryRepository
}

func NewStandingsService(
	seasonRepo repositories.SeasonRepository,
	pairingRepo repositories.PairingRepository,
	matchRepo repositories.MatchHistoryRepository,
) StandingsService {
	return &standingsService{
		seasonRepo:  seasonRepo,
		pairingRepo: pairingRepo,
		matchRepo:   matchRepo,
	}
}

// DivisionRanking computes the standings table for one division of a
// season. The roster comes from the pairing set while the season is
// active and from the recorded games once it is over, so historic
// standings survive the pairings being superseded. Points accrue from
// every recorded game of the season; the Sonneborn-Berger tiebreak is
// half the summed points of the opponents a player defeated.
func (s *standingsService) DivisionRanking(ctx context.Context, seasonNumber int, division string) ([]models.Standing, error) {
	season, err := s.seasonRepo.GetByNumber(ctx, seasonNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}

	var (
		pairings []*models.Pairing
		records  []*models.MatchRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	if season.Active {
		g.Go(func() error {
			var err error
			pairings, err = s.pairingRepo.ListBySeason(gctx, seasonNumber, nil)
			return err
		})
	}
	g.Go(func() error {
		var err error
		records, err = s.matchRepo.ListBySeason(gctx, seasonNumber)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roster := make(map[int64]bool)
	if season.Active {
		for _, p := range pairings {
			if models.SameLeague(p.GroupName, division) {
				roster[p.Player1ID] = true
				roster[p.Player2ID] = true
			}
		}
	} else {
		for _, rec := range records {
			if models.SameLeague(rec.League, division) {
				roster[rec.WhitePlayer] = true
				roster[rec.BlackPlayer] = true
			}
		}
	}
	if len(roster) == 0 {
		return []models.Standing{}, nil
	}

	// Points count every recorded game of the season, not only the
	// division-internal ones, so cross-division results still weigh in.
	points := make(map[int64]float64)
	defeated := make(map[int64][]int64)
	for _, rec := range records {
		points[rec.WhitePlayer] += rec.Points(rec.WhitePlayer)
		points[rec.BlackPlayer] += rec.Points(rec.BlackPlayer)
		if loser := rec.Defeated(rec.WhitePlayer); loser != 0 {
			defeated[rec.WhitePlayer] = append(defeated[rec.WhitePlayer], loser)
		}
		if loser := rec.Defeated(rec.BlackPlayer); loser != 0 {
			defeated[rec.BlackPlayer] = append(defeated[rec.BlackPlayer], loser)
		}
	}

	standings := make([]models.Standing, 0, len(roster))
	for playerID := range roster {
		var sb float64
		for _, opponent := range defeated[playerID] {
			sb += points[opponent]
		}
		standings = append(standings, models.Standing{
			PlayerID: playerID,
			Points:   points[playerID],
			SB:       sb / 2,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].SB != standings[j].SB {
			return standings[i].SB > standings[j].SB
		}
		return standings[i].PlayerID < standings[j].PlayerID
	})
	return standings, nil
}
