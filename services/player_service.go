package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mauer01/5D-Chess-League-Bot/elo"
	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 25
)

// PlayerStatsView is the stats payload with the derived fields the chat
// adapter renders.
type PlayerStatsView struct {
	Player     *models.Player `json:"player"`
	TotalGames int            `json:"total_games"`
	WinRate    float64        `json:"win_rate"`
}

type PlayerService interface {
	Register(ctx context.Context, playerID int64) (*models.Player, error)
	SignUp(ctx context.Context, playerID int64) error
	GetStats(ctx context.Context, playerID int64) (*PlayerStatsView, error)
	Leaderboard(ctx context.Context, limit int, filterIDs []int64) ([]*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	seasonRepo repositories.SeasonRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository, seasonRepo repositories.SeasonRepository) PlayerService {
	return &playerService{playerRepo: playerRepo, seasonRepo: seasonRepo}
}

func (s *playerService) Register(ctx context.Context, playerID int64) (*models.Player, error) {
	player := &models.Player{ID: playerID, Elo: elo.InitialRating}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerAlreadyRegistered) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return player, nil
}

// SignUp flags a player for the upcoming season. Signups close as soon as
// the season is activated.
func (s *playerService) SignUp(ctx context.Context, playerID int64) error {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return mapPlayerError(err)
	}

	season, err := s.seasonRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return ErrSeasonNotFound
		}
		return fmt.Errorf("failed to load latest season: %w", err)
	}
	if season.Active {
		return ErrSeasonAlreadyActive
	}

	return s.playerRepo.SetSignedUp(ctx, playerID, true)
}

func (s *playerService) GetStats(ctx context.Context, playerID int64) (*PlayerStatsView, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return &PlayerStatsView{
		Player:     player,
		TotalGames: player.TotalGames(),
		WinRate:    player.WinRate(),
	}, nil
}

// Leaderboard returns the top players by rating. The optional filter set
// lets the chat adapter scope the board to a role's members; limits are
// clamped to at most 25 rows, defaulting to 10.
func (s *playerService) Leaderboard(ctx context.Context, limit int, filterIDs []int64) ([]*models.Player, error) {
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return s.playerRepo.ListTop(ctx, limit, filterIDs)
}
