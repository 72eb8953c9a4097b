package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauer01/5D-Chess-League-Bot/elo"
	"github.com/mauer01/5D-Chess-League-Bot/models"
)

func newPlayerFixture(t *testing.T) (*fakePlayerRepo, *fakeSeasonRepo, PlayerService) {
	t.Helper()
	players := newFakePlayerRepo()
	seasons := newFakeSeasonRepo()
	require.NoError(t, seasons.Create(context.Background(), nil, &models.Season{SeasonNumber: 1}))
	return players, seasons, NewPlayerService(players, seasons)
}

func TestRegisterNewPlayer(t *testing.T) {
	_, _, svc := newPlayerFixture(t)

	player, err := svc.Register(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), player.ID)
	assert.Equal(t, float64(elo.InitialRating), player.Elo)
	assert.False(t, player.SignedUp)

	_, err = svc.Register(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestSignUp(t *testing.T) {
	players, seasons, svc := newPlayerFixture(t)
	ctx := context.Background()

	err := svc.SignUp(ctx, 42)
	assert.ErrorIs(t, err, ErrNotRegistered)

	players.add(&models.Player{ID: 42, Elo: 1380})
	require.NoError(t, svc.SignUp(ctx, 42))

	signed, err := players.ListBySignedUp(ctx, true)
	require.NoError(t, err)
	require.Len(t, signed, 1)
	assert.Equal(t, int64(42), signed[0].ID)

	// Signups close once the season is running.
	require.NoError(t, seasons.SetActive(ctx, nil, 1, true))
	err = svc.SignUp(ctx, 42)
	assert.ErrorIs(t, err, ErrSeasonAlreadyActive)
}

func TestGetStats(t *testing.T) {
	players, _, svc := newPlayerFixture(t)

	players.add(&models.Player{ID: 1, Elo: 1450, Wins: 3, Losses: 1, Draws: 2})

	stats, err := svc.GetStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalGames)
	// Draws count as half a win: (3 + 1) / 6.
	assert.InDelta(t, 66.67, stats.WinRate, 0.01)

	_, err = svc.GetStats(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestLeaderboard(t *testing.T) {
	players, _, svc := newPlayerFixture(t)
	ctx := context.Background()

	for i := int64(1); i <= 30; i++ {
		players.add(&models.Player{ID: i, Elo: 1300 + float64(i)})
	}

	top, err := svc.Leaderboard(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, int64(30), top[0].ID)

	// Requests above the cap get clamped, not rejected.
	top, err = svc.Leaderboard(ctx, 100, nil)
	require.NoError(t, err)
	assert.Len(t, top, 25)

	_, err = svc.Leaderboard(ctx, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	top, err = svc.Leaderboard(ctx, 5, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(3), top[0].ID)
}
