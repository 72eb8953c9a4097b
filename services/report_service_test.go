package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

type reportFixture struct {
	players *fakePlayerRepo
	seasons *fakeSeasonRepo
	pairing *fakePairingRepo
	pending *fakePendingReportRepo
	matches *fakeMatchHistoryRepo
	elo     *fakeEloHistoryRepo
	svc     *reportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	f := &reportFixture{
		players: newFakePlayerRepo(),
		seasons: newFakeSeasonRepo(),
		pairing: newFakePairingRepo(),
		pending: newFakePendingReportRepo(),
		matches: newFakeMatchHistoryRepo(),
		elo:     newFakeEloHistoryRepo(),
	}
	f.players.add(&models.Player{ID: 1, Elo: 1400})
	f.players.add(&models.Player{ID: 2, Elo: 1400})
	require.NoError(t, f.seasons.Create(context.Background(), nil, &models.Season{SeasonNumber: 1, Active: true}))
	require.NoError(t, f.pairing.CreateBatch(context.Background(), nil, []*models.Pairing{
		{Player1ID: 1, Player2ID: 2, SeasonNumber: 1, GroupName: "Lazy League"},
	}))

	svc := NewReportService(f.players, f.seasons, f.pairing, f.pending, f.matches, f.elo,
		fakeTxRunner{}, nil, slog.Default())
	f.svc = svc.(*reportService)
	return f
}

func TestSubmitReportFirstClaimAwaitsConfirmation(t *testing.T) {
	f := newReportFixture(t)

	outcome, err := f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	assert.Equal(t, StatusAwaitingConfirmation, outcome.Status)
	assert.Equal(t, models.ClaimLoss, outcome.ExpectedReply)
	assert.Equal(t, 1, outcome.GameNumber)

	pairing, err := f.pairing.GetByID(context.Background(), outcome.PairingID)
	require.NoError(t, err)
	assert.Nil(t, pairing.Result1)
}

func TestSubmitReportOppositeClaimConfirmsGame(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	outcome, err := f.svc.SubmitReport(context.Background(), 2, 1, 1, models.ClaimLoss)
	require.NoError(t, err)
	assert.Equal(t, StatusGameConfirmed, outcome.Status)

	pairing, err := f.pairing.GetByID(context.Background(), outcome.PairingID)
	require.NoError(t, err)
	require.NotNil(t, pairing.Result1)
	assert.Equal(t, 1.0, *pairing.Result1)

	// Game 1: seat 1 is white and won.
	records, err := f.matches.ListBySeason(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].WhitePlayer)
	assert.Equal(t, int64(2), records[0].BlackPlayer)
	assert.Equal(t, models.ColorWonWhite, records[0].ColorWon)
	assert.Equal(t, "Lazy League", records[0].League)

	// Confirmation consumes the pending report.
	_, err = f.pending.GetBySlot(context.Background(), nil, pairing.ID, 1, time.Time{})
	assert.Error(t, err)
}

func TestSubmitReportSeatTwoWinIsCanonicalZero(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.SubmitReport(context.Background(), 2, 1, 1, models.ClaimWin)
	require.NoError(t, err)
	outcome, err := f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimLoss)
	require.NoError(t, err)

	pairing, err := f.pairing.GetByID(context.Background(), outcome.PairingID)
	require.NoError(t, err)
	require.NotNil(t, pairing.Result1)
	assert.Equal(t, 0.0, *pairing.Result1)

	// Seat 2 won game 1 as black.
	records, err := f.matches.ListBySeason(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.ColorWonBlack, records[0].ColorWon)
}

func TestSubmitReportCompletesMatchAndAppliesRatings(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	// Game 1: player 1 wins.
	_, err := f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)
	_, err = f.svc.SubmitReport(ctx, 2, 1, 1, models.ClaimLoss)
	require.NoError(t, err)

	// Game 2: draw. This closes the pairing.
	_, err = f.svc.SubmitReport(ctx, 1, 2, 2, models.ClaimDraw)
	require.NoError(t, err)
	outcome, err := f.svc.SubmitReport(ctx, 2, 1, 2, models.ClaimDraw)
	require.NoError(t, err)

	assert.Equal(t, StatusMatchCompleted, outcome.Status)
	require.NotNil(t, outcome.Player1)
	require.NotNil(t, outcome.Player2)
	assert.InDelta(t, 1411.60, outcome.Player1.NewElo, 0.05)
	assert.InDelta(t, 1388.40, outcome.Player2.NewElo, 0.05)

	player1, err := f.players.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, player1.Wins)
	assert.Equal(t, 0, player1.Losses)
	assert.Equal(t, 1, player1.Draws)
	assert.InDelta(t, 1411.60, player1.Elo, 0.05)

	player2, err := f.players.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, player2.Wins)
	assert.Equal(t, 1, player2.Losses)
	assert.Equal(t, 1, player2.Draws)

	// Game 2 swaps the colors: seat 2 played white and drew.
	records, err := f.matches.ListBySeason(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[1].WhitePlayer)
	assert.Equal(t, int64(1), records[1].BlackPlayer)
	assert.Equal(t, models.ColorWonDraw, records[1].ColorWon)

	// One rating change entry per player, symmetric around zero.
	changes, err := f.elo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.InDelta(t, 0, changes[0].EloChange+changes[1].EloChange, 1e-9)
}

func TestCompletionLocksPlayersInAscendingIDOrder(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	// Seat 1 carries the higher id; the lock order must still be
	// ascending by id, independent of seating.
	f.players.add(&models.Player{ID: 7, Elo: 1400})
	f.players.add(&models.Player{ID: 3, Elo: 1400})
	require.NoError(t, f.pairing.CreateBatch(ctx, nil, []*models.Pairing{
		{Player1ID: 7, Player2ID: 3, SeasonNumber: 1, GroupName: "Lazy League"},
	}))

	_, err := f.svc.SubmitReport(ctx, 7, 3, 1, models.ClaimWin)
	require.NoError(t, err)
	_, err = f.svc.SubmitReport(ctx, 3, 7, 1, models.ClaimLoss)
	require.NoError(t, err)
	_, err = f.svc.SubmitReport(ctx, 7, 3, 2, models.ClaimDraw)
	require.NoError(t, err)
	outcome, err := f.svc.SubmitReport(ctx, 3, 7, 2, models.ClaimDraw)
	require.NoError(t, err)

	require.Equal(t, StatusMatchCompleted, outcome.Status)
	assert.Equal(t, []int64{3, 7}, f.players.lockedReads)

	// Seat mapping survives the lock-order swap.
	assert.Equal(t, int64(7), outcome.Player1.PlayerID)
	assert.Equal(t, 1, outcome.Player1.Wins)
	assert.Equal(t, int64(3), outcome.Player2.PlayerID)
	assert.Equal(t, 1, outcome.Player2.Losses)
}

func TestCompletionRatesAgainstLockedRatings(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	// A confirmation of the player's other pairing committed after the
	// unlocked existence checks: the pool still serves 1400, the locked
	// row already carries 1425.
	f.players.add(&models.Player{ID: 1, Elo: 1425})
	f.players.staleByID = map[int64]*models.Player{
		1: {ID: 1, Elo: 1400},
	}

	_, err := f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimDraw)
	require.NoError(t, err)
	_, err = f.svc.SubmitReport(ctx, 2, 1, 1, models.ClaimDraw)
	require.NoError(t, err)
	_, err = f.svc.SubmitReport(ctx, 1, 2, 2, models.ClaimDraw)
	require.NoError(t, err)
	outcome, err := f.svc.SubmitReport(ctx, 2, 1, 2, models.ClaimDraw)
	require.NoError(t, err)

	require.Equal(t, StatusMatchCompleted, outcome.Status)
	assert.Equal(t, 1425.0, outcome.Player1.OldElo)
	assert.Less(t, outcome.Player1.NewElo, 1425.0)
	assert.Greater(t, outcome.Player1.NewElo, 1400.0)
}

func TestSubmitReportDuplicateFromSameReporter(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	_, err = f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrDuplicateReport)
}

func TestSubmitReportConflictingClaimsKeepPending(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	// Both claim a win: disagreement, nothing is confirmed.
	_, err = f.svc.SubmitReport(context.Background(), 2, 1, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrConflictingResults)

	// The original claim survives, so a corrected reply still confirms.
	outcome, err := f.svc.SubmitReport(context.Background(), 2, 1, 1, models.ClaimLoss)
	require.NoError(t, err)
	assert.Equal(t, StatusGameConfirmed, outcome.Status)
}

func TestSubmitReportValidation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitReport(ctx, 1, 2, 3, models.ClaimWin)
	assert.ErrorIs(t, err, ErrInvalidGameNumber)

	_, err = f.svc.SubmitReport(ctx, 1, 2, 1, "x")
	assert.ErrorIs(t, err, ErrInvalidClaim)

	_, err = f.svc.SubmitReport(ctx, 1, 1, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrSelfReport)

	_, err = f.svc.SubmitReport(ctx, 99, 2, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrNotRegistered)

	f.players.add(&models.Player{ID: 3, Elo: 1380})
	_, err = f.svc.SubmitReport(ctx, 1, 3, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrNoPairingFound)
}

func TestSubmitReportRequiresActiveSeason(t *testing.T) {
	f := newReportFixture(t)
	require.NoError(t, f.seasons.SetActive(context.Background(), nil, 1, false))

	_, err := f.svc.SubmitReport(context.Background(), 1, 2, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrNoActiveSeason)
}

func TestSubmitReportRejectsSettledSlot(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)
	_, err = f.svc.SubmitReport(ctx, 2, 1, 1, models.ClaimLoss)
	require.NoError(t, err)

	_, err = f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimWin)
	assert.ErrorIs(t, err, ErrAlreadyReported)
}

func TestSubmitReportIgnoresStalePending(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	base := time.Now()
	f.svc.now = func() time.Time { return base }
	_, err := f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	// Past the staleness window the old claim no longer confirms; the
	// opponent's report opens a fresh waiting slot instead.
	f.svc.now = func() time.Time { return base.Add(StalenessWindow + time.Minute) }
	outcome, err := f.svc.SubmitReport(ctx, 2, 1, 1, models.ClaimLoss)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingConfirmation, outcome.Status)
}

func TestCancelReport(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	// Only the exact original claim cancels.
	err = f.svc.CancelReport(ctx, 1, 2, models.ClaimDraw)
	assert.ErrorIs(t, err, ErrCancelClaimMismatch)

	require.NoError(t, f.svc.CancelReport(ctx, 1, 2, models.ClaimWin))

	err = f.svc.CancelReport(ctx, 1, 2, models.ClaimWin)
	assert.ErrorIs(t, err, ErrNoPendingReport)
}

func TestPurgeStaleReports(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	base := time.Now()
	f.svc.now = func() time.Time { return base }
	_, err := f.svc.SubmitReport(ctx, 1, 2, 1, models.ClaimWin)
	require.NoError(t, err)

	purged, err := f.svc.PurgeStaleReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)

	f.svc.now = func() time.Time { return base.Add(StalenessWindow + time.Minute) }
	purged, err = f.svc.PurgeStaleReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// Idempotent.
	purged, err = f.svc.PurgeStaleReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)
}
