package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mauer01/5D-Chess-League-Bot/brackets"
	"github.com/mauer01/5D-Chess-League-Bot/elo"
	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
)

// StalenessWindow bounds the lifetime of an unconfirmed report. Reports
// older than this are no longer confirmable and get purged by the sweep.
const StalenessWindow = 30 * time.Minute

// ReportStatus tells the caller how far a submission got.
type ReportStatus string

const (
	StatusAwaitingConfirmation ReportStatus = "awaiting_confirmation"
	StatusGameConfirmed        ReportStatus = "game_confirmed"
	StatusMatchCompleted       ReportStatus = "match_completed"
)

// PlayerUpdate describes one player's share of a completed match.
type PlayerUpdate struct {
	PlayerID int64   `json:"player_id"`
	OldElo   float64 `json:"old_elo"`
	NewElo   float64 `json:"new_elo"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Draws    int     `json:"draws"`
}

// ReportOutcome is the structured success payload of a report submission.
type ReportOutcome struct {
	Status     ReportStatus `json:"status"`
	GameNumber int          `json:"game_number"`
	PairingID  int          `json:"pairing_id"`
	// ExpectedReply names the claim the opponent has to submit to
	// confirm, only set while awaiting confirmation.
	ExpectedReply string `json:"expected_reply,omitempty"`
	// Player1/Player2 carry the rating updates once both games of the
	// pairing are confirmed.
	Player1 *PlayerUpdate `json:"player1,omitempty"`
	Player2 *PlayerUpdate `json:"player2,omitempty"`
}

// ReportService resolves the two-sided report/confirmation protocol into
// confirmed game results and, when a pairing completes, rating updates.
type ReportService interface {
	SubmitReport(ctx context.Context, reporterID, opponentID int64, gameNumber int, claim string) (*ReportOutcome, error)
	CancelReport(ctx context.Context, reporterID, opponentID int64, claim string) error
	PurgeStaleReports(ctx context.Context) (int64, error)
}

type reportService struct {
	playerRepo  repositories.PlayerRepository
	seasonRepo  repositories.SeasonRepository
	pairingRepo repositories.PairingRepository
	pendingRepo repositories.PendingReportRepository
	matchRepo   repositories.MatchHistoryRepository
	eloRepo     repositories.EloHistoryRepository
	txRunner    repositories.TxRunner
	hub         *brackets.Hub
	logger      *slog.Logger

	now func() time.Time
}

func NewReportService(
	playerRepo repositories.PlayerRepository,
	seasonRepo repositories.SeasonRepository,
	pairingRepo repositories.PairingRepository,
	pendingRepo repositories.PendingReportRepository,
	matchRepo repositories.MatchHistoryRepository,
	eloRepo repositories.EloHistoryRepository,
	txRunner repositories.TxRunner,
	hub *brackets.Hub,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		playerRepo:  playerRepo,
		seasonRepo:  seasonRepo,
		pairingRepo: pairingRepo,
		pendingRepo: pendingRepo,
		matchRepo:   matchRepo,
		eloRepo:     eloRepo,
		txRunner:    txRunner,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

// canonicalResult translates a claim into the slot's canonical numeric
// outcome, which is always seat 1's score: a win claimed from seat 2 means
// seat 1 scored 0.
func canonicalResult(claim string, seat int) float64 {
	switch claim {
	case models.ClaimDraw:
		return 0.5
	case models.ClaimWin:
		if seat == 1 {
			return 1.0
		}
		return 0.0
	default: // loss
		if seat == 1 {
			return 0.0
		}
		return 1.0
	}
}

// buildMatchRecord maps a confirmed slot into history. Physical colors
// alternate between the two games of a pairing: seat 1 is white in game 1
// and black in game 2, so game 2 swaps the seats and inverts the canonical
// value before translating it to a color.
func buildMatchRecord(pairing *models.Pairing, gameNumber int, canonical float64) *models.MatchRecord {
	white, black := pairing.Player1ID, pairing.Player2ID
	value := canonical
	if gameNumber == 2 {
		white, black = black, white
		value = 1 - canonical
	}

	colorWon := models.ColorWonDraw
	switch value {
	case 1.0:
		colorWon = models.ColorWonWhite
	case 0.0:
		colorWon = models.ColorWonBlack
	}

	return &models.MatchRecord{
		WhitePlayer: white,
		BlackPlayer: black,
		ColorWon:    colorWon,
		Season:      pairing.SeasonNumber,
		League:      pairing.GroupName,
	}
}

func (s *reportService) SubmitReport(ctx context.Context, reporterID, opponentID int64, gameNumber int, claim string) (*ReportOutcome, error) {
	if gameNumber != 1 && gameNumber != 2 {
		return nil, ErrInvalidGameNumber
	}
	if !models.ValidClaim(claim) {
		return nil, ErrInvalidClaim
	}
	if reporterID == opponentID {
		return nil, ErrSelfReport
	}

	if _, err := s.playerRepo.GetByID(ctx, reporterID); err != nil {
		return nil, mapPlayerError(err)
	}
	if _, err := s.playerRepo.GetByID(ctx, opponentID); err != nil {
		return nil, mapPlayerError(err)
	}

	season, err := s.seasonRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrNoActiveSeason
		}
		return nil, fmt.Errorf("failed to load latest season: %w", err)
	}
	if !season.Active {
		return nil, ErrNoActiveSeason
	}

	found, err := s.pairingRepo.FindBetweenPlayers(ctx, season.SeasonNumber, reporterID, opponentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPairingNotFound) {
			return nil, ErrNoPairingFound
		}
		return nil, fmt.Errorf("failed to look up pairing: %w", err)
	}

	cutoff := s.now().Add(-StalenessWindow)
	var outcome *ReportOutcome

	// Everything from the slot re-check to the rating update runs under
	// the pairing row lock, so two near-simultaneous confirmations cannot
	// both observe an unset slot.
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		pairing, err := s.pairingRepo.GetForUpdate(ctx, exec, found.ID)
		if err != nil {
			return fmt.Errorf("failed to lock pairing %d: %w", found.ID, err)
		}
		if pairing.Result(gameNumber) != nil {
			return ErrAlreadyReported
		}

		existing, err := s.pendingRepo.GetBySlot(ctx, exec, pairing.ID, gameNumber, cutoff)
		if err != nil {
			if !errors.Is(err, repositories.ErrPendingReportNotFound) {
				return fmt.Errorf("failed to look up pending report: %w", err)
			}

			report := &models.PendingReport{
				PairingID:  pairing.ID,
				ReporterID: reporterID,
				Result:     claim,
				GameNumber: gameNumber,
			}
			if err := s.pendingRepo.Create(ctx, exec, report); err != nil {
				return err
			}
			outcome = &ReportOutcome{
				Status:        StatusAwaitingConfirmation,
				GameNumber:    gameNumber,
				PairingID:     pairing.ID,
				ExpectedReply: models.OppositeClaim(claim),
			}
			return nil
		}

		if existing.ReporterID == reporterID {
			return ErrDuplicateReport
		}
		if claim != models.OppositeClaim(existing.Result) {
			// Pending report stays untouched; the players have to
			// sort the disagreement out and one of them resubmits.
			return ErrConflictingResults
		}

		return s.confirmSlot(ctx, exec, pairing, gameNumber, canonicalResult(claim, pairing.Seat(reporterID)), &outcome)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastOutcome(found.GroupName, outcome)
	return outcome, nil
}

// confirmSlot writes the canonical result, appends match history, drops the
// pending reports, and, when this was the pairing's last open slot, applies
// the rating updates. Runs inside the caller's transaction.
func (s *reportService) confirmSlot(ctx context.Context, exec repositories.SQLExecutor, pairing *models.Pairing, gameNumber int, canonical float64, outcome **ReportOutcome) error {
	if err := s.pairingRepo.SetResult(ctx, exec, pairing.ID, gameNumber, canonical); err != nil {
		if errors.Is(err, repositories.ErrResultAlreadySet) {
			return ErrAlreadyReported
		}
		return err
	}
	if err := s.matchRepo.Create(ctx, exec, buildMatchRecord(pairing, gameNumber, canonical)); err != nil {
		return err
	}
	if err := s.pendingRepo.DeleteByPairing(ctx, exec, pairing.ID); err != nil {
		return err
	}

	if gameNumber == 1 {
		pairing.Result1 = &canonical
	} else {
		pairing.Result2 = &canonical
	}

	if !pairing.Complete() {
		*outcome = &ReportOutcome{
			Status:     StatusGameConfirmed,
			GameNumber: gameNumber,
			PairingID:  pairing.ID,
		}
		return nil
	}

	// The pairing lock serializes confirmations of this pairing only; a
	// player's other pairings can complete concurrently. Lock both player
	// rows before reading the ratings, in ascending id order so two
	// matches sharing a player cannot deadlock.
	firstID, secondID := pairing.Player1ID, pairing.Player2ID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.playerRepo.GetForUpdate(ctx, exec, firstID)
	if err != nil {
		return mapPlayerError(err)
	}
	second, err := s.playerRepo.GetForUpdate(ctx, exec, secondID)
	if err != nil {
		return mapPlayerError(err)
	}
	player1, player2 := first, second
	if pairing.Player1ID != firstID {
		player1, player2 = second, first
	}

	stats1, stats2 := elo.MatchStats(*pairing.Result1, *pairing.Result2, player1.Elo, player2.Elo)

	for _, update := range []struct {
		player *models.Player
		stats  elo.PlayerStats
	}{
		{player1, stats1},
		{player2, stats2},
	} {
		change := &models.EloChange{
			PlayerID:  update.player.ID,
			EloChange: update.stats.Elo - update.player.Elo,
		}
		if err := s.eloRepo.Create(ctx, exec, change); err != nil {
			return err
		}
		if err := s.playerRepo.ApplyMatchStats(ctx, exec, update.player.ID,
			update.stats.Elo, update.stats.Wins, update.stats.Losses, update.stats.Draws); err != nil {
			return err
		}
	}

	*outcome = &ReportOutcome{
		Status:     StatusMatchCompleted,
		GameNumber: gameNumber,
		PairingID:  pairing.ID,
		Player1: &PlayerUpdate{
			PlayerID: player1.ID,
			OldElo:   player1.Elo,
			NewElo:   stats1.Elo,
			Wins:     stats1.Wins,
			Losses:   stats1.Losses,
			Draws:    stats1.Draws,
		},
		Player2: &PlayerUpdate{
			PlayerID: player2.ID,
			OldElo:   player2.Elo,
			NewElo:   stats2.Elo,
			Wins:     stats2.Wins,
			Losses:   stats2.Losses,
			Draws:    stats2.Draws,
		},
	}
	return nil
}

func (s *reportService) broadcastOutcome(groupName string, outcome *ReportOutcome) {
	if s.hub == nil || outcome == nil {
		return
	}
	division := models.NormalizeLeagueName(groupName)
	switch outcome.Status {
	case StatusGameConfirmed:
		s.hub.BroadcastToDivision(division, brackets.Message{
			Type:     brackets.EventGameConfirmed,
			Division: division,
			Payload:  outcome,
		})
	case StatusMatchCompleted:
		s.hub.BroadcastToDivision(division, brackets.Message{
			Type:     brackets.EventMatchCompleted,
			Division: division,
			Payload:  outcome,
		})
	}
}

func (s *reportService) CancelReport(ctx context.Context, reporterID, opponentID int64, claim string) error {
	if !models.ValidClaim(claim) {
		return ErrInvalidClaim
	}
	if reporterID == opponentID {
		return ErrSelfReport
	}

	season, err := s.seasonRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return ErrNoActiveSeason
		}
		return fmt.Errorf("failed to load latest season: %w", err)
	}
	if !season.Active {
		return ErrNoActiveSeason
	}

	pairing, err := s.pairingRepo.FindBetweenPlayers(ctx, season.SeasonNumber, reporterID, opponentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPairingNotFound) {
			return ErrNoPairingFound
		}
		return fmt.Errorf("failed to look up pairing: %w", err)
	}

	cutoff := s.now().Add(-StalenessWindow)
	report, err := s.pendingRepo.GetByReporter(ctx, reporterID, pairing.ID, cutoff)
	if err != nil {
		if errors.Is(err, repositories.ErrPendingReportNotFound) {
			return ErrNoPendingReport
		}
		return fmt.Errorf("failed to look up pending report: %w", err)
	}

	// Only the exact original claim cancels; this guards against
	// cancelling a different submission than the one the player means.
	if report.Result != claim {
		return ErrCancelClaimMismatch
	}

	return s.pendingRepo.Delete(ctx, report.ID)
}

// PurgeStaleReports removes reports past the staleness window. Safe to run
// repeatedly and concurrently with submissions; deleting an already-deleted
// report is a no-op.
func (s *reportService) PurgeStaleReports(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-StalenessWindow)
	deleted, err := s.pendingRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged stale pending reports", slog.Int64("count", deleted))
	}
	return deleted, nil
}

func mapPlayerError(err error) error {
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrNotRegistered
	}
	return err
}
