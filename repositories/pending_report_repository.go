package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

var ErrPendingReportNotFound = errors.New("pending report not found")

// PendingReportRepository stores the one-sided report submissions waiting
// for the opponent's confirmation. Lookups take a staleness cutoff: reports
// older than the cutoff are treated as if already purged, so the sweep and
// the confirmation path agree on what is still confirmable.
type PendingReportRepository interface {
	Create(ctx context.Context, exec SQLExecutor, report *models.PendingReport) error
	GetBySlot(ctx context.Context, exec SQLExecutor, pairingID, gameNumber int, cutoff time.Time) (*models.PendingReport, error)
	GetByReporter(ctx context.Context, reporterID int64, pairingID int, cutoff time.Time) (*models.PendingReport, error)
	Delete(ctx context.Context, id int) error
	DeleteByPairing(ctx context.Context, exec SQLExecutor, pairingID int) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresPendingReportRepository struct {
	db *sql.DB
}

func NewPostgresPendingReportRepository(db *sql.DB) PendingReportRepository {
	return &postgresPendingReportRepository{db: db}
}

const pendingReportColumns = "id, pairing_id, reporter_id, result, game_number, timestamp"

func scanPendingReport(row interface{ Scan(...interface{}) error }) (*models.PendingReport, error) {
	rep := &models.PendingReport{}
	err := row.Scan(&rep.ID, &rep.PairingID, &rep.ReporterID, &rep.Result, &rep.GameNumber, &rep.Timestamp)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *postgresPendingReportRepository) Create(ctx context.Context, exec SQLExecutor, report *models.PendingReport) error {
	query := `
		INSERT INTO pending_reps (pairing_id, reporter_id, result, game_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp`

	err := exec.QueryRowContext(ctx, query,
		report.PairingID,
		report.ReporterID,
		report.Result,
		report.GameNumber,
	).Scan(&report.ID, &report.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert pending report for pairing %d: %w", report.PairingID, err)
	}
	return nil
}

func (r *postgresPendingReportRepository) GetBySlot(ctx context.Context, exec SQLExecutor, pairingID, gameNumber int, cutoff time.Time) (*models.PendingReport, error) {
	query := `
		SELECT ` + pendingReportColumns + `
		FROM pending_reps
		WHERE pairing_id = $1 AND game_number = $2 AND timestamp >= $3
		ORDER BY timestamp DESC
		LIMIT 1`

	rep, err := scanPendingReport(exec.QueryRowContext(ctx, query, pairingID, gameNumber, cutoff))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPendingReportNotFound
		}
		return nil, fmt.Errorf("failed to scan pending report for pairing %d game %d: %w", pairingID, gameNumber, err)
	}
	return rep, nil
}

func (r *postgresPendingReportRepository) GetByReporter(ctx context.Context, reporterID int64, pairingID int, cutoff time.Time) (*models.PendingReport, error) {
	query := `
		SELECT ` + pendingReportColumns + `
		FROM pending_reps
		WHERE reporter_id = $1 AND pairing_id = $2 AND timestamp >= $3
		ORDER BY timestamp DESC
		LIMIT 1`

	rep, err := scanPendingReport(r.db.QueryRowContext(ctx, query, reporterID, pairingID, cutoff))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPendingReportNotFound
		}
		return nil, fmt.Errorf("failed to scan pending report by reporter %d: %w", reporterID, err)
	}
	return rep, nil
}

// Delete is idempotent: deleting a report that is already gone is a no-op.
func (r *postgresPendingReportRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_reps WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete pending report %d: %w", id, err)
	}
	return nil
}

func (r *postgresPendingReportRepository) DeleteByPairing(ctx context.Context, exec SQLExecutor, pairingID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM pending_reps WHERE pairing_id = $1`, pairingID); err != nil {
		return fmt.Errorf("failed to delete pending reports for pairing %d: %w", pairingID, err)
	}
	return nil
}

func (r *postgresPendingReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_reps WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale pending reports: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged pending reports: %w", err)
	}
	return deleted, nil
}
