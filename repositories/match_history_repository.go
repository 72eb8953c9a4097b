package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

// MatchHistoryRepository is append-only: confirmed games are never updated
// or deleted.
type MatchHistoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.MatchRecord) error
	ListBySeason(ctx context.Context, season int) ([]*models.MatchRecord, error)
	ListAll(ctx context.Context) ([]*models.MatchRecord, error)
}

type postgresMatchHistoryRepository struct {
	db *sql.DB
}

func NewPostgresMatchHistoryRepository(db *sql.DB) MatchHistoryRepository {
	return &postgresMatchHistoryRepository{db: db}
}

const matchRecordColumns = "id, whiteplayer, blackplayer, colorwon, season, league"

func (r *postgresMatchHistoryRepository) Create(ctx context.Context, exec SQLExecutor, record *models.MatchRecord) error {
	query := `
		INSERT INTO match_history (whiteplayer, blackplayer, colorwon, season, league)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		record.WhitePlayer,
		record.BlackPlayer,
		record.ColorWon,
		record.Season,
		record.League,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to insert match record: %w", err)
	}
	return nil
}

func (r *postgresMatchHistoryRepository) ListBySeason(ctx context.Context, season int) ([]*models.MatchRecord, error) {
	query := `SELECT ` + matchRecordColumns + ` FROM match_history WHERE season = $1 ORDER BY id`
	return r.queryRecords(ctx, query, season)
}

func (r *postgresMatchHistoryRepository) ListAll(ctx context.Context) ([]*models.MatchRecord, error) {
	return r.queryRecords(ctx, `SELECT `+matchRecordColumns+` FROM match_history ORDER BY id`)
}

func (r *postgresMatchHistoryRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.MatchRecord, 0)
	for rows.Next() {
		rec := &models.MatchRecord{}
		if err := rows.Scan(&rec.ID, &rec.WhitePlayer, &rec.BlackPlayer, &rec.ColorWon, &rec.Season, &rec.League); err != nil {
			return nil, fmt.Errorf("failed to scan match record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match history rows iteration: %w", err)
	}
	return records, nil
}
