package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

// EloHistoryRepository is the rating audit log. Append-only.
type EloHistoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, change *models.EloChange) error
	ListByPlayer(ctx context.Context, playerID int64) ([]*models.EloChange, error)
	ListAll(ctx context.Context) ([]*models.EloChange, error)
}

type postgresEloHistoryRepository struct {
	db *sql.DB
}

func NewPostgresEloHistoryRepository(db *sql.DB) EloHistoryRepository {
	return &postgresEloHistoryRepository{db: db}
}

const eloChangeColumns = "id, player_id, elo_change, timestamp"

func (r *postgresEloHistoryRepository) Create(ctx context.Context, exec SQLExecutor, change *models.EloChange) error {
	query := `
		INSERT INTO elo_history (player_id, elo_change)
		VALUES ($1, $2)
		RETURNING id, timestamp`

	err := exec.QueryRowContext(ctx, query, change.PlayerID, change.EloChange).Scan(&change.ID, &change.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert elo change for player %d: %w", change.PlayerID, err)
	}
	return nil
}

func (r *postgresEloHistoryRepository) ListByPlayer(ctx context.Context, playerID int64) ([]*models.EloChange, error) {
	query := `SELECT ` + eloChangeColumns + ` FROM elo_history WHERE player_id = $1 ORDER BY id`
	return r.queryChanges(ctx, query, playerID)
}

func (r *postgresEloHistoryRepository) ListAll(ctx context.Context) ([]*models.EloChange, error) {
	return r.queryChanges(ctx, `SELECT `+eloChangeColumns+` FROM elo_history ORDER BY id`)
}

func (r *postgresEloHistoryRepository) queryChanges(ctx context.Context, query string, args ...interface{}) ([]*models.EloChange, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query elo history: %w", err)
	}
	defer rows.Close()

	changes := make([]*models.EloChange, 0)
	for rows.Next() {
		change := &models.EloChange{}
		if err := rows.Scan(&change.ID, &change.PlayerID, &change.EloChange, &change.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan elo change row: %w", err)
		}
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during elo history rows iteration: %w", err)
	}
	return changes, nil
}
