package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mauer01/5D-Chess-League-Bot/models"
)

var (
	ErrPlayerNotFound          = errors.New("player not found")
	ErrPlayerAlreadyRegistered = errors.New("player already registered")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int64) (*models.Player, error)
	// GetForUpdate locks the player row for the remainder of the
	// transaction, so rating reads cannot go stale under a concurrent
	// match confirmation. Callers locking several players must acquire
	// them in ascending id order.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Player, error)
	ListAll(ctx context.Context) ([]*models.Player, error)
	ListTop(ctx context.Context, limit int, filterIDs []int64) ([]*models.Player, error)
	ListBySignedUp(ctx context.Context, signedUp bool) ([]*models.Player, error)
	SetSignedUp(ctx context.Context, id int64, signedUp bool) error
	ResetSignupFlags(ctx context.Context, exec SQLExecutor) error
	BumpMissedSeasons(ctx context.Context, exec SQLExecutor) error
	// DecayInactive moves every unsigned player with at least threshold
	// missed seasons one step toward target, without crossing it.
	DecayInactive(ctx context.Context, exec SQLExecutor, target, step float64, threshold int) error
	ApplyMatchStats(ctx context.Context, exec SQLExecutor, id int64, elo float64, wins, losses, draws int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = "id, elo, wins, losses, draws, signed_up, seasons_missed"

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(&p.ID, &p.Elo, &p.Wins, &p.Losses, &p.Draws, &p.SignedUp, &p.SeasonsMissed)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `INSERT INTO players (id, elo) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, player.ID, player.Elo)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrPlayerAlreadyRegistered
		}
		return fmt.Errorf("failed to insert player %d: %w", player.ID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	player, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1 FOR UPDATE`
	player, err := scanPlayer(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to lock player %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListAll(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id`
	return r.queryPlayers(ctx, query)
}

func (r *postgresPlayerRepository) ListTop(ctx context.Context, limit int, filterIDs []int64) ([]*models.Player, error) {
	if len(filterIDs) > 0 {
		query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY elo DESC LIMIT $2`
		return r.queryPlayers(ctx, query, pq.Array(filterIDs), limit)
	}
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY elo DESC LIMIT $1`
	return r.queryPlayers(ctx, query, limit)
}

func (r *postgresPlayerRepository) ListBySignedUp(ctx context.Context, signedUp bool) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE signed_up = $1 ORDER BY elo DESC`
	return r.queryPlayers(ctx, query, signedUp)
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) SetSignedUp(ctx context.Context, id int64, signedUp bool) error {
	query := `UPDATE players SET signed_up = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, signedUp, id)
	if err != nil {
		return fmt.Errorf("failed to update signup flag for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ResetSignupFlags(ctx context.Context, exec SQLExecutor) error {
	if _, err := exec.ExecContext(ctx, `UPDATE players SET signed_up = FALSE`); err != nil {
		return fmt.Errorf("failed to reset signup flags: %w", err)
	}
	return nil
}

// BumpMissedSeasons zeroes the missed counter for players who signed up and
// increments it for everyone else. Run once per season start, before decay.
func (r *postgresPlayerRepository) BumpMissedSeasons(ctx context.Context, exec SQLExecutor) error {
	if _, err := exec.ExecContext(ctx, `UPDATE players SET seasons_missed = 0 WHERE signed_up = TRUE`); err != nil {
		return fmt.Errorf("failed to reset missed seasons: %w", err)
	}
	if _, err := exec.ExecContext(ctx, `UPDATE players SET seasons_missed = seasons_missed + 1 WHERE signed_up = FALSE`); err != nil {
		return fmt.Errorf("failed to increment missed seasons: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) DecayInactive(ctx context.Context, exec SQLExecutor, target, step float64, threshold int) error {
	query := `
		UPDATE players
		SET elo = CASE
		    WHEN elo > $1 THEN GREATEST($1, elo - $2)
		    WHEN elo < $1 THEN LEAST($1, elo + $2)
		    ELSE elo
		END
		WHERE signed_up = FALSE AND seasons_missed >= $3`

	if _, err := exec.ExecContext(ctx, query, target, step, threshold); err != nil {
		return fmt.Errorf("failed to decay inactive players: %w", err)
	}
	return nil
}

// ApplyMatchStats sets the new rating and adds the counter increments.
func (r *postgresPlayerRepository) ApplyMatchStats(ctx context.Context, exec SQLExecutor, id int64, elo float64, wins, losses, draws int) error {
	query := `
		UPDATE players
		SET elo = $1,
		    wins = wins + $2,
		    losses = losses + $3,
		    draws = draws + $4
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, elo, wins, losses, draws, id)
	if err != nil {
		return fmt.Errorf("failed to apply match stats for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
