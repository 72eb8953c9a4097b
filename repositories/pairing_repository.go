package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

var (
	ErrPairingNotFound   = errors.New("pairing not found")
	ErrInvalidGameNumber = errors.New("invalid game number")
	ErrResultAlreadySet  = errors.New("pairing result already set")
)

type PairingRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, pairings []*models.Pairing) error
	GetByID(ctx context.Context, id int) (*models.Pairing, error)
	// GetForUpdate locks the pairing row for the remainder of the
	// transaction, serializing concurrent report confirmations.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Pairing, error)
	FindBetweenPlayers(ctx context.Context, seasonNumber int, playerA, playerB int64) (*models.Pairing, error)
	SetResult(ctx context.Context, exec SQLExecutor, id, gameNumber int, result float64) error
	ListBySeason(ctx context.Context, seasonNumber int, groupName *string) ([]*models.Pairing, error)
	ListAll(ctx context.Context) ([]*models.Pairing, error)
}

type postgresPairingRepository struct {
	db *sql.DB
}

func NewPostgresPairingRepository(db *sql.DB) PairingRepository {
	return &postgresPairingRepository{db: db}
}

const pairingColumns = "id, player1_id, player2_id, result1, result2, season_number, group_name"

func scanPairing(row interface{ Scan(...interface{}) error }) (*models.Pairing, error) {
	p := &models.Pairing{}
	err := row.Scan(&p.ID, &p.Player1ID, &p.Player2ID, &p.Result1, &p.Result2, &p.SeasonNumber, &p.GroupName)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPairingRepository) CreateBatch(ctx context.Context, exec SQLExecutor, pairings []*models.Pairing) error {
	query := `
		INSERT INTO pairings (player1_id, player2_id, season_number, group_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for _, p := range pairings {
		err := exec.QueryRowContext(ctx, query, p.Player1ID, p.Player2ID, p.SeasonNumber, p.GroupName).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to insert pairing %d vs %d: %w", p.Player1ID, p.Player2ID, err)
		}
	}
	return nil
}

func (r *postgresPairingRepository) GetByID(ctx context.Context, id int) (*models.Pairing, error) {
	query := `SELECT ` + pairingColumns + ` FROM pairings WHERE id = $1`
	pairing, err := scanPairing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairingNotFound
		}
		return nil, fmt.Errorf("failed to scan pairing %d: %w", id, err)
	}
	return pairing, nil
}

func (r *postgresPairingRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Pairing, error) {
	query := `SELECT ` + pairingColumns + ` FROM pairings WHERE id = $1 FOR UPDATE`
	pairing, err := scanPairing(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairingNotFound
		}
		return nil, fmt.Errorf("failed to lock pairing %d: %w", id, err)
	}
	return pairing, nil
}

func (r *postgresPairingRepository) FindBetweenPlayers(ctx context.Context, seasonNumber int, playerA, playerB int64) (*models.Pairing, error) {
	query := `
		SELECT ` + pairingColumns + `
		FROM pairings
		WHERE ((player1_id = $1 AND player2_id = $2) OR (player1_id = $2 AND player2_id = $1))
		  AND season_number = $3`

	pairing, err := scanPairing(r.db.QueryRowContext(ctx, query, playerA, playerB, seasonNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairingNotFound
		}
		return nil, fmt.Errorf("failed to scan pairing %d vs %d: %w", playerA, playerB, err)
	}
	return pairing, nil
}

// SetResult writes a game slot exactly once: the guard in the WHERE clause
// refuses to overwrite a slot that is already confirmed.
func (r *postgresPairingRepository) SetResult(ctx context.Context, exec SQLExecutor, id, gameNumber int, result float64) error {
	var query string
	switch gameNumber {
	case 1:
		query = `UPDATE pairings SET result1 = $1 WHERE id = $2 AND result1 IS NULL`
	case 2:
		query = `UPDATE pairings SET result2 = $1 WHERE id = $2 AND result2 IS NULL`
	default:
		return ErrInvalidGameNumber
	}

	res, err := exec.ExecContext(ctx, query, result, id)
	if err != nil {
		return fmt.Errorf("failed to set result%d on pairing %d: %w", gameNumber, id, err)
	}
	return checkAffectedRows(res, ErrResultAlreadySet)
}

func (r *postgresPairingRepository) ListBySeason(ctx context.Context, seasonNumber int, groupName *string) ([]*models.Pairing, error) {
	query := `SELECT ` + pairingColumns + ` FROM pairings WHERE season_number = $1`
	args := []interface{}{seasonNumber}
	if groupName != nil {
		query += ` AND LOWER(group_name) = LOWER($2)`
		args = append(args, *groupName)
	}
	query += ` ORDER BY id`
	return r.queryPairings(ctx, query, args...)
}

func (r *postgresPairingRepository) ListAll(ctx context.Context) ([]*models.Pairing, error) {
	return r.queryPairings(ctx, `SELECT `+pairingColumns+` FROM pairings ORDER BY id`)
}

func (r *postgresPairingRepository) queryPairings(ctx context.Context, query string, args ...interface{}) ([]*models.Pairing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairings: %w", err)
	}
	defer rows.Close()

	pairings := make([]*models.Pairing, 0)
	for rows.Next() {
		pairing, err := scanPairing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pairing row: %w", err)
		}
		pairings = append(pairings, pairing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pairing rows iteration: %w", err)
	}
	return pairings, nil
}
