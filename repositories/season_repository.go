package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

var ErrSeasonNotFound = errors.New("season not found")

type SeasonRepository interface {
	GetLatest(ctx context.Context) (*models.Season, error)
	GetByNumber(ctx context.Context, number int) (*models.Season, error)
	ListAll(ctx context.Context) ([]*models.Season, error)
	Create(ctx context.Context, exec SQLExecutor, season *models.Season) error
	SetActive(ctx context.Context, exec SQLExecutor, number int, active bool) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) GetLatest(ctx context.Context) (*models.Season, error) {
	query := `SELECT season_number, active FROM seasons ORDER BY season_number DESC LIMIT 1`
	season := &models.Season{}
	err := r.db.QueryRowContext(ctx, query).Scan(&season.SeasonNumber, &season.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan latest season: %w", err)
	}
	return season, nil
}

func (r *postgresSeasonRepository) GetByNumber(ctx context.Context, number int) (*models.Season, error) {
	query := `SELECT season_number, active FROM seasons WHERE season_number = $1`
	season := &models.Season{}
	err := r.db.QueryRowContext(ctx, query, number).Scan(&season.SeasonNumber, &season.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season %d: %w", number, err)
	}
	return season, nil
}

func (r *postgresSeasonRepository) ListAll(ctx context.Context) ([]*models.Season, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT season_number, active FROM seasons ORDER BY season_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	seasons := make([]*models.Season, 0)
	for rows.Next() {
		season := &models.Season{}
		if err := rows.Scan(&season.SeasonNumber, &season.Active); err != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during season rows iteration: %w", err)
	}
	return seasons, nil
}

func (r *postgresSeasonRepository) Create(ctx context.Context, exec SQLExecutor, season *models.Season) error {
	query := `INSERT INTO seasons (season_number, active) VALUES ($1, $2)`
	if _, err := exec.ExecContext(ctx, query, season.SeasonNumber, season.Active); err != nil {
		return fmt.Errorf("failed to insert season %d: %w", season.SeasonNumber, err)
	}
	return nil
}

func (r *postgresSeasonRepository) SetActive(ctx context.Context, exec SQLExecutor, number int, active bool) error {
	query := `UPDATE seasons SET active = $1 WHERE season_number = $2`
	result, err := exec.ExecContext(ctx, query, active, number)
	if err != nil {
		return fmt.Errorf("failed to update season %d: %w", number, err)
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}
