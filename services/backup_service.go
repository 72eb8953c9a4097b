package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
	"github.com/mauer01/5D-Chess-League-Bot/storage"
)

// databaseSnapshot is the JSON shape of one full backup.
type databaseSnapshot struct {
	TakenAt      time.Time             `json:"taken_at"`
	Players      []*models.Player      `json:"players"`
	Seasons      []*models.Season      `json:"seasons"`
	Pairings     []*models.Pairing     `json:"pairings"`
	MatchHistory []*models.MatchRecord `json:"match_history"`
	EloHistory   []*models.EloChange   `json:"elo_history"`
}

// BackupResult reports where a snapshot landed.
type BackupResult struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	Size     int    `json:"size"`
}

type BackupService interface {
	Backup(ctx context.Context) (*BackupResult, error)
}

type backupService struct {
	playerRepo  repositories.PlayerRepository
	seasonRepo  repositories.SeasonRepository
	pairingRepo repositories.PairingRepository
	matchRepo   repositories.MatchHistoryRepository
	eloRepo     repositories.EloHistoryRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
	now         func() time.Time
}

func NewBackupService(
	playerRepo repositories.PlayerRepository,
	seasonRepo repositories.SeasonRepository,
	pairingRepo repositories.PairingRepository,
	matchRepo repositories.MatchHistoryRepository,
	eloRepo repositories.EloHistoryRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) BackupService {
	return &backupService{
		playerRepo:  playerRepo,
		seasonRepo:  seasonRepo,
		pairingRepo: pairingRepo,
		matchRepo:   matchRepo,
		eloRepo:     eloRepo,
		uploader:    uploader,
		logger:      logger,
		now:         time.Now,
	}
}

// Backup serializes every table into one JSON document and uploads it to
// the object store under a timestamped key.
func (s *backupService) Backup(ctx context.Context) (*BackupResult, error) {
	snapshot := databaseSnapshot{TakenAt: s.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot.Players, err = s.playerRepo.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Seasons, err = s.seasonRepo.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Pairings, err = s.pairingRepo.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.MatchHistory, err = s.matchRepo.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.EloHistory, err = s.eloRepo.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect backup snapshot: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize backup snapshot: %w", err)
	}

	key := fmt.Sprintf("backups/league-%s.json", snapshot.TakenAt.Format("20060102-150405"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	s.logger.Info("database backup uploaded",
		slog.String("key", result.Key),
		slog.Int("bytes", len(data)))

	return &BackupResult{Key: result.Key, Location: result.Location, Size: len(data)}, nil
}
