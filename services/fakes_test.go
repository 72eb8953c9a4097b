package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mauer01/5D-Chess-League-Bot/models"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
)

// In-memory repository fakes. They ignore the SQLExecutor argument since
// there is no real transaction; fakeTxRunner just runs the callback.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakePlayerRepo struct {
	players map[int64]*models.Player

	// lockedReads records the order of GetForUpdate calls so tests can
	// check the lock acquisition sequence.
	lockedReads []int64

	// staleByID, when set for a player, is what the pool-backed GetByID
	// returns instead of the live row. GetForUpdate always sees the live
	// row, mimicking a concurrent writer that committed between an
	// unlocked read and the row lock.
	staleByID map[int64]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int64]*models.Player)}
}

func (r *fakePlayerRepo) add(p *models.Player) {
	copied := *p
	r.players[p.ID] = &copied
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	if _, ok := r.players[player.ID]; ok {
		return repositories.ErrPlayerAlreadyRegistered
	}
	r.add(player)
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	if stale, ok := r.staleByID[id]; ok {
		copied := *stale
		return &copied, nil
	}
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Player, error) {
	r.lockedReads = append(r.lockedReads, id)
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) ListAll(ctx context.Context) ([]*models.Player, error) {
	out := make([]*models.Player, 0, len(r.players))
	for _, p := range r.players {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) ListTop(ctx context.Context, limit int, filterIDs []int64) ([]*models.Player, error) {
	all, _ := r.ListAll(ctx)
	if len(filterIDs) > 0 {
		allowed := make(map[int64]bool, len(filterIDs))
		for _, id := range filterIDs {
			allowed[id] = true
		}
		filtered := all[:0]
		for _, p := range all {
			if allowed[p.ID] {
				filtered = append(filtered, p)
			}
		}
		all = filtered
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Elo > all[j].Elo })
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakePlayerRepo) ListBySignedUp(ctx context.Context, signedUp bool) ([]*models.Player, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, p := range all {
		if p.SignedUp == signedUp {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) SetSignedUp(ctx context.Context, id int64, signedUp bool) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.SignedUp = signedUp
	return nil
}

func (r *fakePlayerRepo) ResetSignupFlags(ctx context.Context, exec repositories.SQLExecutor) error {
	for _, p := range r.players {
		p.SignedUp = false
	}
	return nil
}

func (r *fakePlayerRepo) BumpMissedSeasons(ctx context.Context, exec repositories.SQLExecutor) error {
	for _, p := range r.players {
		if p.SignedUp {
			p.SeasonsMissed = 0
		} else {
			p.SeasonsMissed++
		}
	}
	return nil
}

func (r *fakePlayerRepo) DecayInactive(ctx context.Context, exec repositories.SQLExecutor, target, step float64, threshold int) error {
	for _, p := range r.players {
		if p.SignedUp || p.SeasonsMissed < threshold {
			continue
		}
		switch {
		case p.Elo > target:
			p.Elo = math.Max(target, p.Elo-step)
		case p.Elo < target:
			p.Elo = math.Min(target, p.Elo+step)
		}
	}
	return nil
}

func (r *fakePlayerRepo) ApplyMatchStats(ctx context.Context, exec repositories.SQLExecutor, id int64, elo float64, wins, losses, draws int) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Elo = elo
	p.Wins += wins
	p.Losses += losses
	p.Draws += draws
	return nil
}

type fakeSeasonRepo struct {
	seasons map[int]*models.Season
}

func newFakeSeasonRepo() *fakeSeasonRepo {
	return &fakeSeasonRepo{seasons: make(map[int]*models.Season)}
}

func (r *fakeSeasonRepo) GetLatest(ctx context.Context) (*models.Season, error) {
	latest := 0
	for n := range r.seasons {
		if n > latest {
			latest = n
		}
	}
	if latest == 0 {
		return nil, repositories.ErrSeasonNotFound
	}
	copied := *r.seasons[latest]
	return &copied, nil
}

func (r *fakeSeasonRepo) GetByNumber(ctx context.Context, number int) (*models.Season, error) {
	s, ok := r.seasons[number]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSeasonRepo) ListAll(ctx context.Context) ([]*models.Season, error) {
	out := make([]*models.Season, 0, len(r.seasons))
	for _, s := range r.seasons {
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeasonNumber < out[j].SeasonNumber })
	return out, nil
}

func (r *fakeSeasonRepo) Create(ctx context.Context, exec repositories.SQLExecutor, season *models.Season) error {
	copied := *season
	r.seasons[season.SeasonNumber] = &copied
	return nil
}

func (r *fakeSeasonRepo) SetActive(ctx context.Context, exec repositories.SQLExecutor, number int, active bool) error {
	s, ok := r.seasons[number]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	s.Active = active
	return nil
}

type fakePairingRepo struct {
	pairings map[int]*models.Pairing
	nextID   int
}

func newFakePairingRepo() *fakePairingRepo {
	return &fakePairingRepo{pairings: make(map[int]*models.Pairing), nextID: 1}
}

func (r *fakePairingRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, pairings []*models.Pairing) error {
	for _, p := range pairings {
		p.ID = r.nextID
		r.nextID++
		copied := *p
		r.pairings[p.ID] = &copied
	}
	return nil
}

func (r *fakePairingRepo) GetByID(ctx context.Context, id int) (*models.Pairing, error) {
	p, ok := r.pairings[id]
	if !ok {
		return nil, repositories.ErrPairingNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePairingRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Pairing, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePairingRepo) FindBetweenPlayers(ctx context.Context, seasonNumber int, playerA, playerB int64) (*models.Pairing, error) {
	for _, p := range r.pairings {
		if p.SeasonNumber != seasonNumber {
			continue
		}
		if (p.Player1ID == playerA && p.Player2ID == playerB) || (p.Player1ID == playerB && p.Player2ID == playerA) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPairingNotFound
}

func (r *fakePairingRepo) SetResult(ctx context.Context, exec repositories.SQLExecutor, id, gameNumber int, result float64) error {
	p, ok := r.pairings[id]
	if !ok {
		return repositories.ErrPairingNotFound
	}
	switch gameNumber {
	case 1:
		if p.Result1 != nil {
			return repositories.ErrResultAlreadySet
		}
		p.Result1 = &result
	case 2:
		if p.Result2 != nil {
			return repositories.ErrResultAlreadySet
		}
		p.Result2 = &result
	default:
		return repositories.ErrInvalidGameNumber
	}
	return nil
}

func (r *fakePairingRepo) ListBySeason(ctx context.Context, seasonNumber int, groupName *string) ([]*models.Pairing, error) {
	var out []*models.Pairing
	for _, p := range r.pairings {
		if p.SeasonNumber != seasonNumber {
			continue
		}
		if groupName != nil && !models.SameLeague(p.GroupName, *groupName) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePairingRepo) ListAll(ctx context.Context) ([]*models.Pairing, error) {
	out := make([]*models.Pairing, 0, len(r.pairings))
	for _, p := range r.pairings {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePendingReportRepo struct {
	reports map[int]*models.PendingReport
	nextID  int
}

func newFakePendingReportRepo() *fakePendingReportRepo {
	return &fakePendingReportRepo{reports: make(map[int]*models.PendingReport), nextID: 1}
}

func (r *fakePendingReportRepo) Create(ctx context.Context, exec repositories.SQLExecutor, report *models.PendingReport) error {
	report.ID = r.nextID
	r.nextID++
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}
	copied := *report
	r.reports[report.ID] = &copied
	return nil
}

func (r *fakePendingReportRepo) GetBySlot(ctx context.Context, exec repositories.SQLExecutor, pairingID, gameNumber int, cutoff time.Time) (*models.PendingReport, error) {
	var latest *models.PendingReport
	for _, rep := range r.reports {
		if rep.PairingID != pairingID || rep.GameNumber != gameNumber || rep.Timestamp.Before(cutoff) {
			continue
		}
		if latest == nil || rep.Timestamp.After(latest.Timestamp) {
			latest = rep
		}
	}
	if latest == nil {
		return nil, repositories.ErrPendingReportNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakePendingReportRepo) GetByReporter(ctx context.Context, reporterID int64, pairingID int, cutoff time.Time) (*models.PendingReport, error) {
	var latest *models.PendingReport
	for _, rep := range r.reports {
		if rep.PairingID != pairingID || rep.ReporterID != reporterID || rep.Timestamp.Before(cutoff) {
			continue
		}
		if latest == nil || rep.Timestamp.After(latest.Timestamp) {
			latest = rep
		}
	}
	if latest == nil {
		return nil, repositories.ErrPendingReportNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakePendingReportRepo) Delete(ctx context.Context, id int) error {
	delete(r.reports, id)
	return nil
}

func (r *fakePendingReportRepo) DeleteByPairing(ctx context.Context, exec repositories.SQLExecutor, pairingID int) error {
	for id, rep := range r.reports {
		if rep.PairingID == pairingID {
			delete(r.reports, id)
		}
	}
	return nil
}

func (r *fakePendingReportRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, rep := range r.reports {
		if rep.Timestamp.Before(cutoff) {
			delete(r.reports, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeMatchHistoryRepo struct {
	records []*models.MatchRecord
	nextID  int
}

func newFakeMatchHistoryRepo() *fakeMatchHistoryRepo {
	return &fakeMatchHistoryRepo{nextID: 1}
}

func (r *fakeMatchHistoryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, record *models.MatchRecord) error {
	record.ID = r.nextID
	r.nextID++
	copied := *record
	r.records = append(r.records, &copied)
	return nil
}

func (r *fakeMatchHistoryRepo) ListBySeason(ctx context.Context, season int) ([]*models.MatchRecord, error) {
	var out []*models.MatchRecord
	for _, rec := range r.records {
		if rec.Season == season {
			copied := *rec
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMatchHistoryRepo) ListAll(ctx context.Context) ([]*models.MatchRecord, error) {
	out := make([]*models.MatchRecord, 0, len(r.records))
	for _, rec := range r.records {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

type fakeEloHistoryRepo struct {
	changes []*models.EloChange
	nextID  int
}

func newFakeEloHistoryRepo() *fakeEloHistoryRepo {
	return &fakeEloHistoryRepo{nextID: 1}
}

func (r *fakeEloHistoryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, change *models.EloChange) error {
	change.ID = r.nextID
	r.nextID++
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now()
	}
	copied := *change
	r.changes = append(r.changes, &copied)
	return nil
}

func (r *fakeEloHistoryRepo) ListByPlayer(ctx context.Context, playerID int64) ([]*models.EloChange, error) {
	var out []*models.EloChange
	for _, c := range r.changes {
		if c.PlayerID == playerID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeEloHistoryRepo) ListAll(ctx context.Context) ([]*models.EloChange, error) {
	out := make([]*models.EloChange, 0, len(r.changes))
	for _, c := range r.changes {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}
