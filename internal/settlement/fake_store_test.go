package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/groupgainz/backend/internal/models"
	"github.com/groupgainz/backend/internal/storage"
)

// fakeStore is an in-memory storage.Store with per-entity error injection,
// used to exercise the job's failure scoping without a database.
type fakeStore struct {
	contracts []models.ActiveContract
	listErr   error

	points map[string]int   // user ID -> weekly total
	sumErr map[string]error // user ID -> injected fetch error

	penalties  map[string]models.Penalty // natural key -> row
	penaltyErr map[string]error          // user ID -> injected upsert error

	notifications []models.Notification
	notifyErr     map[string]error // user ID -> injected insert error

	archiveCounts map[string]int64 // group ID -> rows to report archived
	archiveErr    map[string]error // group ID -> injected archive error
	archiveCalls  []string
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		points:        map[string]int{},
		sumErr:        map[string]error{},
		penalties:     map[string]models.Penalty{},
		penaltyErr:    map[string]error{},
		notifyErr:     map[string]error{},
		archiveCounts: map[string]int64{},
		archiveErr:    map[string]error{},
	}
}

func penaltyKey(userID, groupID string, weekStart time.Time) string {
	return fmt.Sprintf("%s|%s|%s", userID, groupID, weekStart.Format(time.DateOnly))
}

func (f *fakeStore) ListActiveContracts(ctx context.Context) ([]models.ActiveContract, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contracts, nil
}

func (f *fakeStore) SumPoints(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if err := f.sumErr[userID]; err != nil {
		return 0, err
	}
	return f.points[userID], nil
}

func (f *fakeStore) UpsertPenalty(ctx context.Context, p *models.Penalty) error {
	if err := f.penaltyErr[p.UserID]; err != nil {
		return err
	}
	f.penalties[penaltyKey(p.UserID, p.GroupID, p.WeekStart)] = *p
	return nil
}

func (f *fakeStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if err := f.notifyErr[n.UserID]; err != nil {
		return err
	}
	if n.DedupeKey != "" {
		for _, existing := range f.notifications {
			if existing.DedupeKey == n.DedupeKey {
				return nil
			}
		}
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) ArchiveWeeklyPoints(ctx context.Context, groupID string, start, end time.Time) (int64, error) {
	f.archiveCalls = append(f.archiveCalls, groupID)
	if err := f.archiveErr[groupID]; err != nil {
		return 0, err
	}
	return f.archiveCounts[groupID], nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u *models.User) error       { return nil }
func (f *fakeStore) CreateGroup(ctx context.Context, g *models.Group) error     { return nil }
func (f *fakeStore) AddMember(ctx context.Context, m *models.GroupMember) error { return nil }
func (f *fakeStore) CreateContract(ctx context.Context, c *models.Contract) error {
	return nil
}
func (f *fakeStore) UpdateContractStatus(ctx context.Context, contractID string, status models.ContractStatus) error {
	return nil
}
func (f *fakeStore) RecordPointTransaction(ctx context.Context, tx *models.PointTransaction) error {
	return nil
}

func (f *fakeStore) ListPenalties(ctx context.Context, userID string) ([]models.Penalty, error) {
	var out []models.Penalty
	for _, p := range f.penalties {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }
