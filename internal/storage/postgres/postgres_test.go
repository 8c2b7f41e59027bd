package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/groupgainz/backend/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFromDB(db), mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListActiveContractsFoldsRoster(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "group_id", "name", "user_id", "user_name"}).
		AddRow("c1", "g1", "5AM Club", "u1", "Alice").
		AddRow("c1", "g1", "5AM Club", "u2", "Bob").
		AddRow("c2", "g2", "Leg Day Crew", "u3", "Carol")
	mock.ExpectQuery("select c.id, c.group_id, g.name, u.id, u.name").
		WithArgs(string(models.ContractActive)).
		WillReturnRows(rows)

	contracts, err := store.ListActiveContracts(context.Background())
	if err != nil {
		t.Fatalf("ListActiveContracts failed: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(contracts))
	}
	if len(contracts[0].Members) != 2 || len(contracts[1].Members) != 1 {
		t.Errorf("roster folding wrong: %d and %d members", len(contracts[0].Members), len(contracts[1].Members))
	}
	if contracts[0].GroupName != "5AM Club" || contracts[0].Members[1].Name != "Bob" {
		t.Errorf("unexpected first contract: %+v", contracts[0])
	}
	expectMet(t, mock)
}

func TestListActiveContractsError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select c.id").WillReturnError(errors.New("connection refused"))

	if _, err := store.ListActiveContracts(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	expectMet(t, mock)
}

func TestSumPoints(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`select coalesce\(sum\(points\), 0\)`).
		WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(34))

	total, err := store.SumPoints(context.Background(), "u1", time.Now().Add(-6*24*time.Hour), time.Now())
	if err != nil {
		t.Fatalf("SumPoints failed: %v", err)
	}
	if total != 34 {
		t.Errorf("SumPoints = %d, want 34", total)
	}
	expectMet(t, mock)
}

func TestUpsertPenalty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into penalties").
		WithArgs("u1", "g1", "2025-03-09", "2025-03-15", 5, 20, "roast", models.PenaltyTypeWeeklyTally).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertPenalty(context.Background(), &models.Penalty{
		UserID:         "u1",
		GroupID:        "g1",
		WeekStart:      time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		WeekEnd:        time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC),
		PointsEarned:   5,
		PointThreshold: 20,
		Message:        "roast",
		Type:           models.PenaltyTypeWeeklyTally,
	})
	if err != nil {
		t.Fatalf("UpsertPenalty failed: %v", err)
	}
	expectMet(t, mock)
}

func TestInsertNotification(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`(?s)insert into notifications.*on conflict \(dedupe_key\)`).
		WithArgs(sqlmock.AnyArg(), "u1", "g1", "Weekly Accountability Check", "nudge",
			models.NotificationWorkoutMissed, "penalty", "weekly:u1:g1:2025-03-09", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := &models.Notification{
		UserID:           "u1",
		GroupID:          "g1",
		Title:            "Weekly Accountability Check",
		Message:          "nudge",
		Type:             models.NotificationWorkoutMissed,
		RelatedEventType: "penalty",
		DedupeKey:        "weekly:u1:g1:2025-03-09",
	}
	if err := store.InsertNotification(context.Background(), n); err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}
	if n.ID == "" {
		t.Error("expected notification ID to be generated")
	}
	expectMet(t, mock)
}

func TestInsertNotificationWithoutDedupeKey(t *testing.T) {
	store, mock := newMockStore(t)

	// Empty key binds NULL so the partial unique index never applies.
	mock.ExpectExec("insert into notifications").
		WithArgs(sqlmock.AnyArg(), "u1", "g1", "t", "m",
			models.NotificationWorkoutMissed, "penalty", sql.NullString{}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.InsertNotification(context.Background(), &models.Notification{
		UserID:           "u1",
		GroupID:          "g1",
		Title:            "t",
		Message:          "m",
		Type:             models.NotificationWorkoutMissed,
		RelatedEventType: "penalty",
	})
	if err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}
	expectMet(t, mock)
}

func TestArchiveWeeklyPoints(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update point_transactions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "g1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := store.ArchiveWeeklyPoints(context.Background(), "g1", time.Now().Add(-6*24*time.Hour), time.Now())
	if err != nil {
		t.Fatalf("ArchiveWeeklyPoints failed: %v", err)
	}
	if count != 3 {
		t.Errorf("ArchiveWeeklyPoints = %d, want 3", count)
	}
	expectMet(t, mock)
}
