// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/groupgainz/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the settlement job and the
// surrounding app glue rely on. The abstraction allows swapping storage
// backends (SQLite for local dev and tests, Postgres for the hosted backend)
// without changing job logic.
type Store interface {
	// ListActiveContracts returns every contract whose status is Active,
	// joined with its group and full member roster (user id + display name).
	// Pending and Paused contracts are excluded. Order is unspecified; an
	// empty result is not an error.
	ListActiveContracts(ctx context.Context) ([]models.ActiveContract, error)

	// SumPoints sums the point transactions for one user whose timestamps
	// fall in [start, end], inclusive on both ends. Archived transactions
	// are included so a re-run of an already-settled week sees the same
	// totals. Returns 0 when there are no transactions.
	SumPoints(ctx context.Context, userID string, start, end time.Time) (int, error)

	// UpsertPenalty inserts or overwrites the penalty keyed by
	// (user_id, group_id, week_start_date). This natural-key upsert is what
	// makes the weekly job re-runnable without duplicating penalties.
	UpsertPenalty(ctx context.Context, p *models.Penalty) error

	// InsertNotification appends a notification. When n.DedupeKey is set,
	// an existing notification with the same key suppresses the insert;
	// otherwise duplicates are allowed.
	InsertNotification(ctx context.Context, n *models.Notification) error

	// ArchiveWeeklyPoints marks the window's transactions belonging to the
	// group's members as archived and returns the number of rows newly
	// archived. The update is a single server-side statement, so transactions
	// arriving concurrently are either fully counted or left for the next
	// run, never half-archived. Already-archived rows are not counted again.
	ArchiveWeeklyPoints(ctx context.Context, groupID string, start, end time.Time) (int64, error)

	// CreateUser persists a new user. Generates ID when unset.
	CreateUser(ctx context.Context, u *models.User) error

	// CreateGroup persists a new group. Generates ID and CreatedAt when unset.
	CreateGroup(ctx context.Context, g *models.Group) error

	// AddMember adds a user to a group with the given role.
	AddMember(ctx context.Context, m *models.GroupMember) error

	// CreateContract persists a new contract for a group.
	CreateContract(ctx context.Context, c *models.Contract) error

	// UpdateContractStatus transitions a contract between Pending, Active
	// and Paused. Returns ErrNotFound for an unknown contract.
	UpdateContractStatus(ctx context.Context, contractID string, status models.ContractStatus) error

	// RecordPointTransaction appends one ledger entry. Rows are immutable
	// after this call.
	RecordPointTransaction(ctx context.Context, tx *models.PointTransaction) error

	// ListPenalties returns a user's penalties, newest week first.
	ListPenalties(ctx context.Context, userID string) ([]models.Penalty, error)

	// ListNotifications returns a user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)

	// Ping verifies the underlying database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
