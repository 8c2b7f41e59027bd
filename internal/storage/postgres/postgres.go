// Package postgres provides the Postgres-backed storage.Store used by the
// hosted backend. The settlement job runs with a privileged service DSN that
// can read and write across all users' data.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"github.com/groupgainz/backend/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store on top of Postgres.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN and applies pool tuning
// suitable for a weekly batch plus light CRUD traffic.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PostgresStore{db: db}, nil
}

// NewFromDB wraps an existing connection. Used by tests.
func NewFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const schema = `
create table if not exists users (
    id text primary key,
    name text not null,
    email text not null unique
);

create table if not exists groups (
    id text primary key,
    name text not null,
    created_at timestamptz not null default now()
);

create table if not exists group_members (
    group_id text not null references groups(id) on delete cascade,
    user_id text not null references users(id) on delete cascade,
    role text not null default 'member',
    primary key (group_id, user_id)
);

create table if not exists contracts (
    id text primary key,
    group_id text not null references groups(id) on delete cascade,
    status text not null,
    created_at timestamptz not null default now()
);

create table if not exists point_transactions (
    id text primary key,
    user_id text not null references users(id) on delete cascade,
    points integer not null,
    description text not null default '',
    related_check_in_id text,
    created_at timestamptz not null,
    archived_at timestamptz
);

create table if not exists penalties (
    user_id text not null references users(id) on delete cascade,
    group_id text not null references groups(id) on delete cascade,
    week_start_date date not null,
    week_end_date date not null,
    points_earned integer not null,
    point_threshold integer not null,
    penalty_message text not null,
    penalty_type text not null,
    primary key (user_id, group_id, week_start_date)
);

create table if not exists notifications (
    id text primary key,
    user_id text not null references users(id) on delete cascade,
    group_id text not null references groups(id) on delete cascade,
    title text not null,
    message text not null,
    notification_type text not null,
    related_event_type text not null default '',
    dedupe_key text,
    created_at timestamptz not null default now()
);

create index if not exists idx_contracts_status on contracts(status);
create index if not exists idx_point_transactions_user_created
    on point_transactions(user_id, created_at);
create index if not exists idx_notifications_user_id on notifications(user_id);
create unique index if not exists idx_notifications_dedupe_key
    on notifications(dedupe_key) where dedupe_key is not null;
`
