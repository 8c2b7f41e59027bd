package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groupgainz/backend/internal/models"
	"github.com/groupgainz/backend/internal/storage"
)

// CreateUser persists a new user.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"insert into users (id, name, email) values ($1, $2, $3)",
		u.ID, u.Name, u.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// CreateGroup persists a new group.
func (s *PostgresStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"insert into groups (id, name, created_at) values ($1, $2, $3)",
		g.ID, g.Name, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// AddMember adds a user to a group.
func (s *PostgresStore) AddMember(ctx context.Context, m *models.GroupMember) error {
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	_, err := s.db.ExecContext(ctx,
		"insert into group_members (group_id, user_id, role) values ($1, $2, $3)",
		m.GroupID, m.UserID, string(m.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// CreateContract persists a new contract. Status defaults to Pending.
func (s *PostgresStore) CreateContract(ctx context.Context, c *models.Contract) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.ContractPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"insert into contracts (id, group_id, status, created_at) values ($1, $2, $3, $4)",
		c.ID, c.GroupID, string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// UpdateContractStatus transitions a contract's lifecycle state.
func (s *PostgresStore) UpdateContractStatus(ctx context.Context, contractID string, status models.ContractStatus) error {
	res, err := s.db.ExecContext(ctx,
		"update contracts set status = $1 where id = $2",
		string(status), contractID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check contract update: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RecordPointTransaction appends one immutable ledger entry.
func (s *PostgresStore) RecordPointTransaction(ctx context.Context, tx *models.PointTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	checkIn := sql.NullString{String: tx.RelatedCheckInID, Valid: tx.RelatedCheckInID != ""}
	_, err := s.db.ExecContext(ctx, `
		insert into point_transactions (id, user_id, points, description, related_check_in_id, created_at)
		values ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.UserID, tx.Points, tx.Description, checkIn, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert point transaction: %w", err)
	}
	return nil
}

// ListPenalties returns a user's penalties, newest week first.
func (s *PostgresStore) ListPenalties(ctx context.Context, userID string) ([]models.Penalty, error) {
	rows, err := s.db.QueryContext(ctx, `
		select user_id, group_id, week_start_date, week_end_date,
		       points_earned, point_threshold, penalty_message, penalty_type
		from penalties
		where user_id = $1
		order by week_start_date desc`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query penalties: %w", err)
	}
	defer rows.Close()

	var penalties []models.Penalty
	for rows.Next() {
		var p models.Penalty
		if err := rows.Scan(&p.UserID, &p.GroupID, &p.WeekStart, &p.WeekEnd,
			&p.PointsEarned, &p.PointThreshold, &p.Message, &p.Type); err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		penalties = append(penalties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate penalties: %w", err)
	}
	return penalties, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *PostgresStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, group_id, title, message,
		       notification_type, related_event_type, dedupe_key, created_at
		from notifications
		where user_id = $1
		order by created_at desc, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var dedupe sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.GroupID, &n.Title, &n.Message,
			&n.Type, &n.RelatedEventType, &dedupe, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.DedupeKey = dedupe.String
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}
