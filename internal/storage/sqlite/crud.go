package sqlite

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
func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email) VALUES (?, ?, ?)",
		u.ID, u.Name, u.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// CreateGroup persists a new group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		g.ID, g.Name, g.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// AddMember adds a user to a group.
func (s *SQLiteStore) AddMember(ctx context.Context, m *models.GroupMember) error {
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)",
		m.GroupID, m.UserID, string(m.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// CreateContract persists a new contract. Status defaults to Pending.
func (s *SQLiteStore) CreateContract(ctx context.Context, c *models.Contract) error {
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
		"INSERT INTO contracts (id, group_id, status, created_at) VALUES (?, ?, ?, ?)",
		c.ID, c.GroupID, string(c.Status), c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// UpdateContractStatus transitions a contract's lifecycle state.
func (s *SQLiteStore) UpdateContractStatus(ctx context.Context, contractID string, status models.ContractStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE contracts SET status = ? WHERE id = ?",
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
func (s *SQLiteStore) RecordPointTransaction(ctx context.Context, tx *models.PointTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	checkIn := sql.NullString{String: tx.RelatedCheckInID, Valid: tx.RelatedCheckInID != ""}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO point_transactions (id, user_id, points, description, related_check_in_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Points, tx.Description, checkIn, tx.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert point transaction: %w", err)
	}
	return nil
}

// ListPenalties returns a user's penalties, newest week first. Week
// boundaries come back at date precision in UTC.
func (s *SQLiteStore) ListPenalties(ctx context.Context, userID string) ([]models.Penalty, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, group_id, week_start_date, week_end_date,
		       points_earned, point_threshold, penalty_message, penalty_type
		FROM penalties
		WHERE user_id = ?
		ORDER BY week_start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query penalties: %w", err)
	}
	defer rows.Close()

	var penalties []models.Penalty
	for rows.Next() {
		var p models.Penalty
		var startDate, endDate string
		if err := rows.Scan(&p.UserID, &p.GroupID, &startDate, &endDate,
			&p.PointsEarned, &p.PointThreshold, &p.Message, &p.Type); err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		if p.WeekStart, err = time.Parse(time.DateOnly, startDate); err != nil {
			return nil, fmt.Errorf("failed to parse penalty week start: %w", err)
		}
		if p.WeekEnd, err = time.Parse(time.DateOnly, endDate); err != nil {
			return nil, fmt.Errorf("failed to parse penalty week end: %w", err)
		}
		penalties = append(penalties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate penalties: %w", err)
	}
	return penalties, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, group_id, title, message,
		       notification_type, related_event_type, dedupe_key, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id`,
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
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.GroupID, &n.Title, &n.Message,
			&n.Type, &n.RelatedEventType, &dedupe, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.DedupeKey = dedupe.String
		n.CreatedAt = time.Unix(createdAt, 0)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}
