package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groupgainz/backend/internal/models"
)

// ListActiveContracts returns every Active contract joined with its group and
// member roster. Groups without members are not returned (the roster join is
// inner, matching how the app enforces that a group always has its creator as
// a member).
func (s *SQLiteStore) ListActiveContracts(ctx context.Context) ([]models.ActiveContract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.group_id, g.name, u.id, u.name
		FROM contracts c
		JOIN groups g ON g.id = c.group_id
		JOIN group_members gm ON gm.group_id = g.id
		JOIN users u ON u.id = gm.user_id
		WHERE c.status = ?
		ORDER BY c.id, u.name`,
		string(models.ContractActive),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active contracts: %w", err)
	}
	defer rows.Close()

	var (
		result  []models.ActiveContract
		current *models.ActiveContract
	)
	for rows.Next() {
		var contractID, groupID, groupName string
		var member models.Member
		if err := rows.Scan(&contractID, &groupID, &groupName, &member.UserID, &member.Name); err != nil {
			return nil, fmt.Errorf("failed to scan contract row: %w", err)
		}
		if current == nil || current.ContractID != contractID {
			result = append(result, models.ActiveContract{
				ContractID: contractID,
				GroupID:    groupID,
				GroupName:  groupName,
			})
			current = &result[len(result)-1]
		}
		current.Members = append(current.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contract rows: %w", err)
	}
	return result, nil
}

// SumPoints totals a user's point transactions inside the inclusive window.
// Archived rows are included on purpose: a settlement re-run must see the
// same totals the first run saw.
func (s *SQLiteStore) SumPoints(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM point_transactions
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?`,
		userID, start.Unix(), end.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}

// UpsertPenalty inserts the penalty or, when one already exists for the same
// (user, group, week start), overwrites it in place.
func (s *SQLiteStore) UpsertPenalty(ctx context.Context, p *models.Penalty) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO penalties (
			user_id, group_id, week_start_date, week_end_date,
			points_earned, point_threshold, penalty_message, penalty_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, group_id, week_start_date) DO UPDATE SET
			week_end_date = excluded.week_end_date,
			points_earned = excluded.points_earned,
			point_threshold = excluded.point_threshold,
			penalty_message = excluded.penalty_message,
			penalty_type = excluded.penalty_type`,
		p.UserID, p.GroupID,
		p.WeekStart.Format(time.DateOnly), p.WeekEnd.Format(time.DateOnly),
		p.PointsEarned, p.PointThreshold, p.Message, p.Type,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert penalty: %w", err)
	}
	return nil
}

// InsertNotification appends a notification. A non-empty DedupeKey turns the
// insert into insert-if-absent against the partial unique index.
func (s *SQLiteStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	dedupe := sql.NullString{String: n.DedupeKey, Valid: n.DedupeKey != ""}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, user_id, group_id, title, message,
			notification_type, related_event_type, dedupe_key, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING`,
		n.ID, n.UserID, n.GroupID, n.Title, n.Message,
		n.Type, n.RelatedEventType, dedupe, n.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ArchiveWeeklyPoints marks the group's members' window transactions as
// archived in one statement and returns how many rows were newly archived.
// Rows archived by a previous run keep their original archived_at and are
// not counted again.
func (s *SQLiteStore) ArchiveWeeklyPoints(ctx context.Context, groupID string, start, end time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE point_transactions
		SET archived_at = ?
		WHERE archived_at IS NULL
		  AND created_at >= ? AND created_at <= ?
		  AND user_id IN (SELECT user_id FROM group_members WHERE group_id = ?)`,
		time.Now().Unix(), start.Unix(), end.Unix(), groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive weekly points: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count archived points: %w", err)
	}
	return count, nil
}
