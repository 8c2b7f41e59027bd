package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groupgainz/backend/internal/models"
)

// ListActiveContracts returns every Active contract with its group and
// member roster.
func (s *PostgresStore) ListActiveContracts(ctx context.Context) ([]models.ActiveContract, error) {
	rows, err := s.db.QueryContext(ctx, `
		select c.id, c.group_id, g.name, u.id, u.name
		from contracts c
		join groups g on g.id = c.group_id
		join group_members gm on gm.group_id = g.id
		join users u on u.id = gm.user_id
		where c.status = $1
		order by c.id, u.name`,
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

// SumPoints totals a user's point transactions inside the inclusive window,
// archived rows included.
func (s *PostgresStore) SumPoints(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		select coalesce(sum(points), 0)
		from point_transactions
		where user_id = $1 and created_at >= $2 and created_at <= $3`,
		userID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}

// UpsertPenalty inserts or overwrites the penalty for (user, group, week).
func (s *PostgresStore) UpsertPenalty(ctx context.Context, p *models.Penalty) error {
	_, err := s.db.ExecContext(ctx, `
		insert into penalties (
			user_id, group_id, week_start_date, week_end_date,
			points_earned, point_threshold, penalty_message, penalty_type
		) values ($1, $2, $3, $4, $5, $6, $7, $8)
		on conflict (user_id, group_id, week_start_date) do update set
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

// InsertNotification appends a notification; a non-empty DedupeKey makes the
// insert a no-op when the key already exists.
func (s *PostgresStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	dedupe := sql.NullString{String: n.DedupeKey, Valid: n.DedupeKey != ""}
	_, err := s.db.ExecContext(ctx, `
		insert into notifications (
			id, user_id, group_id, title, message,
			notification_type, related_event_type, dedupe_key, created_at
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		on conflict (dedupe_key) where dedupe_key is not null do nothing`,
		n.ID, n.UserID, n.GroupID, n.Title, n.Message,
		n.Type, n.RelatedEventType, dedupe, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ArchiveWeeklyPoints marks the group's members' window transactions as
// archived in one statement. The single update is atomic server-side, so a
// transaction inserted while the job runs is either counted here or left
// unarchived for the next run.
func (s *PostgresStore) ArchiveWeeklyPoints(ctx context.Context, groupID string, start, end time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		update point_transactions
		set archived_at = now()
		where archived_at is null
		  and created_at >= $1 and created_at <= $2
		  and user_id in (select user_id from group_members where group_id = $3)`,
		start, end, groupID,
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
