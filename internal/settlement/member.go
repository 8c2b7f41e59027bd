package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/groupgainz/backend/internal/messages"
	"github.com/groupgainz/backend/internal/models"
	"github.com/groupgainz/backend/internal/week"
)

// memberOutcome is the structured result of evaluating one member for one
// week. Penalty and notification are independent side effects of the same
// evaluation, so either can succeed while the other fails; every failure is
// carried here as a scoped error string instead of propagating.
type memberOutcome struct {
	Penalized bool
	Notified  bool
	Errors    []string
}

// settleMember scores one member against the window and, when they fall
// short of the threshold, records a penalty and a notification. A points
// fetch failure skips the member entirely (no penalty, no notification).
func (j *Job) settleMember(ctx context.Context, win week.Window, ac models.ActiveContract, m models.Member) memberOutcome {
	var out memberOutcome

	total, err := j.store.SumPoints(ctx, m.UserID, win.Start, win.End)
	if err != nil {
		slog.Warn("points fetch failed", "user", m.Name, "group", ac.GroupName, "error", err)
		out.Errors = append(out.Errors, fmt.Sprintf("failed to fetch points for user %s in group %s", m.Name, ac.GroupName))
		return out
	}

	if Evaluate(total, j.cfg.PointThreshold) {
		slog.Debug("member met threshold", "user", m.Name, "points", total, "threshold", j.cfg.PointThreshold)
		return out
	}
	slog.Info("member under threshold", "user", m.Name, "group", ac.GroupName, "points", total, "threshold", j.cfg.PointThreshold)

	penalty := &models.Penalty{
		UserID:         m.UserID,
		GroupID:        ac.GroupID,
		WeekStart:      win.Start,
		WeekEnd:        win.End,
		PointsEarned:   total,
		PointThreshold: j.cfg.PointThreshold,
		Message:        j.messages.Pick(messages.CategoryPenalty),
		Type:           models.PenaltyTypeWeeklyTally,
	}
	if err := j.store.UpsertPenalty(ctx, penalty); err != nil {
		slog.Warn("penalty upsert failed", "user", m.Name, "group", ac.GroupName, "error", err)
		out.Errors = append(out.Errors, fmt.Sprintf("failed to create penalty for user %s in group %s", m.Name, ac.GroupName))
	} else {
		out.Penalized = true
	}

	notification := &models.Notification{
		UserID:           m.UserID,
		GroupID:          ac.GroupID,
		Title:            "Weekly Accountability Check",
		Message:          j.messages.Pick(messages.CategoryNudge),
		Type:             models.NotificationWorkoutMissed,
		RelatedEventType: "penalty",
	}
	if j.cfg.DeduplicateNotifications {
		notification.DedupeKey = fmt.Sprintf("weekly:%s:%s:%s", m.UserID, ac.GroupID, win.StartDate())
	}
	if err := j.store.InsertNotification(ctx, notification); err != nil {
		slog.Warn("notification insert failed", "user", m.Name, "group", ac.GroupName, "error", err)
		out.Errors = append(out.Errors, fmt.Sprintf("failed to create notification for user %s in group %s", m.Name, ac.GroupName))
	} else {
		out.Notified = true
	}

	return out
}
