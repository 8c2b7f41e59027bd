// Package settlement implements the weekly accountability job: it evaluates
// every active group's members against the point threshold for the current
// Sunday–Saturday window, records penalties and notifications for members
// who fell short, archives the week's point transactions, and reports run
// statistics.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/groupgainz/backend/internal/messages"
	"github.com/groupgainz/backend/internal/metrics"
	"github.com/groupgainz/backend/internal/models"
	"github.com/groupgainz/backend/internal/storage"
	"github.com/groupgainz/backend/internal/week"
)

// Config tunes the settlement job.
type Config struct {
	// PointThreshold is the minimum weekly total a member must reach to
	// avoid a penalty. Defaults to DefaultPointThreshold when zero.
	PointThreshold int

	// DeduplicateNotifications suppresses repeat "workout missed"
	// notifications when the job is re-run for the same week, by stamping a
	// per-(user, group, week) dedupe key on each insert. Off by default:
	// historically re-runs have accumulated duplicate notifications while
	// penalties stayed idempotent, and that asymmetry is preserved unless
	// explicitly switched.
	DeduplicateNotifications bool
}

// Job runs the weekly settlement against a Store.
type Job struct {
	store    storage.Store
	messages messages.Provider
	cfg      Config
}

// NewJob wires the settlement job with its collaborators.
func NewJob(store storage.Store, provider messages.Provider, cfg Config) *Job {
	if cfg.PointThreshold <= 0 {
		cfg.PointThreshold = DefaultPointThreshold
	}
	return &Job{store: store, messages: provider, cfg: cfg}
}

// Run executes one settlement for the week containing now.
//
// The returned error is non-nil only for the fatal case (active-contract
// enumeration failed); the report then carries zeroed stats and the single
// fatal error. All other failures are recoverable: they are recorded in
// Report.Errors at member or group scope and processing continues, so a
// partially failed run still returns a nil error with Success=false.
//
// Re-running the same week is safe for penalties (natural-key upsert) and
// archival (already-archived rows are skipped); notifications duplicate
// unless Config.DeduplicateNotifications is set.
func (j *Job) Run(ctx context.Context, now time.Time) (*Report, error) {
	win := week.Current(now)
	slog.Info("weekly settlement starting",
		"week_start", win.StartDate(),
		"week_end", win.EndDate(),
		"threshold", j.cfg.PointThreshold,
	)

	report := newReport()

	contracts, err := j.store.ListActiveContracts(ctx)
	if err != nil {
		err = fmt.Errorf("failed to fetch active contracts: %w", err)
		slog.Error("weekly settlement aborted", "error", err)
		report.Success = false
		report.Message = "weekly settlement failed"
		report.Errors = append(report.Errors, err.Error())
		metrics.ObserveSettlement("fatal", 0, 0, 0)
		return report, err
	}

	if len(contracts) == 0 {
		slog.Info("no active groups to process")
		report.Message = "no active groups to process"
		metrics.ObserveSettlement("clean", 0, 0, 0)
		return report, nil
	}

	for _, ac := range contracts {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("run cancelled after %d groups: %v", report.Stats.GroupsProcessed, ctx.Err()))
			break
		}
		report.Stats.GroupsProcessed++
		j.processGroup(ctx, report, win, ac)
	}

	report.finish()
	outcome := "clean"
	if !report.Success {
		outcome = "partial"
	}
	metrics.ObserveSettlement(outcome, report.Stats.PenaltiesAssigned, report.Stats.NotificationsSent, report.Stats.PointsArchived)

	slog.Info("weekly settlement finished",
		"groups", report.Stats.GroupsProcessed,
		"penalties", report.Stats.PenaltiesAssigned,
		"notifications", report.Stats.NotificationsSent,
		"archived", report.Stats.PointsArchived,
		"errors", len(report.Errors),
	)
	return report, nil
}

// processGroup evaluates every member of one group, then archives the
// group's window. Failures are folded into the report; nothing propagates.
func (j *Job) processGroup(ctx context.Context, report *Report, win week.Window, ac models.ActiveContract) {
	slog.Info("processing group", "group", ac.GroupName, "group_id", ac.GroupID, "members", len(ac.Members))

	for _, m := range ac.Members {
		out := j.settleMember(ctx, win, ac, m)
		if out.Penalized {
			report.Stats.PenaltiesAssigned++
		}
		if out.Notified {
			report.Stats.NotificationsSent++
		}
		report.Errors = append(report.Errors, out.Errors...)
	}

	count, err := j.store.ArchiveWeeklyPoints(ctx, ac.GroupID, win.Start, win.End)
	if err != nil {
		slog.Warn("archive failed", "group", ac.GroupName, "error", err)
		report.Errors = append(report.Errors, fmt.Sprintf("failed to archive points for group %s", ac.GroupName))
		return
	}
	report.Stats.PointsArchived += count
	slog.Info("archived weekly points", "group", ac.GroupName, "count", count)
}
