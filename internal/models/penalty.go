package models

import "time"

// PenaltyTypeWeeklyTally marks penalties produced by the weekly settlement.
const PenaltyTypeWeeklyTally = "weekly_tally"

// Penalty records one member missing the weekly point threshold. At most one
// penalty exists per (UserID, GroupID, WeekStart); the settlement job upserts
// on that key, so re-running a week overwrites the row instead of duplicating
// it.
type Penalty struct {
	// UserID is the penalized member.
	UserID string

	// GroupID is the group the member was evaluated in.
	GroupID string

	// WeekStart is the Sunday the scored week began (date precision).
	WeekStart time.Time

	// WeekEnd is the Saturday the scored week ended (date precision).
	WeekEnd time.Time

	// PointsEarned is a snapshot of the member's total for the week.
	PointsEarned int

	// PointThreshold is a snapshot of the threshold in force when the
	// penalty was assigned, so later tuning doesn't rewrite history.
	PointThreshold int

	// Message is the roast text chosen for this penalty.
	Message string

	// Type is the penalty category; the weekly job always writes
	// PenaltyTypeWeeklyTally.
	Type string
}
