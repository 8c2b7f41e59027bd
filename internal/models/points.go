package models

import "time"

// PointTransaction is an append-only ledger entry awarding points for
// check-ins and kudos. Rows are immutable once written; the sum of a user's
// transactions inside a week window is their weekly score.
type PointTransaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// UserID is the member the points belong to.
	UserID string

	// Points is the signed point delta.
	Points int

	// Description is free text explaining the award (e.g., "Morning check-in").
	Description string

	// RelatedCheckInID optionally links the transaction to the check-in that
	// produced it. Empty for kudos and manual adjustments.
	RelatedCheckInID string

	// CreatedAt is when the transaction was recorded. Window comparisons are
	// inclusive on both ends.
	CreatedAt time.Time

	// ArchivedAt is set by the weekly settlement once the transaction's week
	// has been scored. Nil while the week is still open.
	ArchivedAt *time.Time
}
