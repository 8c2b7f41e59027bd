package models

import "time"

// NotificationWorkoutMissed is the type used for weekly "you fell short"
// nudges.
const NotificationWorkoutMissed = "workout_missed"

// Notification is a user-facing message queued for delivery by the app.
// Unlike Penalty there is no natural uniqueness key: plain inserts may
// accumulate duplicates across settlement re-runs unless a DedupeKey is set.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// UserID is the recipient.
	UserID string

	// GroupID is the group context the notification refers to.
	GroupID string

	// Title is the short headline shown to the user.
	Title string

	// Message is the body text.
	Message string

	// Type categorizes the notification (e.g., NotificationWorkoutMissed).
	Type string

	// RelatedEventType names the event that produced the notification
	// (e.g., "penalty").
	RelatedEventType string

	// DedupeKey, when non-empty, makes the insert idempotent: a second
	// notification with the same key is silently dropped. Left empty for the
	// historical insert-only behavior.
	DedupeKey string

	// CreatedAt is when the notification was queued.
	CreatedAt time.Time
}
