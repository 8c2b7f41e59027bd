package settlement

import "fmt"

// Stats counts the work performed by one settlement run.
type Stats struct {
	GroupsProcessed   int   `json:"groupsProcessed"`
	PenaltiesAssigned int   `json:"penaltiesAssigned"`
	NotificationsSent int   `json:"notificationsSent"`
	PointsArchived    int64 `json:"pointsArchived"`
}

// Report is the externally observable result of one settlement run. A run
// ends in one of three states: completed clean (Success, no Errors),
// completed with partial errors (Success false, non-empty Errors, stats
// reflect the work that did happen), or failed fatally (Success false,
// zeroed stats, a single enumeration error).
type Report struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Stats   Stats    `json:"stats"`
	Errors  []string `json:"errors"`
}

func newReport() *Report {
	return &Report{
		Success: true,
		Message: "weekly settlement completed successfully",
		Errors:  []string{}, // marshals as [] rather than null
	}
}

// finish sets the terminal success flag and message from the accumulated
// errors.
func (r *Report) finish() {
	if len(r.Errors) > 0 {
		r.Success = false
		r.Message = fmt.Sprintf("weekly settlement completed with %d errors", len(r.Errors))
	}
}
