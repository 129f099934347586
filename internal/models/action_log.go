package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	VERIFICATION_PENDING  = "pending"
	VERIFICATION_APPROVED = "approved"
	VERIFICATION_REJECTED = "rejected"

	// DuplicateActionWindow is the rolling window inside which a user may
	// log a given action at most once.
	DuplicateActionWindow = 24 * time.Hour
)

type ActionLog struct {
	bun.BaseModel      `bun:"table:action_log"`
	ID                 int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID             int64      `bun:"user_id" json:"user_id"`
	ActionID           int64      `bun:"action_id" json:"action_id"`
	PointsEarned       int        `bun:"points_earned" json:"points_earned"`
	CO2Saved           float64    `bun:"co2_saved" json:"co2_saved"`
	VerificationStatus string     `bun:"verification_status" json:"verification_status"`
	Notes              string     `bun:"notes" json:"notes"`
	VerifiedBy         *int64     `bun:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `bun:"verified_at" json:"verified_at,omitempty"`
	CreatedAt          time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`

	Action *SustainabilityAction `bun:"rel:belongs-to,join:action_id=id" json:"action,omitempty"`
}

// Pending reports whether the log still awaits verification. Approved and
// rejected are terminal; re-processing a terminal log is an error.
func (log *ActionLog) Pending() bool {
	return log.VerificationStatus == VERIFICATION_PENDING
}

// InDuplicateWindow reports whether a new log for the same (user, action)
// pair at time now would violate the rolling 24h uniqueness window given the
// most recent previous log.
func InDuplicateWindow(lastLoggedAt time.Time, now time.Time) bool {
	return now.Sub(lastLoggedAt) < DuplicateActionWindow
}
