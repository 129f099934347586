package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ACTION_POINTS_MIN = 1
	ACTION_POINTS_MAX = 1000
)

type SustainabilityAction struct {
	bun.BaseModel        `bun:"table:sustainability_action"`
	ID                   int64     `bun:"id,pk,autoincrement" json:"id"`
	Slug                 string    `bun:"slug" json:"slug"`
	Title                string    `bun:"title" json:"title"`
	Description          string    `bun:"description" json:"description"`
	Category             string    `bun:"category" json:"category"`
	PointsValue          int       `bun:"points_value" json:"points_value"`
	CO2Impact            float64   `bun:"co2_impact" json:"co2_impact"`
	VerificationRequired bool      `bun:"verification_required" json:"verification_required"`
	IsActive             bool      `bun:"is_active" json:"is_active"`
	IsUserCreated        bool      `bun:"is_user_created" json:"is_user_created"`
	SubmittedBy          *int64    `bun:"submitted_by" json:"submitted_by,omitempty"`
	RejectionReason      *string   `bun:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt            time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt            time.Time `bun:"updated_at" json:"updated_at"`
}

// ValidPointsValue reports whether a catalog point value is inside the
// allowed band.
func ValidPointsValue(points int) bool {
	return points >= ACTION_POINTS_MIN && points <= ACTION_POINTS_MAX
}
