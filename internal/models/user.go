package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:user"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Email         string    `bun:"email" json:"email"`
	FirstName     string    `bun:"first_name" json:"first_name"`
	LastName      string    `bun:"last_name" json:"last_name"`
	Department    string    `bun:"department" json:"department"`
	IsAdmin       bool      `bun:"is_admin" json:"-"`
	IsActive      bool      `bun:"is_active" json:"-"`
	Points        int       `bun:"points" json:"points"`
	TotalCO2Saved float64   `bun:"total_co2_saved" json:"total_co2_saved"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`

	Level            int           `bun:"-" json:"level"`
	IsNewUser        bool          `bun:"-" json:"is_new_user"`
	ClaimableRewards []LevelReward `bun:"-" json:"claimable_rewards"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
