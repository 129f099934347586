package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	CLAIM_PENDING   = "pending"
	CLAIM_APPROVED  = "approved"
	CLAIM_REJECTED  = "rejected"
	CLAIM_DELIVERED = "delivered"
)

type LevelReward struct {
	bun.BaseModel `bun:"table:level_reward"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Level         int       `bun:"level" json:"level"`
	RewardTitle   string    `bun:"reward_title" json:"reward_title"`
	RewardDesc    string    `bun:"reward_description" json:"reward_description"`
	RewardType    string    `bun:"reward_type" json:"reward_type"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type UserLevelReward struct {
	bun.BaseModel `bun:"table:user_level_reward"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id" json:"user_id"`
	Level         int        `bun:"level" json:"level"`
	LevelRewardID int64      `bun:"level_reward_id" json:"level_reward_id"`
	ClaimStatus   string     `bun:"claim_status" json:"claim_status"`
	UserEmail     string     `bun:"user_email" json:"user_email"`
	UserName      string     `bun:"user_name" json:"user_name"`
	AdminNotes    string     `bun:"admin_notes" json:"admin_notes"`
	ClaimedAt     time.Time  `bun:"claimed_at,default:current_timestamp" json:"claimed_at"`
	ApprovedAt    *time.Time `bun:"approved_at" json:"approved_at,omitempty"`
	ApprovedBy    *int64     `bun:"approved_by" json:"approved_by,omitempty"`

	Reward *LevelReward `bun:"rel:belongs-to,join:level_reward_id=id" json:"reward,omitempty"`
}

// claimTransitions is the allowed lifecycle: a claim is approved or rejected
// from pending only, and delivered from approved only. Rejected and delivered
// are terminal.
var claimTransitions = map[string]string{
	CLAIM_APPROVED:  CLAIM_PENDING,
	CLAIM_REJECTED:  CLAIM_PENDING,
	CLAIM_DELIVERED: CLAIM_APPROVED,
}

// CanTransitionClaim reports whether a claim in state from may move to state
// to.
func CanTransitionClaim(from, to string) bool {
	required, ok := claimTransitions[to]
	return ok && from == required
}
