package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TRANSACTION_EARNED   = "earned"
	TRANSACTION_ADJUSTED = "adjusted"

	REFERENCE_ACTION_LOG   = "action_log"
	REFERENCE_REWARD_CLAIM = "reward_claim"
	REFERENCE_MANUAL       = "manual"
)

// PointTransaction is one row of the append-only ledger. Rows are never
// updated or deleted; the per-user sum is the source of truth that the
// cached User.Points projection must always match.
type PointTransaction struct {
	bun.BaseModel   `bun:"table:point_transaction"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID          int64     `bun:"user_id" json:"user_id"`
	Points          int       `bun:"points" json:"points"`
	CO2             float64   `bun:"co2" json:"co2"`
	TransactionType string    `bun:"transaction_type" json:"transaction_type"`
	ReferenceType   string    `bun:"reference_type" json:"reference_type"`
	ReferenceID     string    `bun:"reference_id" json:"reference_id"`
	Description     string    `bun:"description" json:"description"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// ValidAdjustment reports whether applying a signed delta keeps the user's
// totals non-negative. Corrections larger than the current balance must be
// rejected, not clamped, so the ledger sum stays equal to the projection.
func ValidAdjustment(currentPoints, deltaPoints int, currentCO2, deltaCO2 float64) bool {
	return currentPoints+deltaPoints >= 0 && currentCO2+deltaCO2 >= 0
}

type LedgerTotal struct {
	UserID      int64   `json:"user_id"`
	TotalPoints int     `json:"total_points"`
	TotalCO2    float64 `json:"total_co2"`
}

// SumTransactions folds a user's ledger rows into point and CO2 totals.
func SumTransactions(txs []*PointTransaction) (points int, co2 float64) {
	for _, tx := range txs {
		points += tx.Points
		co2 += tx.CO2
	}
	return points, co2
}
