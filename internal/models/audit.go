package models

import "time"

// ConsistencyReport compares a user's cached point projection against the
// ledger sum. Drift is reported, never repaired in place; reconciliation is
// a separate explicit operation.
type ConsistencyReport struct {
	UserID       int64     `json:"user_id"`
	CachedPoints int       `json:"cached_points"`
	LedgerPoints int       `json:"ledger_points"`
	CachedCO2    float64   `json:"cached_co2"`
	LedgerCO2    float64   `json:"ledger_co2"`
	Consistent   bool      `json:"consistent"`
	CheckedAt    time.Time `json:"checked_at"`
}

// NewConsistencyReport compares cached totals against the ledger sums.
// Points decide consistency; CO2 is carried for the reconcile path.
func NewConsistencyReport(userID int64, cachedPoints, ledgerPoints int, cachedCO2, ledgerCO2 float64, checkedAt time.Time) *ConsistencyReport {
	return &ConsistencyReport{
		UserID:       userID,
		CachedPoints: cachedPoints,
		LedgerPoints: ledgerPoints,
		CachedCO2:    cachedCO2,
		LedgerCO2:    ledgerCO2,
		Consistent:   cachedPoints == ledgerPoints,
		CheckedAt:    checkedAt,
	}
}
