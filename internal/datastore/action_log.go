package datastore

import (
	"context"
	"time"

	"greenloop/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableActionLog(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ActionLog)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ActionLog)(nil)).Index("index_action_log_user_action").IfNotExists().Column("user_id", "action_id", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ActionLog)(nil)).Index("index_action_log_status").IfNotExists().Column("verification_status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertActionLog(ctx context.Context, db bun.IDB, log *models.ActionLog) error {
	_, err := db.NewInsert().Model(log).Exec(ctx)
	return err
}

func GetActionLogByID(ctx context.Context, db *bun.DB, logID int64) (*models.ActionLog, error) {
	var log models.ActionLog
	err := db.NewSelect().Model(&log).Relation("Action").Where("action_log.id = ?", logID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &log, nil
}

// GetLatestActionLog returns the most recent log of a (user, action) pair,
// used for the rolling duplicate window check.
func GetLatestActionLog(ctx context.Context, db *bun.DB, userID, actionID int64) (*models.ActionLog, error) {
	var log models.ActionLog
	err := db.NewSelect().Model(&log).
		Where("user_id = ?", userID).
		Where("action_id = ?", actionID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &log, nil
}

func GetUserActionLogs(ctx context.Context, db *bun.DB, userID int64, limit, offset int) ([]*models.ActionLog, error) {
	var logs []*models.ActionLog
	err := db.NewSelect().Model(&logs).
		Relation("Action").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return logs, nil
}

func GetPendingActionLogs(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.ActionLog, error) {
	var logs []*models.ActionLog
	err := db.NewSelect().Model(&logs).
		Relation("Action").
		Where("verification_status = ?", models.VERIFICATION_PENDING).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// TransitionActionLog moves a pending log to a terminal status. The guard on
// the current status makes concurrent approvals race-safe: exactly one
// transition wins, the rest see zero rows.
func TransitionActionLog(ctx context.Context, db bun.IDB, logID int64, status string, verifierID int64, notes string, now time.Time) (bool, error) {
	q := db.NewUpdate().
		Model((*models.ActionLog)(nil)).
		Set("verification_status = ?", status).
		Set("verified_by = ?", verifierID).
		Set("verified_at = ?", now).
		Where("id = ?", logID).
		Where("verification_status = ?", models.VERIFICATION_PENDING)
	if notes != "" {
		q = q.Set("notes = ?", notes)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	return rows > 0, err
}
