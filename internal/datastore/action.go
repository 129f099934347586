package datastore

import (
	"context"
	"strings"
	"time"

	"greenloop/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSustainabilityAction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SustainabilityAction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SustainabilityAction)(nil)).Index("index_action_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SustainabilityAction)(nil)).Index("index_action_is_active").IfNotExists().Column("is_active").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetActionBySlug(ctx context.Context, db *bun.DB, slug string) (*models.SustainabilityAction, error) {
	var action models.SustainabilityAction
	err := db.NewSelect().Model(&action).Where("slug = ?", strings.ToLower(slug)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &action, nil
}

func GetActionByID(ctx context.Context, db *bun.DB, actionID int64) (*models.SustainabilityAction, error) {
	var action models.SustainabilityAction
	err := db.NewSelect().Model(&action).Where("id = ?", actionID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &action, nil
}

func GetActiveActions(ctx context.Context, db *bun.DB) ([]models.SustainabilityAction, error) {
	var actions []models.SustainabilityAction
	err := db.NewSelect().Model(&actions).Where("is_active = ?", true).Order("category ASC", "title ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func GetPendingSubmissions(ctx context.Context, db *bun.DB) ([]models.SustainabilityAction, error) {
	var actions []models.SustainabilityAction
	err := db.NewSelect().Model(&actions).
		Where("is_user_created = ?", true).
		Where("is_active = ?", false).
		Where("rejection_reason IS NULL").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func CreateAction(ctx context.Context, db *bun.DB, action *models.SustainabilityAction) (*models.SustainabilityAction, error) {
	_, err := db.NewInsert().Model(action).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return action, nil
}

// ActivateSubmission finalizes a user-submitted entry with admin-approved
// values. The WHERE clauses make approval idempotence explicit: zero rows
// means the entry was already processed or never existed.
func ActivateSubmission(ctx context.Context, db bun.IDB, actionID int64, pointsValue int, co2Impact float64) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.SustainabilityAction)(nil)).
		Set("is_active = ?", true).
		Set("points_value = ?", pointsValue).
		Set("co2_impact = ?", co2Impact).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", actionID).
		Where("is_user_created = ?", true).
		Where("is_active = ?", false).
		Where("rejection_reason IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	return rows > 0, err
}

func RejectSubmission(ctx context.Context, db *bun.DB, actionID int64, reason string) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.SustainabilityAction)(nil)).
		Set("rejection_reason = ?", reason).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", actionID).
		Where("is_user_created = ?", true).
		Where("is_active = ?", false).
		Where("rejection_reason IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	return rows > 0, err
}

// DeactivateAction soft-disables a catalog entry. Actions with logs are
// never hard-deleted.
func DeactivateAction(ctx context.Context, db bun.IDB, actionID int64) error {
	_, err := db.NewUpdate().
		Model((*models.SustainabilityAction)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", actionID).
		Exec(ctx)
	return err
}

func CountLogsForAction(ctx context.Context, db bun.IDB, actionID int64) (int, error) {
	count, err := db.NewSelect().Model((*models.ActionLog)(nil)).Where("action_id = ?", actionID).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func DeleteAction(ctx context.Context, db bun.IDB, actionID int64) error {
	_, err := db.NewDelete().Model((*models.SustainabilityAction)(nil)).Where("id = ?", actionID).Exec(ctx)
	return err
}

// RemoveAction hard-deletes a catalog entry only when no log references it;
// an action that has been logged is deactivated instead so history keeps
// resolving. Returns whether the row was actually deleted.
func RemoveAction(ctx context.Context, db *bun.DB, actionID int64) (bool, error) {
	deleted := false
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := CountLogsForAction(ctx, tx, actionID)
		if err != nil {
			return err
		}

		if count > 0 {
			return DeactivateAction(ctx, tx, actionID)
		}

		if err := DeleteAction(ctx, tx, actionID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
