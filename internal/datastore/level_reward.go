package datastore

import (
	"context"
	"time"

	"greenloop/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableLevelReward(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.LevelReward)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LevelReward)(nil)).Index("index_level_reward_level").IfNotExists().Column("level").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableUserLevelReward(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserLevelReward)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserLevelReward)(nil)).Index("index_user_level_reward_unique").IfNotExists().Unique().Column("user_id", "level_reward_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserLevelReward)(nil)).Index("index_user_level_reward_status").IfNotExists().Column("claim_status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetLevelRewardByID(ctx context.Context, db *bun.DB, rewardID int64) (*models.LevelReward, error) {
	var reward models.LevelReward
	err := db.NewSelect().Model(&reward).Where("id = ?", rewardID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &reward, nil
}

func GetLevelRewards(ctx context.Context, db *bun.DB) ([]models.LevelReward, error) {
	var rewards []models.LevelReward
	err := db.NewSelect().Model(&rewards).Order("level ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func GetLevelRewardsUpToLevel(ctx context.Context, db *bun.DB, level int) ([]models.LevelReward, error) {
	var rewards []models.LevelReward
	err := db.NewSelect().Model(&rewards).Where("level <= ?", level).Order("level ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func CreateLevelReward(ctx context.Context, db *bun.DB, reward *models.LevelReward) (*models.LevelReward, error) {
	_, err := db.NewInsert().Model(reward).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return reward, nil
}

// InsertClaim enforces one claim per (user, level reward) via the unique
// index: a conflicting insert affects zero rows and the caller reports the
// duplicate.
func InsertClaim(ctx context.Context, db *bun.DB, claim *models.UserLevelReward) (bool, error) {
	res, err := db.NewInsert().Model(claim).On("CONFLICT (user_id, level_reward_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	return rows > 0, err
}

func GetClaimByID(ctx context.Context, db *bun.DB, claimID int64) (*models.UserLevelReward, error) {
	var claim models.UserLevelReward
	err := db.NewSelect().Model(&claim).Relation("Reward").Where("user_level_reward.id = ?", claimID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &claim, nil
}

func GetUserClaims(ctx context.Context, db *bun.DB, userID int64) ([]*models.UserLevelReward, error) {
	var claims []*models.UserLevelReward
	err := db.NewSelect().Model(&claims).
		Relation("Reward").
		Where("user_id = ?", userID).
		Order("claimed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

func GetClaimsByStatus(ctx context.Context, db *bun.DB, status string, limit, offset int) ([]*models.UserLevelReward, error) {
	var claims []*models.UserLevelReward
	q := db.NewSelect().Model(&claims).
		Relation("Reward").
		Order("claimed_at ASC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		q = q.Where("claim_status = ?", status)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// TransitionClaim moves a claim between lifecycle states with the current
// state in the guard, same race rule as TransitionActionLog.
func TransitionClaim(ctx context.Context, db *bun.DB, claimID int64, from, to string, adminID int64, notes string, now time.Time) (bool, error) {
	q := db.NewUpdate().
		Model((*models.UserLevelReward)(nil)).
		Set("claim_status = ?", to).
		Set("approved_by = ?", adminID).
		Set("approved_at = ?", now).
		Where("id = ?", claimID).
		Where("claim_status = ?", from)
	if notes != "" {
		q = q.Set("admin_notes = ?", notes)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	return rows > 0, err
}
