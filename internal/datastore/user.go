package datastore

import (
	"context"
	"strings"
	"time"

	"greenloop/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_email").IfNotExists().Unique().Column("email").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_is_admin").IfNotExists().Column("is_admin").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db *bun.DB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(ctx context.Context, db *bun.DB, email string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("email = ?", strings.ToLower(email)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func UpdateUserProfile(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewUpdate().Model(user).
		Set("first_name = ?", user.FirstName).
		Set("last_name = ?", user.LastName).
		Set("department = ?", user.Department).
		Set("updated_at = ?", time.Now()).
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// IncrementUserTotals applies a point/CO2 delta as a single SQL increment so
// concurrent awards never lose updates. Callers wanting the ledger row and
// the projection applied as a unit run this inside the same bun transaction
// as InsertPointTransaction.
func IncrementUserTotals(ctx context.Context, db bun.IDB, userID int64, points int, co2 float64) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = points + ?", points).
		Set("total_co2_saved = total_co2_saved + ?", co2).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// SetUserTotals overwrites the cached projection with absolute values. Only
// the explicit reconcile path uses this; every normal award goes through
// IncrementUserTotals.
func SetUserTotals(ctx context.Context, db bun.IDB, userID int64, points int, co2 float64) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = ?", points).
		Set("total_co2_saved = ?", co2).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func CountUsers(ctx context.Context, db *bun.DB) (int, error) {
	count, err := db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func GetUsersByLimit(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("id ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}
