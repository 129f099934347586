package datastore

import (
	"context"
	"time"

	"greenloop/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePointTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.PointTransaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PointTransaction)(nil)).Index("index_point_transaction_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PointTransaction)(nil)).Index("index_point_transaction_created_at").IfNotExists().Column("created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PointTransaction)(nil)).Index("index_point_transaction_reference").IfNotExists().Column("reference_type", "reference_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertPointTransaction appends a ledger row. The ledger has no update or
// delete path.
func InsertPointTransaction(ctx context.Context, db bun.IDB, tx *models.PointTransaction) error {
	_, err := db.NewInsert().Model(tx).Exec(ctx)
	return err
}

func GetLedgerTotal(ctx context.Context, db *bun.DB, userID int64) (*models.LedgerTotal, error) {
	total := models.LedgerTotal{UserID: userID}
	err := db.NewSelect().
		ColumnExpr("COALESCE(SUM(points), 0) as total_points").
		ColumnExpr("COALESCE(SUM(co2), 0) as total_co2").
		TableExpr("point_transaction").
		Where("user_id = ?", userID).
		Scan(ctx, &total.TotalPoints, &total.TotalCO2)
	if err != nil {
		return nil, err
	}

	return &total, nil
}

func GetUserLedgerTotalFromTime(ctx context.Context, db *bun.DB, userID int64, from *time.Time) (*models.LedgerTotal, error) {
	total := models.LedgerTotal{UserID: userID}
	q := db.NewSelect().
		ColumnExpr("COALESCE(SUM(points), 0) as total_points").
		ColumnExpr("COALESCE(SUM(co2), 0) as total_co2").
		TableExpr("point_transaction").
		Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}

	err := q.Scan(ctx, &total.TotalPoints, &total.TotalCO2)
	if err != nil {
		return nil, err
	}

	return &total, nil
}

func GetUserTransactions(ctx context.Context, db *bun.DB, userID int64, limit, offset int) ([]*models.PointTransaction, error) {
	var txs []*models.PointTransaction
	err := db.NewSelect().Model(&txs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func GetLedgerTotalsFromTime(ctx context.Context, db *bun.DB, from *time.Time, limit, offset int) ([]*models.LedgerTotal, error) {
	q := db.NewSelect().
		ColumnExpr("COALESCE(SUM(points), 0) as total_points").
		ColumnExpr("COALESCE(SUM(co2), 0) as total_co2").
		ColumnExpr("user_id").
		TableExpr("point_transaction").
		GroupExpr("user_id").
		OrderExpr("total_points DESC").
		Limit(limit).
		Offset(offset)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}

	var totals []*models.LedgerTotal
	err := q.Scan(ctx, &totals)
	if err != nil {
		return nil, err
	}

	return totals, nil
}
