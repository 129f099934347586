package main

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"greenloop/internal/datastore"
	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/models"
)

func newJobFixtures(t *testing.T) (*bun.DB, redis.UniversalClient) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, datastore.CreateTableUser(ctx, db))
	require.NoError(t, datastore.CreateTablePointTransaction(ctx, db))

	mr := miniredis.RunT(t)
	return db, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestAuditSweepMarksDrift(t *testing.T) {
	ctx := context.Background()
	db, rdb := newJobFixtures(t)

	// cached projection says 100, the ledger says 60
	drifter, err := datastore.CreateUser(ctx, db, &models.User{
		Email: "drifter@example.com", IsActive: true, Points: 100,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, datastore.InsertPointTransaction(ctx, db, &models.PointTransaction{
		UserID: drifter.ID, Points: 60,
		TransactionType: models.TRANSACTION_EARNED,
		ReferenceType:   models.REFERENCE_ACTION_LOG,
		ReferenceID:     "1",
		CreatedAt:       time.Now(),
	}))

	steady, err := datastore.CreateUser(ctx, db, &models.User{
		Email: "steady@example.com", IsActive: true, Points: 60,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, datastore.InsertPointTransaction(ctx, db, &models.PointTransaction{
		UserID: steady.ID, Points: 60,
		TransactionType: models.TRANSACTION_EARNED,
		ReferenceType:   models.REFERENCE_ACTION_LOG,
		ReferenceID:     "2",
		CreatedAt:       time.Now(),
	}))

	job := NewAuditJob(rdb, db)
	job.runScheduledTask()

	mark, err := redis_store.GetLedgerAuditMark(ctx, rdb, drifter.ID)
	require.NoError(t, err)
	require.True(t, mark.Drifted)
	require.Equal(t, 100, mark.CachedPoints)
	require.Equal(t, 60, mark.LedgerPoints)

	mark, err = redis_store.GetLedgerAuditMark(ctx, rdb, steady.ID)
	require.NoError(t, err)
	require.False(t, mark.Drifted)

	// a second sweep sees the previous mark and still records the drift
	job.runScheduledTask()
	mark, err = redis_store.GetLedgerAuditMark(ctx, rdb, drifter.ID)
	require.NoError(t, err)
	require.True(t, mark.Drifted)
}

func TestAuditSweepStopsOnDBError(t *testing.T) {
	db, rdb := newJobFixtures(t)
	require.NoError(t, db.Close())

	// a dead database must terminate the sweep instead of spinning
	job := NewAuditJob(rdb, db)
	job.runScheduledTask()
}

func TestLeaderboardBackfillStopsOnDBError(t *testing.T) {
	db, rdb := newJobFixtures(t)
	require.NoError(t, db.Close())

	job := NewLeaderboardJob(rdb, db)
	job.initLeaderboards()
}
