package datastore

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"greenloop/internal/models"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, CreateTableUser(ctx, db))
	require.NoError(t, CreateTableSustainabilityAction(ctx, db))
	require.NoError(t, CreateTableActionLog(ctx, db))
	require.NoError(t, CreateTablePointTransaction(ctx, db))

	return db
}

func seedUser(t *testing.T, db *bun.DB, email string) *models.User {
	t.Helper()
	user, err := CreateUser(context.Background(), db, &models.User{
		Email:     email,
		FirstName: "Jamie",
		LastName:  "Doe",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	return user
}

func seedAction(t *testing.T, db *bun.DB, slug string, points int, co2 float64) *models.SustainabilityAction {
	t.Helper()
	action, err := CreateAction(context.Background(), db, &models.SustainabilityAction{
		Slug:        slug,
		Title:       slug,
		PointsValue: points,
		CO2Impact:   co2,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)
	return action
}

func TestInsertActionLogAward(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := seedUser(t, db, "award@example.com")
	action := seedAction(t, db, "bike-to-work", 150, 2.5)

	log := &models.ActionLog{
		UserID:             user.ID,
		ActionID:           action.ID,
		PointsEarned:       150,
		CO2Saved:           2.5,
		VerificationStatus: models.VERIFICATION_APPROVED,
		CreatedAt:          time.Now(),
	}
	require.NoError(t, InsertActionLogAward(ctx, db, log, action.Title))
	require.NotZero(t, log.ID)

	// the projection moved by exactly the snapshot
	fresh, err := FindUserByID(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, 150, fresh.Points)
	require.InDelta(t, 2.5, fresh.TotalCO2Saved, 1e-9)

	// and one ledger row backs it, pointing at the log
	txs, err := GetUserTransactions(ctx, db, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, 150, txs[0].Points)
	require.Equal(t, models.TRANSACTION_EARNED, txs[0].TransactionType)
	require.Equal(t, models.REFERENCE_ACTION_LOG, txs[0].ReferenceType)
	require.Equal(t, strconv.FormatInt(log.ID, 10), txs[0].ReferenceID)

	total, err := GetLedgerTotal(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, fresh.Points, total.TotalPoints)
}

func TestApproveActionLogAward(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := seedUser(t, db, "approve@example.com")
	verifier := seedUser(t, db, "admin@example.com")
	action := seedAction(t, db, "volunteer-cleanup", 200, 5.0)

	log := &models.ActionLog{
		UserID:             user.ID,
		ActionID:           action.ID,
		PointsEarned:       200,
		CO2Saved:           5.0,
		VerificationStatus: models.VERIFICATION_PENDING,
		CreatedAt:          time.Now(),
	}
	require.NoError(t, InsertActionLog(ctx, db, log))

	ok, err := ApproveActionLogAward(ctx, db, log, verifier.ID, "", action.Title, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	fresh, err := FindUserByID(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, 200, fresh.Points)

	total, err := GetLedgerTotal(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, fresh.Points, total.TotalPoints)

	// a second approval loses the guarded update and must award nothing
	ok, err = ApproveActionLogAward(ctx, db, log, verifier.ID, "", action.Title, time.Now())
	require.NoError(t, err)
	require.False(t, ok)

	fresh, err = FindUserByID(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, 200, fresh.Points)

	txs, err := GetUserTransactions(ctx, db, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestAppendAdjustment(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := seedUser(t, db, "adjust@example.com")

	award := &models.ActionLog{
		UserID:             user.ID,
		ActionID:           1,
		PointsEarned:       100,
		CO2Saved:           1.0,
		VerificationStatus: models.VERIFICATION_APPROVED,
		CreatedAt:          time.Now(),
	}
	require.NoError(t, InsertActionLogAward(ctx, db, award, "seed"))

	err := AppendAdjustment(ctx, db, &models.PointTransaction{
		UserID:          user.ID,
		Points:          -40,
		TransactionType: models.TRANSACTION_ADJUSTED,
		ReferenceType:   models.REFERENCE_MANUAL,
		ReferenceID:     "correction-1",
		Description:     "duplicate award removed",
		CreatedAt:       time.Now(),
	})
	require.NoError(t, err)

	fresh, err := FindUserByID(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, 60, fresh.Points)

	total, err := GetLedgerTotal(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, fresh.Points, total.TotalPoints)
}

func TestApproveSubmissionAward(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	submitter := seedUser(t, db, "submitter@example.com")
	verifier := seedUser(t, db, "reviewer@example.com")

	action, err := CreateAction(ctx, db, &models.SustainabilityAction{
		Slug:          "community-garden",
		Title:         "Community garden",
		PointsValue:   80,
		CO2Impact:     1.2,
		IsActive:      false,
		IsUserCreated: true,
		SubmittedBy:   &submitter.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	require.NoError(t, err)

	awarded, err := ApproveSubmissionAward(ctx, db, action, 100, 1.5, verifier.ID, action.Title, time.Now())
	require.NoError(t, err)
	require.NotNil(t, awarded)
	require.Equal(t, submitter.ID, awarded.UserID)
	require.Equal(t, models.VERIFICATION_APPROVED, awarded.VerificationStatus)

	fresh, err := FindUserByID(ctx, db, submitter.ID)
	require.NoError(t, err)
	require.Equal(t, 100, fresh.Points)

	activated, err := GetActionByID(ctx, db, action.ID)
	require.NoError(t, err)
	require.True(t, activated.IsActive)
	require.Equal(t, 100, activated.PointsValue)

	// already-activated submissions lose the guard and award nothing more
	awarded, err = ApproveSubmissionAward(ctx, db, action, 100, 1.5, verifier.ID, action.Title, time.Now())
	require.NoError(t, err)
	require.Nil(t, awarded)

	fresh, err = FindUserByID(ctx, db, submitter.ID)
	require.NoError(t, err)
	require.Equal(t, 100, fresh.Points)
}

func TestRemoveAction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := seedUser(t, db, "remover@example.com")

	unused := seedAction(t, db, "unused-action", 10, 0.1)
	logged := seedAction(t, db, "logged-action", 20, 0.2)

	require.NoError(t, InsertActionLog(ctx, db, &models.ActionLog{
		UserID:             user.ID,
		ActionID:           logged.ID,
		PointsEarned:       20,
		CO2Saved:           0.2,
		VerificationStatus: models.VERIFICATION_PENDING,
		CreatedAt:          time.Now(),
	}))

	// no logs: the row goes away entirely
	deleted, err := RemoveAction(ctx, db, unused.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	_, err = GetActionByID(ctx, db, unused.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	// logged: the row survives deactivated so history keeps resolving
	deleted, err = RemoveAction(ctx, db, logged.ID)
	require.NoError(t, err)
	require.False(t, deleted)
	kept, err := GetActionByID(ctx, db, logged.ID)
	require.NoError(t, err)
	require.False(t, kept.IsActive)
}
