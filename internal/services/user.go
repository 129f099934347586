package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"greenloop/internal/datastore"
	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/models"
	"greenloop/internal/pkg"
	"greenloop/internal/pkg/caching"
)

type ServiceUser struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	redisDBCache       redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceReward *ServiceReward
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	dbRedisCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, db, dbRedisCache, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceReward}, nil
}

func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil {
		return nil, errors.New("userAuth is nil")
	}

	user, err := service.FindUserByEmail(ctx, userAuth.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if user != nil {
		if user.FirstName != userAuth.FirstName || user.LastName != userAuth.LastName {
			user.FirstName = userAuth.FirstName
			user.LastName = userAuth.LastName
			if _, err := datastore.UpdateUserProfile(ctx, service.postgresDB, user); err != nil {
				return nil, err
			}
			service.ClearUserCache(ctx, user.ID)
		}
		return user, nil
	}

	now := time.Now()
	newUser := &models.User{
		Email:     strings.ToLower(userAuth.Email),
		FirstName: userAuth.FirstName,
		LastName:  userAuth.LastName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log.Println("create new user:", "email:", newUser.Email)
	user, err = datastore.CreateUser(ctx, service.postgresDB, newUser)
	if err != nil {
		return nil, err
	}

	user.IsNewUser = true
	return user, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceUser) FindUserByIDNoCache(ctx context.Context, userID int64) (*models.User, error) {
	return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
}

func (service *ServiceUser) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByEmail(ctx, service.readonlyPostgresDB, strings.ToLower(email))
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserByEmail(email), CACHE_TTL_5_MINS, callback)
}

// Me decorates the stored row with the derived level and the rewards the
// user could still claim at that level.
func (service *ServiceUser) Me(ctx context.Context, user *models.User) (*models.User, error) {
	callback := func() (*models.User, error) {
		user.Level = models.LevelForPoints(user.Points)

		claimable, err := service.serviceReward.GetClaimableRewards(ctx, user)
		if err != nil {
			return nil, err
		}
		user.ClaimableRewards = claimable

		return user, nil
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyMe(user.ID), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceUser) GetUserTransactions(ctx context.Context, userID int64, limit, offset int) ([]*models.PointTransaction, error) {
	return datastore.GetUserTransactions(ctx, service.readonlyPostgresDB, userID, limit, offset)
}

// AuditLedger recomputes the user's ledger sum and compares it to the cached
// projection. Drift is reported and marked, never repaired here.
func (service *ServiceUser) AuditLedger(ctx context.Context, userID int64) (*models.ConsistencyReport, error) {
	user, err := service.FindUserByIDNoCache(ctx, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}

	total, err := datastore.GetLedgerTotal(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	now := time.Now()
	report := models.NewConsistencyReport(userID, user.Points, total.TotalPoints, user.TotalCO2Saved, total.TotalCO2, now)

	err = redis_store.SetLedgerAuditMark(ctx, service.redisDB, &redis_store.LedgerAuditMark{
		UserID:       userID,
		CachedPoints: user.Points,
		LedgerPoints: total.TotalPoints,
		Drifted:      !report.Consistent,
		AuditedAt:    now,
	})
	if err != nil {
		log.Println("set ledger audit mark:", err)
	}

	if !report.Consistent {
		log.Println("ledger drift:", "user:", userID, "cached:", user.Points, "ledger:", total.TotalPoints)
		return report, errorx.Wrap(ErrLedgerDrift, errorx.Invalid)
	}

	return report, nil
}

// ReconcileLedger overwrites the cached projection with the ledger sum. This
// is the only path allowed to set totals absolutely.
func (service *ServiceUser) ReconcileLedger(ctx context.Context, userID int64) (*models.ConsistencyReport, error) {
	// Drift is exactly what reconcile exists to repair, so the audit's
	// drift error is expected here; anything without a report is not.
	report, err := service.AuditLedger(ctx, userID)
	if report == nil {
		return nil, err
	}

	if report.Consistent {
		return report, nil
	}

	err = datastore.SetUserTotals(ctx, service.postgresDB, userID, report.LedgerPoints, report.LedgerCO2)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.ClearUserCache(ctx, userID)
	return report, nil
}

// AdjustPoints appends a signed manual correction to the ledger. The ledger
// stays append-only: mistakes get compensating rows, not edits.
func (service *ServiceUser) AdjustPoints(ctx context.Context, admin *models.User, userID int64, points int, co2 float64, reason string) (*models.PointTransaction, error) {
	if reason == "" {
		return nil, errorx.Wrap(errors.New("reason is required"), errorx.Validation)
	}

	user, err := service.FindUserByIDNoCache(ctx, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}

	if !models.ValidAdjustment(user.Points, points, user.TotalCO2Saved, co2) {
		return nil, errorx.Wrap(errors.New("adjustment would drive totals negative"), errorx.Validation)
	}

	txn := &models.PointTransaction{
		UserID:          user.ID,
		Points:          points,
		CO2:             co2,
		TransactionType: models.TRANSACTION_ADJUSTED,
		ReferenceType:   models.REFERENCE_MANUAL,
		ReferenceID:     uuid.NewString(),
		Description:     fmt.Sprintf("manual adjustment by admin %d: %s", admin.ID, reason),
		CreatedAt:       time.Now(),
	}

	err = datastore.AppendAdjustment(ctx, service.postgresDB, txn)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.ClearUserCache(ctx, userID)

	go func() {
		ctx := context.Background()
		if err := service.UpdateLeaderboards(ctx, userID); err != nil {
			log.Println(err)
		}
	}()

	return txn, nil
}

// UpdateLeaderboards pushes the user's fresh totals into the overall and
// weekly sorted sets.
func (service *ServiceUser) UpdateLeaderboards(ctx context.Context, userID int64) error {
	user, err := service.FindUserByIDNoCache(ctx, userID)
	if err != nil {
		return err
	}

	_, err = redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_OVERALL, &models.LeaderboardItem{
		UserId: user.ID,
		Score:  float64(user.Points),
	})
	if err != nil {
		return err
	}

	thisWeek := pkg.GetFirstTimeOfCurrentWeek()
	weekly, err := datastore.GetUserLedgerTotalFromTime(ctx, service.readonlyPostgresDB, user.ID, &thisWeek)
	if err != nil {
		return err
	}

	_, err = redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_WEEKLY, &models.LeaderboardItem{
		UserId: user.ID,
		Score:  float64(weekly.TotalPoints),
	})
	if err != nil {
		return err
	}

	caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("leaderboard_by_user:%s*", LEADERBOARD_OVERALL))
	return nil
}

func (service *ServiceUser) ClearUserCache(ctx context.Context, userID int64) {
	for _, key := range []string{DBKeyUser(userID), DBKeyMe(userID)} {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println("clear user cache:", key, err)
		}
	}
}
