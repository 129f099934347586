package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"greenloop/internal/datastore"
	"greenloop/internal/interfaces"
	"greenloop/internal/models"
	"greenloop/internal/pkg/caching"
	"greenloop/internal/pkg/limiter"
)

type ServiceActionLog struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	redisDBCache       redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	limiter            interfaces.Limiter
	notifier           interfaces.Notifier

	serviceConfig *ServiceConfig
	serviceAction *ServiceAction
	serviceUser   *ServiceUser
}

func NewServiceActionLog(container *do.Injector) (*ServiceActionLog, error) {
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

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceAction, err := do.Invoke[*ServiceAction](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServiceActionLog{container, db, dbRedisCache, rs, postgresDB, readonlyPostgresDB, cache, rateLimiter, notifier, serviceConfig, serviceAction, serviceUser}, nil
}

// LogAction records one performance of an action for the user. Points and
// CO2 are snapshotted from the catalog at log time, so later catalog edits
// never rewrite history. Verification-free actions award immediately;
// verification-required ones sit pending until an admin decides.
func (service *ServiceActionLog) LogAction(ctx context.Context, user *models.User, slug string, notes string) (*models.ActionLog, error) {
	rate, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_ACTION_LOG_RATE_PER_MINUTE, ACTION_LOG_DEFAULT_RATE_PER_MINUTE)
	err := service.limiter.Allow(ctx, LimitKeyUserActionLog(user.ID), redis_rate.PerMinute(rate))
	if errors.Is(err, limiter.ErrRateLimited) {
		return nil, errorx.Wrap(err, errorx.RateLimiting)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	action, err := service.serviceAction.GetActionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !action.IsActive {
		return nil, errorx.Wrap(ErrActionInactive, errorx.Invalid)
	}

	mutex := service.rs.NewMutex(LockKeyUserActionLog(user.ID, action.ID))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrActionLogLock, errorx.Invalid)
	}

	// nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	latest, err := datastore.GetLatestActionLog(ctx, service.postgresDB, user.ID, action.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if latest != nil && models.InDuplicateWindow(latest.CreatedAt, now) {
		return nil, errorx.Wrap(ErrDuplicateAction, errorx.Invalid)
	}

	actionLog := &models.ActionLog{
		UserID:             user.ID,
		ActionID:           action.ID,
		PointsEarned:       action.PointsValue,
		CO2Saved:           action.CO2Impact,
		VerificationStatus: models.VERIFICATION_PENDING,
		Notes:              notes,
		CreatedAt:          now,
	}

	if action.VerificationRequired {
		if err := datastore.InsertActionLog(ctx, service.postgresDB, actionLog); err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		actionLog.Action = action
		service.ClearUserLogCache(ctx, user.ID)
		return actionLog, nil
	}

	actionLog.VerificationStatus = models.VERIFICATION_APPROVED
	if err := datastore.InsertActionLogAward(ctx, service.postgresDB, actionLog, action.Title); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	actionLog.Action = action

	service.afterAward(user.ID)

	return actionLog, nil
}

func (service *ServiceActionLog) GetUserActionLogs(ctx context.Context, userID int64, limit, offset int) ([]*models.ActionLog, error) {
	page := 0
	if limit > 0 {
		page = offset / limit
	}

	callback := func() ([]*models.ActionLog, error) {
		logs, err := datastore.GetUserActionLogs(ctx, service.readonlyPostgresDB, userID, limit, offset)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return logs, err
	}

	return caching.UseCache(ctx, service.cache, DBKeyUserActionLogs(userID, page, limit), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceActionLog) ClearUserLogCache(ctx context.Context, userID int64) {
	// nolint:errcheck
	caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("user:action_logs:%d:*", userID))
}

func (service *ServiceActionLog) GetPendingLogs(ctx context.Context, limit, offset int) ([]*models.ActionLog, error) {
	logs, err := datastore.GetPendingActionLogs(ctx, service.readonlyPostgresDB, limit, offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return logs, err
}

// ApproveLog settles a pending log and awards its snapshot. The conditional
// transition makes concurrent decisions safe: exactly one verifier wins,
// everyone else gets ErrAlreadyProcessed.
func (service *ServiceActionLog) ApproveLog(ctx context.Context, admin *models.User, logID int64, notes string) (*models.ActionLog, error) {
	actionLog, err := datastore.GetActionLogByID(ctx, service.postgresDB, logID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("log not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !actionLog.Pending() {
		return nil, errorx.Wrap(ErrAlreadyProcessed, errorx.Invalid)
	}

	description := ""
	if actionLog.Action != nil {
		description = actionLog.Action.Title
	}

	now := time.Now()
	ok, err := datastore.ApproveActionLogAward(ctx, service.postgresDB, actionLog, admin.ID, notes, description, now)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrAlreadyProcessed, errorx.Invalid)
	}

	actionLog.VerificationStatus = models.VERIFICATION_APPROVED
	actionLog.VerifiedBy = &admin.ID
	actionLog.VerifiedAt = &now
	actionLog.Notes = notes

	service.afterAward(actionLog.UserID)

	return actionLog, nil
}

// RejectLog settles a pending log without touching the ledger.
func (service *ServiceActionLog) RejectLog(ctx context.Context, admin *models.User, logID int64, reason string) (*models.ActionLog, error) {
	if reason == "" {
		return nil, errorx.Wrap(errors.New("reason is required"), errorx.Validation)
	}

	actionLog, err := datastore.GetActionLogByID(ctx, service.postgresDB, logID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("log not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !actionLog.Pending() {
		return nil, errorx.Wrap(ErrAlreadyProcessed, errorx.Invalid)
	}

	now := time.Now()
	ok, err := datastore.TransitionActionLog(ctx, service.postgresDB, logID, models.VERIFICATION_REJECTED, admin.ID, reason, now)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrAlreadyProcessed, errorx.Invalid)
	}

	actionLog.VerificationStatus = models.VERIFICATION_REJECTED
	actionLog.VerifiedBy = &admin.ID
	actionLog.VerifiedAt = &now
	actionLog.Notes = reason

	service.ClearUserLogCache(ctx, actionLog.UserID)

	go func() {
		ctx := context.Background()
		owner, err := service.serviceUser.FindUserByID(ctx, actionLog.UserID)
		if err != nil {
			log.Println(err)
			return
		}

		title := ""
		if actionLog.Action != nil {
			title = actionLog.Action.Title
		}

		err = service.notifier.Notify(ctx, models.NOTIFY_ACTION_REJECTED, &models.NotificationPayload{
			UserID:      owner.ID,
			UserEmail:   owner.Email,
			UserName:    fmt.Sprintf("%s %s", owner.FirstName, owner.LastName),
			ActionTitle: title,
			Reason:      reason,
			DedupKey:    fmt.Sprintf("%s:%d", models.NOTIFY_ACTION_REJECTED, actionLog.ID),
		})
		if err != nil {
			log.Println(err)
		}
	}()

	return actionLog, nil
}

func (service *ServiceActionLog) afterAward(userID int64) {
	go func() {
		ctx := context.Background()
		service.serviceUser.ClearUserCache(ctx, userID)
		service.ClearUserLogCache(ctx, userID)
		if err := service.serviceUser.UpdateLeaderboards(ctx, userID); err != nil {
			log.Println(err)
		}
	}()
}
