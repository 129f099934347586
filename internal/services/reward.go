package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"greenloop/internal/datastore"
	"greenloop/internal/interfaces"
	"greenloop/internal/models"
	"greenloop/internal/pkg/caching"
)

type ServiceReward struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	notifier           interfaces.Notifier
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	return &ServiceReward{container, db, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, notifier}, nil
}

func (service *ServiceReward) GetLevelRewards(ctx context.Context) ([]models.LevelReward, error) {
	callback := func() ([]models.LevelReward, error) {
		rewards, err := datastore.GetLevelRewards(ctx, service.readonlyPostgresDB)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return rewards, err
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLevelRewards(), CACHE_TTL_15_MINS, callback)
}

// GetClaimableRewards lists the rewards at or below the user's level that
// the user has not claimed yet.
func (service *ServiceReward) GetClaimableRewards(ctx context.Context, user *models.User) ([]models.LevelReward, error) {
	level := models.LevelForPoints(user.Points)
	if level == 0 {
		return nil, nil
	}

	rewards, err := datastore.GetLevelRewardsUpToLevel(ctx, service.readonlyPostgresDB, level)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	claims, err := service.GetUserClaims(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	claimed := make(map[int64]bool, len(claims))
	for _, claim := range claims {
		claimed[claim.LevelRewardID] = true
	}

	claimable := make([]models.LevelReward, 0, len(rewards))
	for _, reward := range rewards {
		if !claimed[reward.ID] {
			claimable = append(claimable, reward)
		}
	}

	return claimable, nil
}

func (service *ServiceReward) GetUserClaims(ctx context.Context, userID int64) ([]*models.UserLevelReward, error) {
	callback := func() ([]*models.UserLevelReward, error) {
		claims, err := datastore.GetUserClaims(ctx, service.readonlyPostgresDB, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return claims, err
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserClaims(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceReward) GetClaimsByStatus(ctx context.Context, status string, limit, offset int) ([]*models.UserLevelReward, error) {
	claims, err := datastore.GetClaimsByStatus(ctx, service.readonlyPostgresDB, status, limit, offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return claims, err
}

// ClaimReward opens a pending claim for the user. The unique index on
// (user_id, level_reward_id) is the real once-per-reward guarantee; the
// mutex only keeps retries from hammering the insert.
func (service *ServiceReward) ClaimReward(ctx context.Context, user *models.User, levelRewardID int64) (*models.UserLevelReward, error) {
	reward, err := datastore.GetLevelRewardByID(ctx, service.readonlyPostgresDB, levelRewardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("reward not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	// The resolved user may carry cached points; the level gate needs the
	// committed total.
	user, err = datastore.FindUserByID(ctx, service.postgresDB, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	level := models.LevelForPoints(user.Points)
	if level < reward.Level {
		return nil, errorx.Wrap(ErrLevelNotReached, errorx.Invalid)
	}

	mutex := service.rs.NewMutex(LockKeyUserClaimReward(user.ID, levelRewardID))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrClaimLock, errorx.Invalid)
	}

	// nolint:errcheck
	defer mutex.Unlock()

	claim := &models.UserLevelReward{
		UserID:        user.ID,
		Level:         reward.Level,
		LevelRewardID: reward.ID,
		ClaimStatus:   models.CLAIM_PENDING,
		UserEmail:     user.Email,
		UserName:      fmt.Sprintf("%s %s", user.FirstName, user.LastName),
		ClaimedAt:     time.Now(),
	}

	ok, err := datastore.InsertClaim(ctx, service.postgresDB, claim)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrAlreadyClaimed, errorx.Invalid)
	}

	claim.Reward = reward
	service.clearClaimCache(ctx, user.ID)

	// Two sends: a confirmation for the claimant and an alert for the admin
	// channel, deduplicated independently.
	go func() {
		ctx := context.Background()
		for _, kind := range []string{models.NOTIFY_REWARD_CLAIMED, models.NOTIFY_CLAIM_ALERT} {
			err := service.notifier.Notify(ctx, kind, &models.NotificationPayload{
				UserID:      user.ID,
				UserEmail:   user.Email,
				UserName:    claim.UserName,
				RewardTitle: reward.RewardTitle,
				Level:       reward.Level,
				DedupKey:    fmt.Sprintf("%s:%d", kind, claim.ID),
			})
			if err != nil {
				log.Println(err)
			}
		}
	}()

	return claim, nil
}

// ApproveClaim moves a pending claim to approved.
func (service *ServiceReward) ApproveClaim(ctx context.Context, admin *models.User, claimID int64, notes string) (*models.UserLevelReward, error) {
	return service.transition(ctx, admin, claimID, models.CLAIM_APPROVED, notes, models.NOTIFY_REWARD_APPROVED)
}

// RejectClaim moves a pending claim to rejected; the reason is mandatory.
func (service *ServiceReward) RejectClaim(ctx context.Context, admin *models.User, claimID int64, reason string) (*models.UserLevelReward, error) {
	if reason == "" {
		return nil, errorx.Wrap(errors.New("reason is required"), errorx.Validation)
	}
	return service.transition(ctx, admin, claimID, models.CLAIM_REJECTED, reason, models.NOTIFY_REWARD_REJECTED)
}

// MarkDelivered closes an approved claim after physical hand-over.
func (service *ServiceReward) MarkDelivered(ctx context.Context, admin *models.User, claimID int64, notes string) (*models.UserLevelReward, error) {
	return service.transition(ctx, admin, claimID, models.CLAIM_DELIVERED, notes, models.NOTIFY_REWARD_DELIVERED)
}

func (service *ServiceReward) transition(ctx context.Context, admin *models.User, claimID int64, to string, notes string, notifyKind string) (*models.UserLevelReward, error) {
	claim, err := datastore.GetClaimByID(ctx, service.postgresDB, claimID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("claim not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if !models.CanTransitionClaim(claim.ClaimStatus, to) {
		return nil, errorx.Wrap(ErrInvalidClaimState, errorx.Invalid)
	}

	from := claim.ClaimStatus
	now := time.Now()
	ok, err := datastore.TransitionClaim(ctx, service.postgresDB, claimID, from, to, admin.ID, notes, now)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrInvalidClaimState, errorx.Invalid)
	}

	claim.ClaimStatus = to
	claim.AdminNotes = notes
	claim.ApprovedAt = &now
	claim.ApprovedBy = &admin.ID

	service.clearClaimCache(ctx, claim.UserID)

	go func() {
		ctx := context.Background()
		title := ""
		if claim.Reward != nil {
			title = claim.Reward.RewardTitle
		}

		err := service.notifier.Notify(ctx, notifyKind, &models.NotificationPayload{
			UserID:      claim.UserID,
			UserEmail:   claim.UserEmail,
			UserName:    claim.UserName,
			RewardTitle: title,
			Level:       claim.Level,
			Reason:      notes,
			DedupKey:    fmt.Sprintf("%s:%d", notifyKind, claim.ID),
		})
		if err != nil {
			log.Println(err)
		}
	}()

	return claim, nil
}

func (service *ServiceReward) clearClaimCache(ctx context.Context, userID int64) {
	for _, key := range []string{DBKeyUserClaims(userID), DBKeyMe(userID)} {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println("clear claim cache:", key, err)
		}
	}
}
