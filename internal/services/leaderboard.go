package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"greenloop/internal/datastore"
	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/models"
	"greenloop/internal/pkg"
	"greenloop/internal/pkg/caching"
)

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	redisDBCache       redis.UniversalClient
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	dbRedisCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
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

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, dbRedisCache, readonlyPostgresDB, cache, readonlyCache, serviceUser, serviceConfig}, nil
}

func (service *ServiceLeaderboard) GetOverallLeaderboard(ctx context.Context, user *models.User) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	return service.getLeaderboard(ctx, user, LEADERBOARD_OVERALL, limit)
}

func (service *ServiceLeaderboard) GetWeeklyLeaderboard(ctx context.Context, user *models.User) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	return service.getLeaderboard(ctx, user, LEADERBOARD_WEEKLY, limit)
}

// RebuildLeaderboards repopulates both sorted sets from the ledger. The cron
// entry point runs this so the boards stay honest even if an inline update
// was lost.
func (service *ServiceLeaderboard) RebuildLeaderboards(ctx context.Context) error {
	const pageSize = 500

	if err := redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_WEEKLY); err != nil {
		return err
	}

	thisWeek := pkg.GetFirstTimeOfCurrentWeek()
	for offset := 0; ; offset += pageSize {
		users, err := datastore.GetUsersByLimit(ctx, service.readonlyPostgresDB, pageSize, offset)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			break
		}

		for _, user := range users {
			_, err = redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_OVERALL, &models.LeaderboardItem{
				UserId: user.ID,
				Score:  float64(user.Points),
			})
			if err != nil {
				return err
			}

			weekly, err := datastore.GetUserLedgerTotalFromTime(ctx, service.readonlyPostgresDB, user.ID, &thisWeek)
			if err != nil {
				return err
			}
			if weekly.TotalPoints == 0 {
				continue
			}

			_, err = redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_WEEKLY, &models.LeaderboardItem{
				UserId: user.ID,
				Score:  float64(weekly.TotalPoints),
			})
			if err != nil {
				return err
			}
		}
	}

	service.ClearLeaderboardCache(ctx, LEADERBOARD_OVERALL)
	service.ClearLeaderboardCache(ctx, LEADERBOARD_WEEKLY)
	return nil
}

func (service *ServiceLeaderboard) ClearLeaderboardCache(ctx context.Context, leaderboardName string) {
	// nolint:errcheck
	caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("leaderboard_by_user:%s*", leaderboardName))
}

func (service *ServiceLeaderboard) getLeaderboard(ctx context.Context, user *models.User, leaderboardName string, limit int) (*models.LeaderboardResponse, error) {
	callback := func() (*models.LeaderboardResponse, error) {
		leaderboard, err := redis_store.GetLeaderboard(ctx, service.redisDB, leaderboardName, limit)
		if err != nil {
			return nil, err
		}

		for _, item := range leaderboard {
			u, _ := service.serviceUser.FindUserByID(ctx, item.UserId)
			if u != nil {
				item.Name = censorName(fmt.Sprintf("%s %s", u.FirstName, u.LastName))
			}
		}

		me := &models.LeaderboardItem{
			Name:   fmt.Sprintf("%s %s", user.FirstName, user.LastName),
			UserId: user.ID,
		}

		rankScore, err := redis_store.GetRankWithScore(ctx, service.redisDB, leaderboardName, user.ID)
		if err != nil && err != redis.Nil {
			return nil, err
		}
		if err == nil {
			me.Rank = int(rankScore.Rank + 1)
			me.Score = rankScore.Score
		}

		total, err := redis_store.GetLeaderboardParticipantsCount(ctx, service.redisDB, leaderboardName)
		if err != nil {
			return nil, err
		}

		return &models.LeaderboardResponse{
			Leaderboard: leaderboard,
			Me:          me,
			Total:       total,
		}, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardByUser(leaderboardName, user.ID, limit), CACHE_TTL_1_MIN, callback)
}

func censorName(name string) string {
	runes := []rune(name)
	if len(runes) < 3 {
		return name
	}
	return string(runes[:2]) + "*****" + string(runes[len(runes)-1])
}
