package main

import (
	"context"
	"log"
	"time"

	"greenloop/internal/datastore"
	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/models"
	"greenloop/internal/pkg"
	"greenloop/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type LeaderboardJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewLeaderboardJob(redis redis.UniversalClient, db *bun.DB) *LeaderboardJob {
	return &LeaderboardJob{
		Redis: redis,
		Db:    db,
	}
}

func (j *LeaderboardJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, services.CONFIG_CRONJOB_TIME_LEADERBOARD)
	if err != nil {
		log.Println(err)
		return
	}

	if timeline == nil || timeline.Value == "" {
		log.Println("No leaderboard timeline found")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.runScheduledTask)
	log.Println("Leaderboard Cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
	j.initLeaderboards()
}

// runScheduledTask resets the weekly board at the configured boundary. The
// board refills organically as new points land.
func (j *LeaderboardJob) runScheduledTask() {
	ctx := context.Background()
	log.Println("Start cleaning weekly leaderboard ...")
	err := redis_store.ClearLeaderboard(ctx, j.Redis, services.LEADERBOARD_WEEKLY)
	if err != nil {
		log.Println(err)
		return
	}
	log.Println("Weekly leaderboard cleaned")
}

func (j *LeaderboardJob) initLeaderboards() {
	ctx := context.Background()
	limit := 100
	offset := 0

	startTimeOfWeek := pkg.GetFirstTimeOfCurrentWeek()
	log.Println("Start loading ledger totals from time:", startTimeOfWeek)

	for {
		totals, err := datastore.GetLedgerTotalsFromTime(ctx, j.Db, &startTimeOfWeek, limit, offset)
		offset += limit
		if err != nil {
			log.Println("leaderboard page fetch:", err)
			break
		}

		if len(totals) == 0 {
			log.Println("No more ledger totals found. Finish loading weekly leaderboard")
			break
		}

		for _, total := range totals {
			_, err := redis_store.SetLeaderboard(ctx, j.Redis, services.LEADERBOARD_WEEKLY, &models.LeaderboardItem{
				UserId: total.UserID,
				Score:  float64(total.TotalPoints),
			})
			if err != nil {
				log.Println(err)
			}
		}
	}

	offset = 0
	for {
		users, err := datastore.GetUsersByLimit(ctx, j.Db, limit, offset)
		offset += limit
		if err != nil {
			log.Println("leaderboard page fetch:", err)
			break
		}

		if len(users) == 0 {
			log.Println("Finish loading overall leaderboard")
			break
		}

		for _, user := range users {
			_, err := redis_store.SetLeaderboard(ctx, j.Redis, services.LEADERBOARD_OVERALL, &models.LeaderboardItem{
				UserId: user.ID,
				Score:  float64(user.Points),
			})
			if err != nil {
				log.Println(err)
			}
		}
	}
}
