package main

import (
	"context"
	"log"
	"time"

	"greenloop/internal/datastore"
	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

// AuditJob sweeps every user and compares the cached point projection with
// the ledger sum. Drifted users are logged and marked; the job never repairs
// anything on its own.
type AuditJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewAuditJob(redis redis.UniversalClient, db *bun.DB) *AuditJob {
	return &AuditJob{
		Redis: redis,
		Db:    db,
	}
}

func (j *AuditJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, services.CONFIG_CRONJOB_TIME_AUDIT)
	if err != nil {
		log.Println(err)
		return
	}

	if timeline == nil || timeline.Value == "" {
		log.Println("No audit timeline found")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.runScheduledTask)
	log.Println("Audit Cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
}

func (j *AuditJob) runScheduledTask() {
	ctx := context.Background()
	limit := 100
	offset := 0
	drifted := 0
	checked := 0

	log.Println("Start ledger audit ...")

	for {
		users, err := datastore.GetUsersByLimit(ctx, j.Db, limit, offset)
		offset += limit
		if err != nil {
			log.Println("audit page fetch:", err)
			break
		}

		if len(users) == 0 {
			break
		}

		for _, user := range users {
			total, err := datastore.GetLedgerTotal(ctx, j.Db, user.ID)
			if err != nil {
				log.Println(err)
				continue
			}

			checked++
			consistent := user.Points == total.TotalPoints
			if !consistent {
				drifted++
				previous, err := redis_store.GetLedgerAuditMark(ctx, j.Redis, user.ID)
				if err == nil && previous.Drifted {
					log.Println("ledger drift persists:", "user:", user.ID, "since:", previous.AuditedAt.Format(time.RFC3339), "cached:", user.Points, "ledger:", total.TotalPoints)
				} else {
					log.Println("ledger drift:", "user:", user.ID, "cached:", user.Points, "ledger:", total.TotalPoints)
				}
			}

			err = redis_store.SetLedgerAuditMark(ctx, j.Redis, &redis_store.LedgerAuditMark{
				UserID:       user.ID,
				CachedPoints: user.Points,
				LedgerPoints: total.TotalPoints,
				Drifted:      !consistent,
				AuditedAt:    time.Now(),
			})
			if err != nil {
				log.Println(err)
			}
		}
	}

	log.Println("Ledger audit done:", "checked:", checked, "drifted:", drifted)
}
