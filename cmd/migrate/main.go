package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"

	"greenloop/internal/datastore"
	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/models"
	"greenloop/internal/services"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeed(),
			commandLeaderboardBackfill(),
			commandReconcile(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableSustainabilityAction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableActionLog(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTablePointTransaction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableLevelReward(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserLevelReward(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name: "seed",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := map[string]string{
				services.CONFIG_LEADERBOARD_LIMIT:          "20",
				services.CONFIG_ACTION_LOG_RATE_PER_MINUTE: "20",
				services.CONFIG_CRONJOB_TIME_AUDIT:         "0 3 * * *",
				services.CONFIG_CRONJOB_TIME_LEADERBOARD:   "0 0 * * 1",
			}
			for key, value := range configs {
				err = datastore.UpsertConfig(ctx, db, &models.Config{Key: key, Value: value})
				if err != nil {
					log.Fatal(err)
				}
			}

			for _, action := range seedActions {
				_, err = datastore.CreateAction(ctx, db, action)
				if err != nil {
					log.Println("seed action:", action.Slug, err)
				}
			}

			for _, reward := range seedRewards {
				_, err = datastore.CreateLevelReward(ctx, db, reward)
				if err != nil {
					log.Println("seed reward:", reward.RewardTitle, err)
				}
			}

			log.Println("seed done")
			return nil
		},
	}
}

func commandLeaderboardBackfill() *cli.Command {
	return &cli.Command{
		Name: "leaderboard",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			dbRedis, err := getRedis()
			if err != nil {
				log.Fatal(err)
			}

			limit := 100
			offset := 0
			for {
				users, err := datastore.GetUsersByLimit(ctx, db, limit, offset)
				if err != nil {
					log.Fatal(err)
				}
				offset += limit

				if len(users) == 0 {
					break
				}

				for _, user := range users {
					_, err := redis_store.SetLeaderboard(ctx, dbRedis, services.LEADERBOARD_OVERALL, &models.LeaderboardItem{
						UserId: user.ID,
						Score:  float64(user.Points),
					})
					if err != nil {
						log.Println(err)
					}
				}
			}

			log.Println("leaderboard backfill done")
			return nil
		},
	}
}

// commandReconcile sets every drifted user's cached totals back to the
// ledger sum. Run only after an audit flagged drift and the cause is
// understood.
func commandReconcile() *cli.Command {
	return &cli.Command{
		Name: "reconcile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "write fixes instead of only reporting",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			limit := 100
			offset := 0
			drifted := 0
			for {
				users, err := datastore.GetUsersByLimit(ctx, db, limit, offset)
				if err != nil {
					log.Fatal(err)
				}
				offset += limit

				if len(users) == 0 {
					break
				}

				for _, user := range users {
					total, err := datastore.GetLedgerTotal(ctx, db, user.ID)
					if err != nil {
						log.Println(err)
						continue
					}

					if user.Points == total.TotalPoints {
						continue
					}

					drifted++
					log.Println("drift:", "user:", user.ID, "cached:", user.Points, "ledger:", total.TotalPoints)

					if c.Bool("apply") {
						err = datastore.SetUserTotals(ctx, db, user.ID, total.TotalPoints, total.TotalCO2)
						if err != nil {
							log.Println(err)
						}
					}
				}
			}

			log.Println("reconcile done:", "drifted:", drifted, "applied:", c.Bool("apply"))
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func getRedis() (redis.UniversalClient, error) {
	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv("REDIS_DB"),
	})
}

var seedActions = []*models.SustainabilityAction{
	{Slug: "bike-to-work", Title: "Bike to work", Category: "transport", PointsValue: 50, CO2Impact: 2.5, VerificationRequired: false, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	{Slug: "public-transport", Title: "Take public transport", Category: "transport", PointsValue: 30, CO2Impact: 1.8, VerificationRequired: false, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	{Slug: "meat-free-day", Title: "Meat-free day", Category: "food", PointsValue: 40, CO2Impact: 3.0, VerificationRequired: false, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	{Slug: "reusable-cup", Title: "Use a reusable cup", Category: "waste", PointsValue: 10, CO2Impact: 0.1, VerificationRequired: false, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	{Slug: "home-office-energy", Title: "Work a zero-standby day", Category: "energy", PointsValue: 20, CO2Impact: 0.5, VerificationRequired: false, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	{Slug: "volunteer-cleanup", Title: "Join a community cleanup", Category: "community", PointsValue: 200, CO2Impact: 5.0, VerificationRequired: true, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	{Slug: "install-solar", Title: "Install solar panels", Category: "energy", PointsValue: 1000, CO2Impact: 500.0, VerificationRequired: true, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
}

var seedRewards = []*models.LevelReward{
	{Level: 1, RewardTitle: "Seedling sticker pack", RewardType: "swag", CreatedAt: time.Now()},
	{Level: 2, RewardTitle: "Reusable coffee cup", RewardType: "swag", CreatedAt: time.Now()},
	{Level: 3, RewardTitle: "Organic cotton t-shirt", RewardType: "swag", CreatedAt: time.Now()},
	{Level: 5, RewardTitle: "Tree planted in your name", RewardType: "donation", CreatedAt: time.Now()},
	{Level: 7, RewardTitle: "Half-day volunteering leave", RewardType: "leave", CreatedAt: time.Now()},
	{Level: 10, RewardTitle: "E-bike lease subsidy", RewardType: "benefit", CreatedAt: time.Now()},
}
