package redis_store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"greenloop/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", strings.ToLower(name))
}

func dbKeyLedgerAudit(userID int64) string {
	return fmt.Sprintf("ledger_audit:%d", userID)
}

func dbKeyNotificationSent(dedupKey string) string {
	return fmt.Sprintf("notification_sent:%s", dedupKey)
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: v.UserId,
	}).Err()

	if err != nil {
		return nil, err
	}

	return v, nil
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	err := cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
	if err != nil {
		return err
	}

	return nil
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			UserId: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

func GetRankWithScore(ctx context.Context, cmd redis.Cmdable, name string, userID int64) (redis.RankScore, error) {
	return cmd.ZRevRankWithScore(ctx, dbKeyLeaderboard(name), strconv.FormatInt(userID, 10)).Result()
}

func GetLeaderboardParticipantsCount(ctx context.Context, cmd redis.Cmdable, name string) (int64, error) {
	count, err := cmd.ZCard(ctx, dbKeyLeaderboard(name)).Result()
	if err != nil {
		return 0, err
	}

	return count, nil
}

// LedgerAuditMark records the outcome of the last consistency audit of a
// user so drifts surface in monitoring without another full ledger scan.
type LedgerAuditMark struct {
	UserID       int64     `msgpack:"user_id"`
	CachedPoints int       `msgpack:"cached_points"`
	LedgerPoints int       `msgpack:"ledger_points"`
	Drifted      bool      `msgpack:"drifted"`
	AuditedAt    time.Time `msgpack:"audited_at"`
}

func SetLedgerAuditMark(ctx context.Context, cmd redis.Cmdable, mark *LedgerAuditMark) error {
	b, err := msgpack.Marshal(mark)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyLedgerAudit(mark.UserID), b, 0).Err()
}

func GetLedgerAuditMark(ctx context.Context, cmd redis.Cmdable, userID int64) (*LedgerAuditMark, error) {
	b, err := cmd.Get(ctx, dbKeyLedgerAudit(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	var v LedgerAuditMark
	err = msgpack.Unmarshal(b, &v)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// MarkNotificationSent sets a short-lived dedup marker; returns false when
// the marker already existed and the send should be skipped.
func MarkNotificationSent(ctx context.Context, cmd redis.Cmdable, dedupKey string, ttl time.Duration) (bool, error) {
	return cmd.SetNX(ctx, dbKeyNotificationSent(dedupKey), time.Now().Format(time.RFC3339), ttl).Result()
}
