package redis_store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"greenloop/internal/models"
)

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLeaderboardRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	for id, score := range map[int64]float64{1: 150, 2: 300, 3: 80} {
		_, err := SetLeaderboard(ctx, client, "overall", &models.LeaderboardItem{UserId: id, Score: score})
		require.NoError(t, err)
	}

	items, err := GetLeaderboard(ctx, client, "overall", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(2), items[0].UserId)
	require.Equal(t, 300.0, items[0].Score)
	require.Equal(t, 1, items[0].Rank)
	require.Equal(t, int64(1), items[1].UserId)
	require.Equal(t, 2, items[1].Rank)

	count, err := GetLeaderboardParticipantsCount(ctx, client, "overall")
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	// re-adding a member updates the score in place
	_, err = SetLeaderboard(ctx, client, "overall", &models.LeaderboardItem{UserId: 3, Score: 500})
	require.NoError(t, err)
	count, err = GetLeaderboardParticipantsCount(ctx, client, "overall")
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	require.NoError(t, ClearLeaderboard(ctx, client, "overall"))
	count, err = GetLeaderboardParticipantsCount(ctx, client, "overall")
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestLedgerAuditMarkRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	_, err := GetLedgerAuditMark(ctx, client, 7)
	require.ErrorIs(t, err, redis.Nil)

	auditedAt := time.Now().Truncate(time.Second)
	require.NoError(t, SetLedgerAuditMark(ctx, client, &LedgerAuditMark{
		UserID:       7,
		CachedPoints: 150,
		LedgerPoints: 130,
		Drifted:      true,
		AuditedAt:    auditedAt,
	}))

	mark, err := GetLedgerAuditMark(ctx, client, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), mark.UserID)
	require.Equal(t, 150, mark.CachedPoints)
	require.Equal(t, 130, mark.LedgerPoints)
	require.True(t, mark.Drifted)
	require.True(t, mark.AuditedAt.Equal(auditedAt))
}

func TestMarkNotificationSent(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	fresh, err := MarkNotificationSent(ctx, client, "reward-claimed:9", time.Minute)
	require.NoError(t, err)
	require.True(t, fresh)

	fresh, err = MarkNotificationSent(ctx, client, "reward-claimed:9", time.Minute)
	require.NoError(t, err)
	require.False(t, fresh)
}
