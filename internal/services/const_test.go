package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyHelpers(t *testing.T) {
	require.Equal(t, "user:42", DBKeyUser(42))
	require.Equal(t, "user:by_email:a@example.com", DBKeyUserByEmail("A@Example.COM"))
	require.Equal(t, "config:leaderboard_limit", DBKeyConfig("LEADERBOARD_LIMIT"))
	require.Equal(t, "action:bike-to-work", DBKeyAction("Bike-To-Work"))
	require.Equal(t, "lock:action-log:7:3", LockKeyUserActionLog(7, 3))
	require.Equal(t, "lock:claim-reward:7:9", LockKeyUserClaimReward(7, 9))
	require.Equal(t, "limit:action-log:7", LimitKeyUserActionLog(7))
	require.Equal(t, "user:action_logs:7:0:20", DBKeyUserActionLogs(7, 0, 20))
}

func TestKeyHelpersDistinct(t *testing.T) {
	// lock keys for distinct pairs must never collide
	require.NotEqual(t, LockKeyUserActionLog(1, 23), LockKeyUserActionLog(12, 3))
}
