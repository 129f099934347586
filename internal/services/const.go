package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrActionInactive    = errors.New("action is not active")
	ErrDuplicateAction   = errors.New("action already logged within the last 24 hours")
	ErrAlreadyProcessed  = errors.New("log already approved or rejected")
	ErrAlreadyClaimed    = errors.New("reward already claimed")
	ErrLevelNotReached   = errors.New("level requirement not reached")
	ErrInvalidClaimState = errors.New("claim state does not allow this transition")
	ErrLedgerDrift       = errors.New("ledger sum diverges from cached total")
	ErrAdminRequired     = errors.New("admin capability required")
	ErrUserInactive      = errors.New("user is deactivated")
	ErrActionLogLock     = errors.New("action log locked")
	ErrClaimLock         = errors.New("reward claim locked")
)

const (
	CONFIG_LEADERBOARD_LIMIT          = "LEADERBOARD_LIMIT"
	CONFIG_ACTION_LOG_RATE_PER_MINUTE = "ACTION_LOG_RATE_PER_MINUTE"
	CONFIG_ADMIN_CHAT_ID              = "ADMIN_CHAT_ID"
	CONFIG_CRONJOB_TIME_AUDIT         = "CRONJOB_TIME_AUDIT"
	CONFIG_CRONJOB_TIME_LEADERBOARD   = "CRONJOB_TIME_LEADERBOARD"
	CONFIG_NOTIFY_WEBHOOK_URL         = "NOTIFY_WEBHOOK_URL"

	LEADERBOARD_OVERALL = "overall"
	LEADERBOARD_WEEKLY  = "overall_weekly"

	LEADERBOARD_DEFAULT_LIMIT          = 20
	ACTION_LOG_DEFAULT_RATE_PER_MINUTE = 20

	CACHE_TTL_1_MIN   = 1 * time.Minute
	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute

	NOTIFY_DEDUP_TTL = 1 * time.Hour
)

func LockKeyUserActionLog(userID, actionID int64) string {
	return fmt.Sprintf("lock:action-log:%d:%d", userID, actionID)
}

func LockKeyUserClaimReward(userID, levelRewardID int64) string {
	return fmt.Sprintf("lock:claim-reward:%d:%d", userID, levelRewardID)
}

// db
func DBKeyUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func DBKeyMe(userID int64) string {
	return fmt.Sprintf("me:%d", userID)
}

func DBKeyUserByEmail(email string) string {
	return fmt.Sprintf("user:by_email:%s", strings.ToLower(email))
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyActiveActions() string {
	return "actions:active"
}

func DBKeyAction(slug string) string {
	return fmt.Sprintf("action:%s", strings.ToLower(slug))
}

func DBKeyLevelRewards() string {
	return "level_rewards:all"
}

func DBKeyUserClaims(userID int64) string {
	return fmt.Sprintf("user:claims:%d", userID)
}

func DBKeyUserActionLogs(userID int64, page, limit int) string {
	return fmt.Sprintf("user:action_logs:%d:%d:%d", userID, page, limit)
}

func DBKeyLeaderboardByUser(name string, userID int64, limit int) string {
	return fmt.Sprintf("leaderboard_by_user:%s:%d:%d", strings.ToLower(name), userID, limit)
}

func LimitKeyUserActionLog(userID int64) string {
	return fmt.Sprintf("limit:action-log:%d", userID)
}
