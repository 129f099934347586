package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"greenloop/internal/models"
)

func TestRenderNotification(t *testing.T) {
	payload := &models.NotificationPayload{
		UserName:    "Jamie Doe",
		UserEmail:   "jamie@example.com",
		ActionTitle: "Bike to work",
		RewardTitle: "Reusable coffee cup",
		Level:       2,
		Reason:      "photo does not show a bike",
	}

	text := renderNotification(models.NOTIFY_ACTION_REJECTED, payload)
	require.Contains(t, text, "Jamie Doe")
	require.Contains(t, text, "Bike to work")
	require.Contains(t, text, "photo does not show a bike")

	text = renderNotification(models.NOTIFY_CLAIM_ALERT, payload)
	require.Contains(t, text, "Reusable coffee cup")
	require.Contains(t, text, "level 2")

	// the claimant's confirmation addresses the user, not the admin channel
	text = renderNotification(models.NOTIFY_REWARD_CLAIMED, payload)
	require.Contains(t, text, "Hi Jamie Doe")
	require.Contains(t, text, "Reusable coffee cup")
	require.Contains(t, text, "pending review")

	text = renderNotification(models.NOTIFY_REWARD_DELIVERED, payload)
	require.Contains(t, text, "Reusable coffee cup")
	require.False(t, strings.Contains(text, "photo does not show a bike"))

	// unknown kinds still produce something sendable
	text = renderNotification("something-else", payload)
	require.Contains(t, text, "something-else")
	require.Contains(t, text, "jamie@example.com")
}
