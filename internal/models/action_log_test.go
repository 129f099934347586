package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInDuplicateWindow(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	require.True(t, InDuplicateWindow(now, now))
	require.True(t, InDuplicateWindow(now.Add(-time.Minute), now))
	require.True(t, InDuplicateWindow(now.Add(-23*time.Hour-59*time.Minute), now))

	// the window is strict: exactly 24h ago is allowed again
	require.False(t, InDuplicateWindow(now.Add(-24*time.Hour), now))
	require.False(t, InDuplicateWindow(now.Add(-25*time.Hour), now))
	require.False(t, InDuplicateWindow(now.Add(-7*24*time.Hour), now))
}

func TestActionLogPending(t *testing.T) {
	log := &ActionLog{VerificationStatus: VERIFICATION_PENDING}
	require.True(t, log.Pending())

	log.VerificationStatus = VERIFICATION_APPROVED
	require.False(t, log.Pending())

	log.VerificationStatus = VERIFICATION_REJECTED
	require.False(t, log.Pending())
}
