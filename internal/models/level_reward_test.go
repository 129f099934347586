package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionClaim(t *testing.T) {
	statuses := []string{CLAIM_PENDING, CLAIM_APPROVED, CLAIM_REJECTED, CLAIM_DELIVERED}

	allowed := map[[2]string]bool{
		{CLAIM_PENDING, CLAIM_APPROVED}:   true,
		{CLAIM_PENDING, CLAIM_REJECTED}:   true,
		{CLAIM_APPROVED, CLAIM_DELIVERED}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			require.Equal(t, allowed[[2]string{from, to}], CanTransitionClaim(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionClaimUnknownStatus(t *testing.T) {
	require.False(t, CanTransitionClaim(CLAIM_PENDING, "shipped"))
	require.False(t, CanTransitionClaim("", CLAIM_APPROVED))
}
