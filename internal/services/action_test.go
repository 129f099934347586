package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	require.Equal(t, "bike-to-work", Slugify("Bike to Work"))
	require.Equal(t, "meat-free-day", Slugify("  Meat-Free Day!  "))
	require.Equal(t, "100-recycling", Slugify("100% Recycling"))
	require.Equal(t, "", Slugify("!!!"))
}
