package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"greenloop/internal/models"
)

func TestServiceTipPick(t *testing.T) {
	tips := []models.EcoTip{
		{Text: "a", Category: "waste", Weight: 1},
		{Text: "b", Category: "energy", Weight: 5},
	}

	service, err := NewServiceTip(tips)
	require.NoError(t, err)

	known := map[string]bool{"a": true, "b": true}
	for i := 0; i < 50; i++ {
		tip := service.Pick()
		require.True(t, known[tip.Text])
	}
}

func TestServiceTipRequiresChoices(t *testing.T) {
	_, err := NewServiceTip(nil)
	require.Error(t, err)
}

func TestDefaultEcoTipsValid(t *testing.T) {
	service, err := NewServiceTip(DefaultEcoTips)
	require.NoError(t, err)
	require.NotEmpty(t, service.Pick().Text)
}
