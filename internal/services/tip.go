package services

import (
	"github.com/mroth/weightedrand/v2"

	"greenloop/internal/models"
)

var DefaultEcoTips = []models.EcoTip{
	{Text: "Bring a reusable cup; the office espresso machine works with any of them.", Category: "waste", Weight: 3},
	{Text: "A full dishwasher beats hand-washing the same load by roughly 3x on water.", Category: "water", Weight: 2},
	{Text: "Set your monitor to sleep after 5 minutes. It adds up across a floor.", Category: "energy", Weight: 3},
	{Text: "Cycling to work once a week saves around 50kg of CO2 a year on a 10km commute.", Category: "transport", Weight: 5},
	{Text: "Take the stairs for trips of three floors or fewer.", Category: "energy", Weight: 2},
	{Text: "Default your printer to double-sided. Most printouts never needed single-sided.", Category: "waste", Weight: 1},
}

// ServiceTip serves a weighted-random eco tip for the dashboard. Heavier
// weights surface seasonal campaigns more often.
type ServiceTip struct {
	chooser *weightedrand.Chooser[models.EcoTip, int]
}

func NewServiceTip(tips []models.EcoTip) (*ServiceTip, error) {
	choices := make([]weightedrand.Choice[models.EcoTip, int], 0, len(tips))
	for _, tip := range tips {
		choices = append(choices, weightedrand.NewChoice(tip, tip.Weight))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	return &ServiceTip{chooser}, nil
}

func (service *ServiceTip) Pick() models.EcoTip {
	return service.chooser.Pick()
}
