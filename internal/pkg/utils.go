package pkg

import "time"

func GetFirstTimeOfCurrentWeek() time.Time {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return today.Truncate(time.Hour * 168)
}
