package models

// VisitStats is the security dashboard summary for the current day.
type VisitStats struct {
	VisitorsToday           int     `json:"visitorsToday"`
	AvgVisitDurationMinutes float64 `json:"avgVisitDurationMinutes"`
}
