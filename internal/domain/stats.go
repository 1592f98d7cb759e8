package domain

import "github.com/google/uuid"

type Stats struct {
	WeekMins        int `json:"weekMins"`
	WorkWeekMins    int `json:"workWeekMins"`
	BiWeekMins      int `json:"biWeekMins"`
	DailyDutyMins   int `json:"dailyDutyMins"`
	ExtDrivingCount int `json:"extDrivingCount"`
	ExtDutyCount    int `json:"extDutyCount"`

	RemainingWeekMins       int `json:"remainingWeekMins"`
	RemainingBiWeekMins     int `json:"remainingBiWeekMins"`
	RemainingExtDrivingDays int `json:"remainingExtDrivingDays"`
}

// ComplianceReport 是返回给前端的完整合规报告
type ComplianceReport struct {
	Summary    ShiftSummary         `json:"summary"`
	Violations map[uuid.UUID]string `json:"violations"`
	Stats      Stats                `json:"stats"`
}
