package domain

import (
	"time"

	"github.com/google/uuid"
)

type Break struct {
	DurationMinutes int32 `json:"durationMinutes"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Shift 是司机录入的一条班次记录
// Date 为 "2006-01-02"，StartTime 与 EndTime 为 "15:04"，EndTime 不晚于 StartTime 时表示班次跨过了午夜
type Shift struct {
	ID            uuid.UUID `json:"id"`
	DriverID      int64     `json:"driverID"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	DriveHours    int32     `json:"driveHours"`
	DriveMinutes  int32     `json:"driveMinutes"`
	WorkHours     int32     `json:"workHours"`
	WorkMinutes   int32     `json:"workMinutes"`
	Breaks        []Break   `json:"breaks"`
	IsCompensated bool      `json:"isCompensated"`
	StartLocation *GeoPoint `json:"startLocation"`
	EndLocation   *GeoPoint `json:"endLocation"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}

func (s *Shift) TotalDriveMinutes() int {
	return int(s.DriveHours)*60 + int(s.DriveMinutes)
}

func (s *Shift) TotalWorkMinutes() int {
	return int(s.WorkHours)*60 + int(s.WorkMinutes)
}
