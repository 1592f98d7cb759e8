package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// shiftSpan 返回班次的时长，结束时间不晚于开始时间时视为跨天
func shiftSpan(start, end time.Time) time.Duration {
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start)
}

func ValidateShift(s *domain.Shift) error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return errors.New("日期格式错误，应为 YYYY-MM-DD")
	}

	startTime, err := time.Parse(ClockLayout, s.StartTime)
	if err != nil {
		return errors.New("开始时间格式错误，应为 HH:MM")
	}
	endTime, err := time.Parse(ClockLayout, s.EndTime)
	if err != nil {
		return errors.New("结束时间格式错误，应为 HH:MM")
	}

	if s.DriveHours < 0 || s.WorkHours < 0 {
		return errors.New("小时数不能为负数")
	}
	if s.DriveMinutes < 0 || s.DriveMinutes > 59 || s.WorkMinutes < 0 || s.WorkMinutes > 59 {
		return errors.New("分钟数必须在 0 到 59 之间")
	}

	// 驾驶时间和其他工作时间之和不能超过班次本身
	span := shiftSpan(startTime, endTime)
	if time.Duration(s.TotalDriveMinutes()+s.TotalWorkMinutes())*time.Minute > span {
		return errors.New("驾驶时间与其他工作时间之和超过了班次时长")
	}

	for i, b := range s.Breaks {
		if b.DurationMinutes < 1 {
			return fmt.Errorf("第 %d 次休息的时长至少为 1 分钟", i+1)
		}
	}

	if err := validateGeoPoint(s.StartLocation); err != nil {
		return fmt.Errorf("起点%s", err)
	}
	if err := validateGeoPoint(s.EndLocation); err != nil {
		return fmt.Errorf("终点%s", err)
	}

	return nil
}

func validateGeoPoint(p *domain.GeoPoint) error {
	if p == nil {
		return nil
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return errors.New("纬度必须在 -90 到 90 之间")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return errors.New("经度必须在 -180 到 180 之间")
	}
	return nil
}
