package compliance

import (
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const (
	extendedDrivingMinutes = 9 * 60
	extendedDutyMinutes    = 13 * 60

	weeklyDrivingLimit   = 56 * 60
	biWeeklyDrivingLimit = 90 * 60
	extendedDaysPerWeek  = 2
)

var ErrInvalidWindow = errors.New("compliance: 统计窗口的结束时间无效")

// Aggregate 以 now 为终点计算本周、近两周以及当天的统计
// 班次按其 Date 字段归属窗口，跨午夜的班次全部算在开始那天
func (e *Engine) Aggregate(shifts []domain.Shift, now time.Time) (domain.Stats, error) {
	if now.IsZero() {
		return domain.Stats{}, ErrInvalidWindow
	}

	now = now.In(e.loc)
	weekStart := e.startOfWeek(now)
	biWeekStart := weekStart.AddDate(0, 0, -7)
	today := e.startOfDay(now)

	stats := domain.Stats{}

	for i := range shifts {
		s := &shifts[i]

		date, err := time.ParseInLocation(dateLayout, s.Date, e.loc)
		if err != nil || date.After(now) {
			continue
		}

		drive := s.TotalDriveMinutes()
		duty, hasDuty := e.dutyMinutes(s)

		if !date.Before(biWeekStart) {
			stats.BiWeekMins += drive
		}

		if !date.Before(weekStart) {
			stats.WeekMins += drive
			stats.WorkWeekMins += s.TotalWorkMinutes()
			if drive > extendedDrivingMinutes {
				stats.ExtDrivingCount++
			}
			if hasDuty && duty > extendedDutyMinutes {
				stats.ExtDutyCount++
			}
		}

		if date.Equal(today) && hasDuty {
			stats.DailyDutyMins += duty
		}
	}

	stats.RemainingBiWeekMins = max(biWeeklyDrivingLimit-stats.BiWeekMins, 0)
	stats.RemainingWeekMins = max(min(weeklyDrivingLimit-stats.WeekMins, stats.RemainingBiWeekMins), 0)
	stats.RemainingExtDrivingDays = max(extendedDaysPerWeek-stats.ExtDrivingCount, 0)

	return stats, nil
}

// dutyMinutes 返回班次从开始到结束的总时长
func (e *Engine) dutyMinutes(s *domain.Shift) (int, bool) {
	sp := e.parse(s)
	if !sp.valid {
		return 0, false
	}
	return int(sp.end.Sub(sp.start) / time.Minute), true
}
