package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

func statsShift(date, start, end string, drive, work int32) domain.Shift {
	s := newShift(date, start, end)
	s.DriveHours = drive / 60
	s.DriveMinutes = drive % 60
	s.WorkHours = work / 60
	s.WorkMinutes = work % 60
	return s
}

func TestAggregate(t *testing.T) {
	e := newTestEngine()

	// 2024-01-17 是周三
	now := time.Date(2024, 1, 17, 20, 0, 0, 0, testLoc)

	shifts := []domain.Shift{
		statsShift("2024-01-01", "06:00", "10:00", 200, 0),  // 两周之外
		statsShift("2024-01-08", "06:00", "12:00", 300, 0),  // 上周一
		statsShift("2024-01-14", "06:00", "17:00", 600, 30), // 上周日
		statsShift("2024-01-15", "06:00", "20:00", 600, 60), // 本周一，值班 14 小时
		statsShift("2024-01-17", "08:00", "12:00", 120, 30), // 今天
		statsShift("2024-01-18", "08:00", "12:00", 120, 30), // 未来
	}

	stats, err := e.Aggregate(shifts, now)
	require.NoError(t, err)

	assert.Equal(t, 720, stats.WeekMins)
	assert.Equal(t, 90, stats.WorkWeekMins)
	assert.Equal(t, 1620, stats.BiWeekMins)
	assert.Equal(t, 240, stats.DailyDutyMins)
	assert.Equal(t, 1, stats.ExtDrivingCount)
	assert.Equal(t, 1, stats.ExtDutyCount)

	assert.Equal(t, 3780, stats.RemainingBiWeekMins)
	assert.Equal(t, 2640, stats.RemainingWeekMins)
	assert.Equal(t, 1, stats.RemainingExtDrivingDays)
}

func TestAggregateOvernightShiftBelongsToItsDate(t *testing.T) {
	e := newTestEngine()

	now := time.Date(2024, 1, 16, 10, 0, 0, 0, testLoc)

	shifts := []domain.Shift{
		statsShift("2024-01-14", "22:00", "06:00", 400, 0), // 上周日开始，本周一结束
		statsShift("2024-01-16", "06:00", "09:00", 120, 0),
	}

	stats, err := e.Aggregate(shifts, now)
	require.NoError(t, err)

	assert.Equal(t, 120, stats.WeekMins)
	assert.Equal(t, 520, stats.BiWeekMins)
	assert.Equal(t, 180, stats.DailyDutyMins)
}

func TestAggregateDailyDutyAcrossMidnight(t *testing.T) {
	e := newTestEngine()

	now := time.Date(2024, 1, 17, 23, 30, 0, 0, testLoc)

	stats, err := e.Aggregate([]domain.Shift{
		statsShift("2024-01-17", "18:00", "04:00", 420, 60),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 600, stats.DailyDutyMins)
}

func TestAggregateIgnoresMalformedDate(t *testing.T) {
	e := newTestEngine()

	now := time.Date(2024, 1, 17, 20, 0, 0, 0, testLoc)

	stats, err := e.Aggregate([]domain.Shift{
		statsShift("17/01/2024", "08:00", "12:00", 120, 0),
		statsShift("2024-01-17", "8h", "12:00", 60, 0),
	}, now)
	require.NoError(t, err)

	// 时刻无法解析时仍按日期统计驾驶时间，但没有值班时长
	assert.Equal(t, 60, stats.WeekMins)
	assert.Zero(t, stats.DailyDutyMins)
}

func TestAggregateExtendedCounts(t *testing.T) {
	e := newTestEngine()

	now := time.Date(2024, 1, 21, 23, 0, 0, 0, testLoc)

	stats, err := e.Aggregate([]domain.Shift{
		statsShift("2024-01-15", "06:00", "19:00", 541, 0), // 13h 值班不算延长
		statsShift("2024-01-16", "06:00", "19:01", 600, 0),
		statsShift("2024-01-17", "06:00", "16:00", 540, 0),
		statsShift("2024-01-18", "06:00", "17:00", 590, 0),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.ExtDrivingCount)
	assert.Equal(t, 1, stats.ExtDutyCount)
	assert.Zero(t, stats.RemainingExtDrivingDays)
}

func TestAggregateRejectsZeroNow(t *testing.T) {
	e := newTestEngine()

	_, err := e.Aggregate(nil, time.Time{})
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestAggregateUsesEngineLocation(t *testing.T) {
	e := newTestEngine()

	// UTC 23:30 在 CET 已经是第二天 00:30
	now := time.Date(2024, 1, 16, 23, 30, 0, 0, time.UTC)

	stats, err := e.Aggregate([]domain.Shift{
		statsShift("2024-01-17", "00:00", "00:20", 20, 0),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 20, stats.DailyDutyMins)
}
