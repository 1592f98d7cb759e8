package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

func breaks(minutes ...int32) []domain.Break {
	result := make([]domain.Break, len(minutes))
	for i, m := range minutes {
		result[i] = domain.Break{DurationMinutes: m}
	}
	return result
}

func TestValidateBreakRule(t *testing.T) {
	tests := []struct {
		name      string
		drive     int32 // 分钟
		breaks    []domain.Break
		violation bool
	}{
		{name: "驾驶未超过 4.5 小时不需要休息", drive: 270, breaks: nil, violation: false},
		{name: "20+10 不满足", drive: 300, breaks: breaks(20, 10), violation: true},
		{name: "20+35 满足", drive: 300, breaks: breaks(20, 35), violation: false},
		{name: "35+20 顺序不限", drive: 300, breaks: breaks(35, 20), violation: false},
		{name: "单次 45 分钟满足", drive: 300, breaks: breaks(45), violation: false},
		{name: "单次 35 分钟不满足", drive: 300, breaks: breaks(35), violation: true},
		{name: "没有休息", drive: 300, breaks: nil, violation: true},
		{name: "两次 30 分钟满足", drive: 600, breaks: breaks(30, 30), violation: false},
		{name: "14+44 不满足", drive: 600, breaks: breaks(14, 44), violation: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()

			s := newShift("2024-01-15", "06:00", "18:00")
			s.DriveHours = tt.drive / 60
			s.DriveMinutes = tt.drive % 60
			s.Breaks = tt.breaks

			violations := e.Validate([]domain.Shift{s})
			msg, ok := violations[s.ID]
			require.Equal(t, tt.violation, ok)
			if ok {
				assert.Equal(t, breakViolationMessage, msg)
			}
		})
	}
}

func TestValidateSixDayCycle(t *testing.T) {
	e := newTestEngine()

	// 从周一开始连续 7 天 06:00-18:00，相邻班次之间只有 12 小时
	dates := []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-18", "2024-01-19", "2024-01-20", "2024-01-21"}
	shifts := make([]domain.Shift, len(dates))
	for i, date := range dates {
		shifts[i] = newShift(date, "06:00", "18:00")
	}

	violations := e.Validate(shifts)
	require.Len(t, violations, 1)

	// 第 7 个班次结束时距离周期开始已有 156 小时
	assert.Equal(t, cycleViolationMessage, violations[shifts[6].ID])
}

func TestValidateCycleResetsAfterLongRest(t *testing.T) {
	e := newTestEngine()

	dates := []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-19", "2024-01-20", "2024-01-21", "2024-01-22"}
	shifts := make([]domain.Shift, len(dates))
	for i, date := range dates {
		shifts[i] = newShift(date, "06:00", "18:00")
	}

	assert.Empty(t, e.Validate(shifts))
}

func TestValidateJoinsMessages(t *testing.T) {
	e := newTestEngine()

	dates := []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-18", "2024-01-19", "2024-01-20", "2024-01-21"}
	shifts := make([]domain.Shift, len(dates))
	for i, date := range dates {
		shifts[i] = newShift(date, "06:00", "18:00")
	}
	shifts[6].DriveHours = 5

	violations := e.Validate(shifts)
	assert.Equal(t, breakViolationMessage+". "+cycleViolationMessage, violations[shifts[6].ID])
}

func TestValidateSkipsMalformedShift(t *testing.T) {
	e := newTestEngine()

	s := newShift("2024-13-45", "06:00", "18:00")
	s.DriveHours = 6

	violations := e.Validate([]domain.Shift{s})
	assert.Empty(t, violations)
}

func TestValidateIsDeterministic(t *testing.T) {
	e := newTestEngine()

	s := newShift("2024-01-15", "06:00", "18:00")
	s.DriveHours = 6
	shifts := []domain.Shift{s}

	assert.Equal(t, e.Validate(shifts), e.Validate(shifts))
}
