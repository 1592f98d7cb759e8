package compliance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const (
	maxDrivingWithoutBreak = 270 // 4.5 小时，单位为分钟
	fullBreakMinutes       = 45
	firstSplitBreakMinutes = 15
	secondSplitBreakMinute = 30

	maxWorkCycle = 6 * 24 * time.Hour

	breakViolationMessage = "驾驶超过 4.5 小时但没有足够的休息（需要一次至少 45 分钟，或至少 15 分钟加至少 30 分钟的两次休息）"
	cycleViolationMessage = "连续工作超过 6 天（144 小时）而没有进行至少 24 小时的休息"
)

// Validate 检查每个班次的驾驶间休息以及 6 天工作周期，返回 班次 ID -> 违规说明
// 违规只作提示，不阻止任何操作
func (e *Engine) Validate(shifts []domain.Shift) map[uuid.UUID]string {
	spans := e.timeline(shifts)
	gaps := restGaps(spans)

	violations := make(map[uuid.UUID]string)

	var cycleStart time.Time
	cycleStarted := false

	for i, sp := range spans {
		if !sp.valid {
			continue
		}

		// 出现至少 24 小时的休息时，重新开始计算工作周期
		if !cycleStarted || (gaps[i].ok && gaps[i].length >= minWeeklyRest) {
			cycleStart = sp.start
			cycleStarted = true
		}

		var messages []string
		if !hasRequiredBreak(sp.shift) {
			messages = append(messages, breakViolationMessage)
		}
		if sp.end.Sub(cycleStart) > maxWorkCycle {
			messages = append(messages, cycleViolationMessage)
		}

		if len(messages) > 0 {
			violations[sp.shift.ID] = strings.Join(messages, ". ")
		}
	}

	return violations
}

// hasRequiredBreak 不检查两次休息的先后顺序，15 分钟和 30 分钟的休息可以任意顺序出现
func hasRequiredBreak(s *domain.Shift) bool {
	if s.TotalDriveMinutes() <= maxDrivingWithoutBreak {
		return true
	}

	for _, b := range s.Breaks {
		if b.DurationMinutes >= fullBreakMinutes {
			return true
		}
	}

	for i, long := range s.Breaks {
		if long.DurationMinutes < secondSplitBreakMinute {
			continue
		}
		for j, short := range s.Breaks {
			if i != j && short.DurationMinutes >= firstSplitBreakMinutes {
				return true
			}
		}
	}

	return false
}
