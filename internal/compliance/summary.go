package compliance

import (
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

// Summarize 把休息记录附加到班次上，按时间倒序返回，并汇总尚未补偿的周休欠账
func (e *Engine) Summarize(shifts []domain.Shift) domain.ShiftSummary {
	classified := e.Classify(shifts)

	summary := domain.ShiftSummary{
		Shifts: make([]domain.EnrichedShift, 0, len(classified)),
	}

	for i := len(classified) - 1; i >= 0; i-- {
		cs := classified[i]
		summary.Shifts = append(summary.Shifts, domain.EnrichedShift{
			Shift: cs.Shift,
			Rest:  cs.Rest,
		})

		event, ok := cs.Rest.Get()
		if ok && event.Type == domain.RestWeeklyReduced && !event.IsCompensated {
			summary.TotalDebt += event.DebtHours
		}
	}

	return summary
}
