package compliance

import (
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const (
	minDailyRest     = 9 * time.Hour
	regularDailyRest = 11 * time.Hour
	minWeeklyRest    = 24 * time.Hour
	regularWeekly    = 45 * time.Hour

	compensationDays = 21
)

// restRule 是休息分类表中的一行
type restRule struct {
	restType domain.RestType // 为空表示不构成休息
	applies  func(gap time.Duration, weeklyRest bool) bool
	debt     func(gap time.Duration) float64
}

func noDebt(time.Duration) float64 {
	return 0
}

func shortfall(target time.Duration) func(time.Duration) float64 {
	return func(gap time.Duration) float64 {
		return (target - gap).Hours()
	}
}

// restRules 从上到下匹配，第一条命中的规则生效
// weeklyRest 表示该间隔是否为所在周内最长的 ≥24h 间隔
var restRules = []restRule{
	{
		restType: "",
		applies:  func(gap time.Duration, _ bool) bool { return gap < minDailyRest },
		debt:     noDebt,
	},
	{
		restType: domain.RestReducedDaily,
		applies:  func(gap time.Duration, _ bool) bool { return gap < regularDailyRest },
		debt:     shortfall(regularDailyRest),
	},
	{
		restType: domain.RestRegularDaily,
		applies:  func(gap time.Duration, _ bool) bool { return gap < minWeeklyRest },
		debt:     noDebt,
	},
	{
		restType: domain.RestLongPause,
		applies:  func(_ time.Duration, weeklyRest bool) bool { return !weeklyRest },
		debt:     noDebt,
	},
	{
		restType: domain.RestWeeklyReduced,
		applies:  func(gap time.Duration, _ bool) bool { return gap < regularWeekly },
		debt:     shortfall(regularWeekly),
	},
	{
		restType: domain.RestWeeklyRegular,
		applies:  func(time.Duration, bool) bool { return true },
		debt:     noDebt,
	},
}

func matchRestRule(gap time.Duration, weeklyRest bool) (restRule, bool) {
	for _, rule := range restRules {
		if rule.applies(gap, weeklyRest) {
			return rule, rule.restType != ""
		}
	}
	return restRule{}, false
}

type weekKey struct {
	year int
	week int
}

func weekOf(t time.Time) weekKey {
	year, week := t.ISOWeek()
	return weekKey{year: year, week: week}
}

// weeklyRests 记录每个 ISO 周中被认定为周休的间隔所在的下标，构建后只读
type weeklyRests map[weekKey]int

// findWeeklyRests 找出每周最长的 ≥24h 间隔，长度相同时保留先出现的
func findWeeklyRests(spans []span, gaps []restGap) weeklyRests {
	rests := make(weeklyRests)
	for i, gap := range gaps {
		if !gap.ok || gap.length < minWeeklyRest {
			continue
		}
		key := weekOf(spans[i].start)
		if best, exists := rests[key]; exists && gaps[best].length >= gap.length {
			continue
		}
		rests[key] = i
	}
	return rests
}

func (w weeklyRests) contains(key weekKey, index int) bool {
	best, exists := w[key]
	return exists && best == index
}

type ClassifiedShift struct {
	Shift domain.Shift
	Rest  domain.OptionalRest
}

// Classify 按时间顺序返回每个班次及其之前的休息
func (e *Engine) Classify(shifts []domain.Shift) []ClassifiedShift {
	spans := e.timeline(shifts)
	gaps := restGaps(spans)
	weekly := findWeeklyRests(spans, gaps)

	result := make([]ClassifiedShift, len(spans))
	for i, sp := range spans {
		result[i] = ClassifiedShift{Shift: *sp.shift, Rest: domain.NoRest()}

		gap := gaps[i]
		if !gap.ok {
			continue
		}

		key := weekOf(sp.start)
		rule, ok := matchRestRule(gap.length, weekly.contains(key, i))
		if !ok {
			continue
		}

		event := domain.RestEvent{
			Type:            rule.restType,
			DurationHours:   int(gap.length / time.Hour),
			DurationMinutes: int(gap.length % time.Hour / time.Minute),
			DebtHours:       rule.debt(gap.length),
			IsCompensated:   sp.shift.IsCompensated,
		}
		if rule.restType == domain.RestWeeklyReduced {
			deadline := e.compensationDeadline(sp.start)
			event.CompensationDeadline = &deadline
		}

		result[i].Rest = domain.SomeRest(event)
	}

	return result
}

// RestBefore 返回指定班次之前的休息，班次不存在时返回空
func (e *Engine) RestBefore(shifts []domain.Shift, id uuid.UUID) domain.OptionalRest {
	for _, cs := range e.Classify(shifts) {
		if cs.Shift.ID == id {
			return cs.Rest
		}
	}
	return domain.NoRest()
}

// compensationDeadline 为休息所在周的周日 23:59:59.999 再加 21 天
func (e *Engine) compensationDeadline(restEnd time.Time) time.Time {
	monday := e.startOfWeek(restEnd)
	return monday.AddDate(0, 0, 7+compensationDays).Add(-time.Millisecond)
}
