// Package compliance 根据司机的班次历史计算欧盟 561/2006 号条例下的休息分类、休息欠账、
// 休息与连续工作周期违规以及滚动统计。
//
// 所有计算都是纯函数：不做 I/O，不保存状态，相同输入总是得到相同输出。
package compliance

import (
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

type Engine struct {
	loc *time.Location // 班次中的日期和时刻都按这个时区解释
}

func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// span 是解析后的班次时间区间
type span struct {
	shift *domain.Shift
	key   time.Time // 排序键
	start time.Time
	end   time.Time
	valid bool // 日期或时刻无法解析时为 false，此时 start 和 end 没有意义
}

func (e *Engine) parse(s *domain.Shift) span {
	sp := span{shift: s}

	date, err := time.ParseInLocation(dateLayout, s.Date, e.loc)
	if err != nil {
		return sp
	}
	// 时刻无法解析时，仍然按日期参与排序
	sp.key = date

	startClock, err := time.Parse(clockLayout, s.StartTime)
	if err != nil {
		return sp
	}
	endClock, err := time.Parse(clockLayout, s.EndTime)
	if err != nil {
		return sp
	}

	sp.start = time.Date(date.Year(), date.Month(), date.Day(), startClock.Hour(), startClock.Minute(), 0, 0, e.loc)
	sp.end = time.Date(date.Year(), date.Month(), date.Day(), endClock.Hour(), endClock.Minute(), 0, 0, e.loc)
	// 结束时刻不晚于开始时刻，说明班次跨过了午夜
	if !sp.end.After(sp.start) {
		sp.end = sp.end.Add(24 * time.Hour)
	}
	sp.key = sp.start
	sp.valid = true

	return sp
}

// timeline 按开始时间对班次做稳定排序，时间相同的班次保持输入顺序
func (e *Engine) timeline(shifts []domain.Shift) []span {
	spans := make([]span, len(shifts))
	for i := range shifts {
		spans[i] = e.parse(&shifts[i])
	}

	slices.SortStableFunc(spans, func(a, b span) int {
		return a.key.Compare(b.key)
	})

	return spans
}

type restGap struct {
	length time.Duration
	ok     bool
}

// restGaps 计算每个班次与前一个有效班次之间的间隔
// 无效班次既不会得到间隔，也不会作为后一个班次的前驱
func restGaps(spans []span) []restGap {
	gaps := make([]restGap, len(spans))
	prev := -1

	for i, sp := range spans {
		if !sp.valid {
			continue
		}
		if prev >= 0 {
			// 录入错误可能导致间隔为负，统一截断为 0
			gaps[i] = restGap{
				length: max(sp.start.Sub(spans[prev].end), 0),
				ok:     true,
			}
		}
		prev = i
	}

	return gaps
}

func (e *Engine) startOfDay(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

// startOfWeek 返回 t 所在 ISO 周的周一 00:00
func (e *Engine) startOfWeek(t time.Time) time.Time {
	t = t.In(e.loc)
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, e.loc)
}
