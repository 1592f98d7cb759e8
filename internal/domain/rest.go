package domain

import (
	"encoding/json"
	"time"
)

type RestType string

const (
	RestRegularDaily  RestType = "regular_daily"
	RestReducedDaily  RestType = "reduced_daily"
	RestWeeklyRegular RestType = "weekly_regular"
	RestWeeklyReduced RestType = "weekly_reduced"
	RestLongPause     RestType = "long_pause"
)

func (t RestType) IsWeekly() bool {
	return t == RestWeeklyRegular || t == RestWeeklyReduced
}

// RestEvent 描述某个班次之前的休息，每次计算时重新生成，不会持久化
type RestEvent struct {
	Type                 RestType   `json:"type"`
	DurationHours        int        `json:"durationHours"`
	DurationMinutes      int        `json:"durationMinutes"`
	DebtHours            float64    `json:"debtHours"`
	CompensationDeadline *time.Time `json:"compensationDeadline"`
	IsCompensated        bool       `json:"isCompensated"`
}

// OptionalRest 显式区分 "有休息记录" 和 "没有休息记录" 两种情况，调用方必须通过 Get 取值
type OptionalRest struct {
	event   RestEvent
	present bool
}

func SomeRest(event RestEvent) OptionalRest {
	return OptionalRest{event: event, present: true}
}

func NoRest() OptionalRest {
	return OptionalRest{}
}

func (o OptionalRest) Get() (RestEvent, bool) {
	return o.event, o.present
}

func (o OptionalRest) Present() bool {
	return o.present
}

// 没有休息记录时序列化为 null
func (o OptionalRest) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.event)
}

func (o *OptionalRest) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = NoRest()
		return nil
	}
	var event RestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	*o = SomeRest(event)
	return nil
}

type EnrichedShift struct {
	Shift
	Rest OptionalRest `json:"rest"`
}

type ShiftSummary struct {
	Shifts    []EnrichedShift `json:"shifts"`
	TotalDebt float64         `json:"totalDebt"`
}
