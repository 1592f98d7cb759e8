// Package clock 为需要 "当前时间" 的组件提供可替换的时钟，便于测试
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock 总是返回同一个时间，只在测试中使用
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

func NewReal() Clock {
	return RealClock{}
}

func NewFixed(t time.Time) Clock {
	return FixedClock{T: t}
}

var (
	_ Clock = RealClock{}
	_ Clock = FixedClock{}
)
