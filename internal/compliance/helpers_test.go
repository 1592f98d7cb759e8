package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

// 固定偏移的时区，避免夏令时影响测试
var testLoc = time.FixedZone("CET", 60*60)

func newTestEngine() *Engine {
	return New(testLoc)
}

func newShift(date, start, end string) domain.Shift {
	return domain.Shift{
		ID:           uuid.New(),
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		DriveHours:   4,
		DriveMinutes: 0,
		Breaks:       []domain.Break{},
	}
}

func restOf(t *testing.T, cs ClassifiedShift) domain.RestEvent {
	t.Helper()
	event, ok := cs.Rest.Get()
	require.True(t, ok, "班次 %s %s 应当有休息记录", cs.Shift.Date, cs.Shift.StartTime)
	return event
}
