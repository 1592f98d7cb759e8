package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

func weeklyReducedHistory() []domain.Shift {
	return []domain.Shift{
		newShift("2024-01-15", "08:00", "18:00"),
		newShift("2024-01-17", "00:00", "02:00"), // 30h，欠 15h
		newShift("2024-01-17", "12:00", "20:00"), // 10h，缩短的日休
		newShift("2024-01-23", "02:00", "10:00"), // 第 4 周，126h，正常周休
		newShift("2024-01-30", "08:00", "18:00"), // 第 5 周，166h，正常周休
		newShift("2024-02-01", "00:00", "06:00"), // 第 5 周，30h，非最长 -> long_pause
		newShift("2024-02-06", "10:00", "18:00"), // 第 6 周，124h
	}
}

func TestSummarizeReversesChronologicalOrder(t *testing.T) {
	e := newTestEngine()
	shifts := weeklyReducedHistory()

	summary := e.Summarize(shifts)
	require.Len(t, summary.Shifts, len(shifts))

	classified := e.Classify(shifts)
	for i := range classified {
		assert.Equal(t, classified[i].Shift.ID, summary.Shifts[len(shifts)-1-i].ID)
		assert.Equal(t, classified[i].Rest, summary.Shifts[len(shifts)-1-i].Rest)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	e := newTestEngine()
	shifts := weeklyReducedHistory()

	assert.Equal(t, e.Summarize(shifts), e.Summarize(shifts))
}

func TestSummarizeTotalDebtCountsOnlyUncompensatedWeeklyReduced(t *testing.T) {
	e := newTestEngine()
	shifts := weeklyReducedHistory()

	summary := e.Summarize(shifts)
	// 缩短的日休虽然有欠账，但不计入总欠账
	assert.InDelta(t, 15, summary.TotalDebt, 1e-9)
}

func TestSummarizeCompensationRemovesExactlyThatDebt(t *testing.T) {
	e := newTestEngine()
	shifts := []domain.Shift{
		newShift("2024-01-15", "08:00", "18:00"),
		newShift("2024-01-17", "00:00", "02:00"), // 第 3 周，30h，欠 15h
		newShift("2024-01-17", "12:00", "20:00"), // 10h
		newShift("2024-01-18", "07:00", "17:00"), // 11h
		newShift("2024-01-19", "04:00", "14:00"), // 11h
		newShift("2024-01-20", "01:00", "11:00"), // 11h
		newShift("2024-01-21", "06:00", "16:00"), // 19h
		newShift("2024-01-22", "03:00", "13:00"), // 第 4 周，11h
		newShift("2024-01-24", "01:00", "05:00"), // 第 4 周，36h，欠 9h
	}

	all := e.Summarize(shifts)
	require.InDelta(t, 24, all.TotalDebt, 1e-9)

	shifts[1].IsCompensated = true
	partial := e.Summarize(shifts)
	assert.InDelta(t, 9, partial.TotalDebt, 1e-9)

	shifts[1].IsCompensated = false
	shifts[8].IsCompensated = true
	partial = e.Summarize(shifts)
	assert.InDelta(t, 15, partial.TotalDebt, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	e := newTestEngine()

	summary := e.Summarize(nil)
	assert.Empty(t, summary.Shifts)
	assert.Zero(t, summary.TotalDebt)
}
