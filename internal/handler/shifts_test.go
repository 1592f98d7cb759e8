package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const testDriverID int64 = 1

func storeWithDriver() *fakeStore {
	store := newFakeStore()
	store.drivers[testDriverID] = &domain.Driver{
		ID:       testDriverID,
		Username: "zhangsan",
		FullName: "张三",
		Role:     domain.RoleDriver,
		IsActive: true,
	}
	return store
}

func addShift(store *fakeStore, date, start, end string) domain.Shift {
	shift := domain.Shift{
		ID:          uuid.New(),
		DriverID:    testDriverID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		DriveHours:  6,
		WorkHours:   1,
		WorkMinutes: 30,
	}
	store.shifts = append(store.shifts, shift)
	return shift
}

func driverRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: signToken(t, "test-secret", domain.RoleDriver)})
	return req
}

func decodeData(t *testing.T, resp Response, v any) {
	t.Helper()

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestGetMyShiftsMostRecentFirstWithRest(t *testing.T) {
	store := storeWithDriver()
	first := addShift(store, "2024-01-15", "06:00", "16:00")
	second := addShift(store, "2024-01-16", "06:00", "16:00")
	h := newTestHandlerWith(t, store, newFakeCache())

	resp := serve(h, driverRequest(t, http.MethodGet, "/my-shifts", ""))
	require.True(t, resp.Success, resp.Message)

	var shifts []domain.EnrichedShift
	decodeData(t, resp, &shifts)
	require.Len(t, shifts, 2)

	assert.Equal(t, second.ID, shifts[0].ID)
	rest, ok := shifts[0].Rest.Get()
	require.True(t, ok)
	assert.Equal(t, domain.RestRegularDaily, rest.Type)
	assert.Equal(t, 14, rest.DurationHours)

	assert.Equal(t, first.ID, shifts[1].ID)
	assert.False(t, shifts[1].Rest.Present())
}

func TestUpdateMyShiftCompensation(t *testing.T) {
	store := storeWithDriver()
	// 周六 14:00 到周一 06:00 共 40 小时，是所在周唯一的长间隔
	saturday := addShift(store, "2024-01-13", "06:00", "14:00")
	monday := addShift(store, "2024-01-15", "06:00", "14:00")
	tuesday := addShift(store, "2024-01-16", "06:00", "14:00")
	cache := newFakeCache()
	h := newTestHandlerWith(t, store, cache)

	body := `{"isCompensated":true}`

	tests := []struct {
		name  string
		shift domain.Shift
	}{
		{name: "no rest before first shift", shift: saturday},
		{name: "daily rest", shift: tuesday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(h, driverRequest(t, http.MethodPatch, "/my-shifts/"+tt.shift.ID.String()+"/compensation", body))
			assert.False(t, resp.Success)
			assert.Equal(t, "只有缩短的周休息才能标记为已补偿", resp.Message)

			stored, err := store.GetShiftByID(tt.shift.ID)
			require.NoError(t, err)
			assert.False(t, stored.IsCompensated)
		})
	}

	resp := serve(h, driverRequest(t, http.MethodPatch, "/my-shifts/"+monday.ID.String()+"/compensation", body))
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "更新补偿状态成功", resp.Message)

	stored, err := store.GetShiftByID(monday.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompensated)
	assert.Equal(t, "1", cache.data[reportVersionKey(testDriverID)])

	// 补偿后不再计入总欠账
	resp = serve(h, driverRequest(t, http.MethodGet, "/my-shifts/summary", ""))
	require.True(t, resp.Success, resp.Message)
	var summary domain.ShiftSummary
	decodeData(t, resp, &summary)
	assert.Zero(t, summary.TotalDebt)
}

func TestUpdateMyShiftCompensationRejectsOtherDriversShift(t *testing.T) {
	store := storeWithDriver()
	shift := addShift(store, "2024-01-15", "06:00", "14:00")
	store.shifts[0].DriverID = 2
	h := newTestHandlerWith(t, store, newFakeCache())

	resp := serve(h, driverRequest(t, http.MethodPatch, "/my-shifts/"+shift.ID.String()+"/compensation", `{"isCompensated":false}`))
	assert.False(t, resp.Success)
	assert.Equal(t, "班次不存在", resp.Message)
}

func TestShiftMutationSucceedsWhenCacheUnavailable(t *testing.T) {
	store := storeWithDriver()
	shift := addShift(store, "2024-01-15", "06:00", "14:00")
	cache := newFakeCache()
	cache.err = errors.New("redis 不可用")
	h := newTestHandlerWith(t, store, cache)

	resp := serve(h, driverRequest(t, http.MethodDelete, "/my-shifts/"+shift.ID.String(), ""))
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "删除班次成功", resp.Message)
	assert.Empty(t, store.shifts)

	resp = serve(h, driverRequest(t, http.MethodGet, "/my-shifts", ""))
	assert.True(t, resp.Success, resp.Message)
}

func TestLoadReportServesCacheUntilInvalidated(t *testing.T) {
	store := storeWithDriver()
	addShift(store, "2024-01-15", "06:00", "14:00")
	h := newTestHandlerWith(t, store, newFakeCache())

	report, err := h.loadReport(testDriverID)
	require.NoError(t, err)
	require.Len(t, report.Summary.Shifts, 1)

	addShift(store, "2024-01-16", "06:00", "14:00")

	report, err = h.loadReport(testDriverID)
	require.NoError(t, err)
	assert.Len(t, report.Summary.Shifts, 1)

	h.invalidateReport(testDriverID)

	report, err = h.loadReport(testDriverID)
	require.NoError(t, err)
	assert.Len(t, report.Summary.Shifts, 2)
}

func TestLoadReportIgnoresReportComputedBeforeInvalidation(t *testing.T) {
	store := storeWithDriver()
	addShift(store, "2024-01-15", "06:00", "14:00")
	cache := newFakeCache()
	h := newTestHandlerWith(t, store, cache)
	ctx := context.Background()

	// 读取方先确定缓存键并读取数据库
	key, err := h.reportKey(ctx, testDriverID)
	require.NoError(t, err)
	stale := cachedReport{
		Summary:    h.engine.Summarize(store.shifts),
		Violations: h.engine.Validate(store.shifts),
	}

	// 与此同时另一个请求修改了班次
	addShift(store, "2024-01-16", "06:00", "14:00")
	h.invalidateReport(testDriverID)

	// 读取方随后写入旧结果
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, key, data, time.Minute).Err())

	report, err := h.loadReport(testDriverID)
	require.NoError(t, err)
	assert.Len(t, report.Summary.Shifts, 2)
}
