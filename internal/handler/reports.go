package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

// cachedReport 是缓存在 redis 中的部分报告，统计数据依赖当前时间，因此不缓存
type cachedReport struct {
	Summary    domain.ShiftSummary  `json:"summary"`
	Violations map[uuid.UUID]string `json:"violations"`
}

func reportVersionKey(driverID int64) string {
	return fmt.Sprintf("compliance_report_version_%d", driverID)
}

func reportCacheKey(driverID, version int64) string {
	return fmt.Sprintf("compliance_report_%d_v%d", driverID, version)
}

// reportKey 返回当前版本的缓存键，版本号不存在时为 0
func (h *Handler) reportKey(ctx context.Context, driverID int64) (string, error) {
	version, err := h.redisClient.Get(ctx, reportVersionKey(driverID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return reportCacheKey(driverID, version), nil
}

// loadReport 优先读取缓存，缓存不可用时从数据库重新计算。redis 出错只记录日志，不影响请求
// 缓存键在读数据库之前确定，计算期间发生的修改会提升版本号，旧结果写入的键不会再被读取
func (h *Handler) loadReport(driverID int64) (*cachedReport, error) {
	ctx, cancel := h.redisContext()
	defer cancel()

	key, err := h.reportKey(ctx, driverID)
	if err != nil {
		slog.Warn("无法读取合规报告版本", "driverID", driverID, "error", err)
	}

	if key != "" {
		data, err := h.redisClient.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			report := &cachedReport{}
			if err := json.Unmarshal(data, report); err == nil {
				return report, nil
			}
			slog.Warn("合规报告缓存已损坏", "driverID", driverID)
		case errors.Is(err, redis.Nil):
		default:
			slog.Warn("无法读取合规报告缓存", "driverID", driverID, "error", err)
		}
	}

	shifts, err := h.repository.GetShiftsByDriverID(driverID)
	if err != nil {
		return nil, err
	}

	report := &cachedReport{
		Summary:    h.engine.Summarize(shifts),
		Violations: h.engine.Validate(shifts),
	}

	if key == "" {
		return report, nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	expiration := time.Duration(h.config.Compliance.ReportCacheExpiration) * time.Second
	if err := h.redisClient.Set(ctx, key, data, expiration).Err(); err != nil {
		slog.Warn("无法写入合规报告缓存", "driverID", driverID, "error", err)
	}

	return report, nil
}

// invalidateReport 提升版本号使旧缓存失效，在数据库修改提交之后调用，redis 出错只记录日志
func (h *Handler) invalidateReport(driverID int64) {
	ctx, cancel := h.redisContext()
	defer cancel()

	if err := h.redisClient.Incr(ctx, reportVersionKey(driverID)).Err(); err != nil {
		slog.Warn("无法使合规报告缓存失效", "driverID", driverID, "error", err)
	}
}

func summaryShifts(summary domain.ShiftSummary) []domain.Shift {
	shifts := make([]domain.Shift, 0, len(summary.Shifts))
	for _, s := range summary.Shifts {
		shifts = append(shifts, s.Shift)
	}
	return shifts
}

func (h *Handler) stats(report *cachedReport) (domain.Stats, error) {
	return h.engine.Aggregate(summaryShifts(report.Summary), h.clock.Now())
}

func (h *Handler) complianceReport(driverID int64) (*domain.ComplianceReport, error) {
	report, err := h.loadReport(driverID)
	if err != nil {
		return nil, err
	}

	stats, err := h.stats(report)
	if err != nil {
		return nil, err
	}

	return &domain.ComplianceReport{
		Summary:    report.Summary,
		Violations: report.Violations,
		Stats:      stats,
	}, nil
}

func (h *Handler) GetMySummary(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)

	report, err := h.loadReport(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取休息汇总成功", report.Summary)
}

func (h *Handler) GetMyViolations(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)

	report, err := h.loadReport(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取违规信息成功", report.Violations)
}

func (h *Handler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)

	report, err := h.loadReport(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	stats, err := h.stats(report)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工时统计成功", stats)
}

func (h *Handler) GetMyReport(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)

	report, err := h.complianceReport(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取合规报告成功", report)
}
