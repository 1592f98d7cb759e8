package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/utils"
)

type breakRequest struct {
	DurationMinutes int32 `json:"durationMinutes" validate:"min=1"`
}

type shiftRequest struct {
	Date          string           `json:"date" validate:"required,calendar_date"`
	StartTime     string           `json:"startTime" validate:"required,clock"`
	EndTime       string           `json:"endTime" validate:"required,clock"`
	DriveHours    int32            `json:"driveHours" validate:"min=0,max=24"`
	DriveMinutes  int32            `json:"driveMinutes" validate:"min=0,max=59"`
	WorkHours     int32            `json:"workHours" validate:"min=0,max=24"`
	WorkMinutes   int32            `json:"workMinutes" validate:"min=0,max=59"`
	Breaks        []breakRequest   `json:"breaks" validate:"dive"`
	StartLocation *domain.GeoPoint `json:"startLocation"`
	EndLocation   *domain.GeoPoint `json:"endLocation"`
}

// apply 用请求覆盖班次中可编辑的字段，补偿标记单独修改
func (req *shiftRequest) apply(s *domain.Shift) {
	s.Date = req.Date
	s.StartTime = req.StartTime
	s.EndTime = req.EndTime
	s.DriveHours = req.DriveHours
	s.DriveMinutes = req.DriveMinutes
	s.WorkHours = req.WorkHours
	s.WorkMinutes = req.WorkMinutes
	s.StartLocation = req.StartLocation
	s.EndLocation = req.EndLocation

	s.Breaks = make([]domain.Break, 0, len(req.Breaks))
	for _, b := range req.Breaks {
		s.Breaks = append(s.Breaks, domain.Break{DurationMinutes: b.DurationMinutes})
	}
}

func isDuplicateShift(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "shifts_driver_id_date_start_time_key"
}

func (h *Handler) CreateMyShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)

	var req shiftRequest
	if err := h.readAndValidate(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.Shift{DriverID: myInfo.ID}
	req.apply(shift)

	if err := utils.ValidateShift(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateShift(shift); err != nil {
		switch {
		case isDuplicateShift(err):
			h.errorResponse(w, r, "同一日期同一开始时间的班次已存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateReport(myInfo.ID)

	h.successResponse(w, r, "创建班次成功", shift)
}

// GetMyShifts 按时间倒序返回班次，每个班次附带其之前的休息
func (h *Handler) GetMyShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)

	report, err := h.loadReport(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", report.Summary.Shifts)
}

// GetMyShift 返回班次及其之前的休息
func (h *Handler) GetMyShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	report, err := h.loadReport(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	enriched := domain.EnrichedShift{Shift: *shift, Rest: domain.NoRest()}
	for _, s := range report.Summary.Shifts {
		if s.ID == shift.ID {
			enriched.Rest = s.Rest
			break
		}
	}

	h.successResponse(w, r, "获取班次成功", enriched)
}

func (h *Handler) UpdateMyShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req shiftRequest
	if err := h.readAndValidate(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	req.apply(shift)

	if err := utils.ValidateShift(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShift(shift); err != nil {
		switch {
		case isDuplicateShift(err):
			h.errorResponse(w, r, "同一日期同一开始时间的班次已存在")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新班次失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateReport(myInfo.ID)

	h.successResponse(w, r, "更新班次成功", shift)
}

func (h *Handler) DeleteMyShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateReport(myInfo.ID)

	h.successResponse(w, r, "删除班次成功", nil)
}

func (h *Handler) UpdateMyShiftCompensation(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Driver)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		IsCompensated *bool `json:"isCompensated" validate:"required"`
	}

	if err := h.readAndValidate(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 只有缩短的周休息才存在需要补偿的时长
	if *req.IsCompensated {
		shifts, err := h.repository.GetShiftsByDriverID(myInfo.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		rest, ok := h.engine.RestBefore(shifts, shift.ID).Get()
		if !ok || rest.Type != domain.RestWeeklyReduced {
			h.errorResponse(w, r, "只有缩短的周休息才能标记为已补偿")
			return
		}
	}

	shift.IsCompensated = *req.IsCompensated
	if err := h.repository.UpdateShiftCompensation(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新补偿状态失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateReport(myInfo.ID)

	h.successResponse(w, r, "更新补偿状态成功", shift)
}
