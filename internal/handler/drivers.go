package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/mailqueue"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// driverConstraintError 把唯一约束冲突转换成可读的错误，其余错误返回 nil
func driverConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.ConstraintName {
	case "drivers_username_key":
		return errors.New("用户名已存在")
	case "drivers_email_key":
		return errors.New("邮箱已存在")
	}
	return nil
}

func (h *Handler) GetAllDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.repository.GetAllDrivers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取司机列表成功", drivers)
}

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username      string `json:"username" validate:"required"`
		FullName      string `json:"fullName" validate:"required"`
		Email         string `json:"email" validate:"required,email"`
		Role          string `json:"role" validate:"required,oneof=司机 管理员"`
		LicenseNumber string `json:"licenseNumber" validate:"required_if=Role 司机"`
	}

	if err := h.readAndValidate(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 生成随机密码并通过邮件告知
	password := utils.GenerateRandomPassword(h.config.NewDriver.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	driver := &domain.Driver{
		Username:      req.Username,
		PasswordHash:  string(hashedPassword),
		FullName:      req.FullName,
		Email:         req.Email,
		Role:          domain.Role(req.Role),
		LicenseNumber: req.LicenseNumber,
	}

	if err := h.repository.CreateDriver(driver); err != nil {
		if cErr := driverConstraintError(err); cErr != nil {
			h.badRequest(w, r, cErr)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: mailqueue.TypeCreateDriver,
		To:   driver.Email,
		Data: domain.CreateDriverMailData{
			FullName: driver.FullName,
			Username: driver.Username,
			Password: password,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "司机创建成功", driver)
}

func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	driver := r.Context().Value(DriverInfoCtx).(*domain.Driver)
	h.successResponse(w, r, "获取司机信息成功", driver)
}

func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName      *string `json:"fullName"`
		Email         *string `json:"email" validate:"omitempty,email"`
		Role          *string `json:"role" validate:"omitempty,oneof=司机 管理员"`
		LicenseNumber *string `json:"licenseNumber"`
		IsActive      *bool   `json:"isActive"`
	}

	if err := h.readAndValidate(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	driver := r.Context().Value(DriverInfoCtx).(*domain.Driver)

	if req.FullName != nil {
		driver.FullName = *req.FullName
	}
	if req.Email != nil {
		driver.Email = *req.Email
	}
	if req.Role != nil {
		driver.Role = domain.Role(*req.Role)
	}
	if req.LicenseNumber != nil {
		driver.LicenseNumber = *req.LicenseNumber
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateDriver(driver); err != nil {
		if cErr := driverConstraintError(err); cErr != nil {
			h.badRequest(w, r, cErr)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新司机信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新司机信息成功", driver)
}

func (h *Handler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	driver := r.Context().Value(DriverInfoCtx).(*domain.Driver)

	if err := h.repository.DeleteDriver(driver.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 班次随司机级联删除，缓存的报告也一并失效
	h.invalidateReport(driver.ID)

	h.successResponse(w, r, "删除司机成功", nil)
}

func (h *Handler) UpdateDriverPassword(w http.ResponseWriter, r *http.Request) {
	driver := r.Context().Value(DriverInfoCtx).(*domain.Driver)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readAndValidate(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	driver.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateDriver(driver); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "修改密码失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}

func (h *Handler) GetDriverReport(w http.ResponseWriter, r *http.Request) {
	driver := r.Context().Value(DriverInfoCtx).(*domain.Driver)

	report, err := h.complianceReport(driver.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取合规报告成功", report)
}
