package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/clock"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/config"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/mailqueue"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/utils"
)

const tokenCookieName = "__driver_hours_token"

// Store 是 handler 用到的持久化操作，由 repository.Repository 实现
type Store interface {
	Ping() error

	GetDriverByID(id int64) (*domain.Driver, error)
	GetDriverByUsername(username string) (*domain.Driver, error)
	GetAllDrivers() ([]*domain.Driver, error)
	CreateDriver(driver *domain.Driver) error
	UpdateDriver(driver *domain.Driver) error
	DeleteDriver(id int64) error
	CheckEmailIfExists(email string) (bool, error)

	GetShiftsByDriverID(driverID int64) ([]domain.Shift, error)
	GetShiftByID(id uuid.UUID) (*domain.Shift, error)
	CreateShift(shift *domain.Shift) error
	UpdateShift(shift *domain.Shift) error
	UpdateShiftCompensation(shift *domain.Shift) error
	DeleteShift(id uuid.UUID) error
}

// Cache 是 handler 用到的 redis 命令，由 *redis.Client 实现
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Store
	translator  ut.Translator
	mailChannel mailqueue.Publisher
	redisClient Cache
	engine      *compliance.Engine
	clock       clock.Clock

	Mux *chi.Mux
}

// 自定义的校验规则及其中文提示
var layoutValidations = []struct {
	tag     string
	layout  string
	message string
}{
	{tag: "calendar_date", layout: utils.DateLayout, message: "{0}必须是 YYYY-MM-DD 格式的日期"},
	{tag: "clock", layout: utils.ClockLayout, message: "{0}必须是 HH:MM 格式的时间"},
}

func registerLayoutValidations(validate *validator.Validate, trans ut.Translator) error {
	for _, v := range layoutValidations {
		layout := v.layout
		if err := validate.RegisterValidation(v.tag, func(fl validator.FieldLevel) bool {
			_, err := time.Parse(layout, fl.Field().String())
			return err == nil
		}); err != nil {
			return err
		}

		tag, message := v.tag, v.message
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		}); err != nil {
			return err
		}
	}
	return nil
}

func NewHandler(cfg *config.Config, repo Store, mailCh mailqueue.Publisher, rdb Cache, engine *compliance.Engine, clk clock.Clock) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerLayoutValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		engine:      engine,
		clock:       clk,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.HealthCheck)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateDriver)
			r.Get("/", h.GetAllDrivers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.driverInfo)
				r.Get("/", h.GetDriver)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateDriver)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteDriver)
				r.Patch("/password", h.UpdateDriverPassword)
				r.Get("/report", h.GetDriverReport)
			})
		})

		r.Route("/my-shifts", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.preventInactiveDriver)
			r.Post("/", h.CreateMyShift)
			r.Get("/", h.GetMyShifts)
			r.Get("/summary", h.GetMySummary)
			r.Get("/violations", h.GetMyViolations)
			r.Get("/stats", h.GetMyStats)
			r.Get("/report", h.GetMyReport)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.myShift)
				r.Get("/", h.GetMyShift)
				r.Put("/", h.UpdateMyShift)
				r.Delete("/", h.DeleteMyShift)
				r.Patch("/compensation", h.UpdateMyShiftCompensation)
			})
		})
	})
}
