// Package reminder 找出即将到期且尚未补偿的缩短周休息，并通过邮件队列提醒司机
package reminder

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/clock"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/mailqueue"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	GetAllActiveDrivers() ([]*domain.Driver, error)
	GetShiftsByDriverID(driverID int64) ([]domain.Shift, error)
}

type Reminder struct {
	store       Store
	engine      *compliance.Engine
	clock       clock.Clock
	publisher   mailqueue.Publisher
	leadDays    int
	concurrency int
}

func New(store Store, engine *compliance.Engine, clk clock.Clock, publisher mailqueue.Publisher, leadDays, concurrency int) *Reminder {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reminder{
		store:       store,
		engine:      engine,
		clock:       clk,
		publisher:   publisher,
		leadDays:    leadDays,
		concurrency: concurrency,
	}
}

// Due 返回截止时间落在 [now, now+leadDays] 内且尚未补偿的缩短周休息
func Due(summary domain.ShiftSummary, now time.Time, leadDays int) []domain.EnrichedShift {
	horizon := now.AddDate(0, 0, leadDays)

	due := make([]domain.EnrichedShift, 0)
	for _, s := range summary.Shifts {
		rest, ok := s.Rest.Get()
		if !ok || rest.Type != domain.RestWeeklyReduced || rest.IsCompensated || rest.CompensationDeadline == nil {
			continue
		}
		deadline := *rest.CompensationDeadline
		if deadline.Before(now) || deadline.After(horizon) {
			continue
		}
		due = append(due, s)
	}
	return due
}

func message(driver *domain.Driver, s domain.EnrichedShift) domain.MailMessage {
	rest, _ := s.Rest.Get()
	return domain.MailMessage{
		Type: mailqueue.TypeCompensationReminder,
		To:   driver.Email,
		Data: domain.CompensationReminderMailData{
			FullName:  driver.FullName,
			ShiftDate: s.Date,
			DebtHours: rest.DebtHours,
			Deadline:  *rest.CompensationDeadline,
		},
	}
}

// Run 并发计算每个司机的休息汇总，然后依次发送提醒，返回发送的邮件数量
func (r *Reminder) Run(ctx context.Context) (int, error) {
	drivers, err := r.store.GetAllActiveDrivers()
	if err != nil {
		return 0, err
	}

	now := r.clock.Now()
	pending := make([][]domain.MailMessage, len(drivers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, driver := range drivers {
		i, driver := i, driver
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			shifts, err := r.store.GetShiftsByDriverID(driver.ID)
			if err != nil {
				return err
			}

			for _, s := range Due(r.engine.Summarize(shifts), now, r.leadDays) {
				pending[i] = append(pending[i], message(driver, s))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	sent := 0
	for _, msgs := range pending {
		for _, msg := range msgs {
			if err := mailqueue.Publish(ctx, r.publisher, msg); err != nil {
				return sent, err
			}
			sent++
		}
	}

	return sent, nil
}
