package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/mailqueue"
)

func (h *Handler) publishMail(msg domain.MailMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return mailqueue.Publish(ctx, h.mailChannel, msg)
}

func (h *Handler) redisContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

func otpKey(username, purpose string) string {
	return fmt.Sprintf("otp_%s_%s", username, purpose)
}
