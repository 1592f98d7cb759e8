package mailqueue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const QueueName = "email_queue"

// 邮件类型
const (
	TypeCreateDriver         = "create_driver"
	TypeResetPassword        = "reset_password"
	TypeChangeEmail          = "change_email"
	TypeCompensationReminder = "compensation_reminder"
)

type Template struct {
	File    string
	Subject string
}

var templates = map[string]Template{
	TypeCreateDriver:         {File: "./templates/new_account_email.html", Subject: "驾驶工时系统 - 账户信息"},
	TypeResetPassword:        {File: "./templates/reset_password_otp_email.html", Subject: "驾驶工时系统 - 重置密码"},
	TypeChangeEmail:          {File: "./templates/change_email_email.html", Subject: "驾驶工时系统 - 修改邮箱"},
	TypeCompensationReminder: {File: "./templates/compensation_reminder_email.html", Subject: "驾驶工时系统 - 周休息补偿提醒"},
}

// TemplateFor 返回邮件类型对应的模板，类型不支持时 ok 为 false
func TemplateFor(mailType string) (Template, bool) {
	t, ok := templates[mailType]
	return t, ok
}

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Declare 声明持久化的邮件队列，api、mail、reminder 三个进程都会调用
func Declare(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName, // 队列名称
		true,      // 是否持久化
		false,     // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false,     // 是否独占
		false,     // 是否不等待
		nil,       // 额外参数
	)
}

func Publish(ctx context.Context, p Publisher, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
