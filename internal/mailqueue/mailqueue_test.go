package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

type fakePublisher struct {
	key  string
	msg  amqp.Publishing
	fail error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.key = key
	f.msg = msg
	return f.fail
}

func TestPublish(t *testing.T) {
	p := &fakePublisher{}
	deadline := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	err := Publish(context.Background(), p, domain.MailMessage{
		Type: TypeCompensationReminder,
		To:   "driver@example.com",
		Data: domain.CompensationReminderMailData{
			FullName:  "王伟",
			ShiftDate: "2024-03-04",
			DebtHours: 9,
			Deadline:  deadline,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, QueueName, p.key)
	assert.Equal(t, "application/json", p.msg.ContentType)
	assert.Equal(t, amqp.Persistent, p.msg.DeliveryMode)

	var got struct {
		Type string                              `json:"type"`
		To   string                              `json:"to"`
		Data domain.CompensationReminderMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(p.msg.Body, &got))
	assert.Equal(t, TypeCompensationReminder, got.Type)
	assert.Equal(t, "driver@example.com", got.To)
	assert.Equal(t, 9.0, got.Data.DebtHours)
	assert.True(t, deadline.Equal(got.Data.Deadline))
}

func TestPublishReturnsChannelError(t *testing.T) {
	p := &fakePublisher{fail: errors.New("channel closed")}
	err := Publish(context.Background(), p, domain.MailMessage{Type: TypeResetPassword})
	assert.EqualError(t, err, "channel closed")
}

func TestTemplateFor(t *testing.T) {
	for _, mailType := range []string{TypeCreateDriver, TypeResetPassword, TypeChangeEmail, TypeCompensationReminder} {
		tmpl, ok := TemplateFor(mailType)
		assert.True(t, ok, mailType)
		assert.NotEmpty(t, tmpl.File)
		assert.NotEmpty(t, tmpl.Subject)
	}

	_, ok := TemplateFor("create_user")
	assert.False(t, ok)
}
