package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind).Error(0)
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	called := m.Called(name, args)
	return amqp.Queue{Name: name}, called.Error(0)
}

func (m *MockChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyJob(ctx context.Context, job NotificationJob) error {
	return m.Called(job).Error(0)
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestSetupTopology_DeclaresDeadLetterRouting(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", DLXName, "direct").Return(nil)
	ch.On("QueueDeclare", DLQName, amqp.Table(nil)).Return(nil)
	ch.On("QueueBind", DLQName, RoutingKey, DLXName).Return(nil)
	ch.On("ExchangeDeclare", ExchangeName, "direct").Return(nil)
	ch.On("QueueDeclare", QueueName, amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}).Return(nil)
	ch.On("QueueBind", QueueName, RoutingKey, ExchangeName).Return(nil)

	require.NoError(t, setupTopology(ch))
	ch.AssertExpectations(t)
}

func TestSetupTopology_StopsOnError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", DLXName, "direct").Return(errors.New("access refused"))

	err := setupTopology(ch)
	assert.EqualError(t, err, "access refused")
	ch.AssertNotCalled(t, "QueueDeclare", mock.Anything, mock.Anything)
}

func TestProducer_PublishNotification(t *testing.T) {
	ch := new(MockChannel)
	job := NotificationJob{MessageID: "m-1", LeadID: 10, SlotID: 2, LeadName: "Jane"}

	ch.On("PublishWithContext", ExchangeName, RoutingKey, mock.MatchedBy(func(p amqp.Publishing) bool {
		var got NotificationJob
		if err := json.Unmarshal(p.Body, &got); err != nil {
			return false
		}
		return p.MessageId == "m-1" && p.DeliveryMode == amqp.Persistent && got.LeadID == 10
	})).Return(nil)

	p := &RabbitMQProducer{Ch: ch}
	require.NoError(t, p.PublishNotification(context.Background(), job))
	ch.AssertExpectations(t)
}

func TestProducer_PublishError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("PublishWithContext", ExchangeName, RoutingKey, mock.Anything).Return(errors.New("channel closed"))

	p := &RabbitMQProducer{Ch: ch}
	err := p.PublishNotification(context.Background(), NotificationJob{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "falha ao publicar no RabbitMQ")
}

func TestWorker_HandleDelivery(t *testing.T) {
	job := NotificationJob{
		LeadID:         5,
		SlotID:         3,
		LeadName:       "Jane",
		AdditionalData: []entity.AdditionalField{{Key: "budget", Value: "10k"}},
	}
	body, _ := json.Marshal(job)

	t.Run("ack on success", func(t *testing.T) {
		n := new(MockNotifier)
		n.On("NotifyJob", job).Return(nil)
		w := NewWorker(nil, n, nil)
		ack := &fakeAck{}

		w.handleDelivery(context.Background(), body, "m-1", ack)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		n.AssertExpectations(t)
	})

	t.Run("dead letter on failure", func(t *testing.T) {
		n := new(MockNotifier)
		n.On("NotifyJob", job).Return(errors.New("HTTP 500"))
		w := NewWorker(nil, n, nil)
		ack := &fakeAck{}

		w.handleDelivery(context.Background(), body, "m-1", ack)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("dead letter on malformed json", func(t *testing.T) {
		n := new(MockNotifier)
		w := NewWorker(nil, n, nil)
		ack := &fakeAck{}

		w.handleDelivery(context.Background(), []byte("{not json"), "m-2", ack)

		assert.True(t, ack.nacked)
		n.AssertNotCalled(t, "NotifyJob", mock.Anything)
	})
}
