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
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, msg)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendByID(ctx context.Context, id string) (*entity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error { a.acked++; return nil }

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type fakeTopology struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  []string
}

func (f *fakeTopology) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeTopology) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.queues == nil {
		f.queues = map[string]amqp.Table{}
	}
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeTopology) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+name)
	return nil
}

func TestSetupTopology_DeadLetters(t *testing.T) {
	topo := &fakeTopology{}
	require.NoError(t, setupTopology(topo))

	assert.Equal(t, []string{DLXName, ExchangeName}, topo.exchanges)
	assert.Nil(t, topo.queues[DLQName])
	assert.Equal(t, DLXName, topo.queues[QueueName]["x-dead-letter-exchange"])
	assert.Equal(t, []string{DLXName + "->" + DLQName, ExchangeName + "->" + QueueName}, topo.bindings)
}

func TestProducer_PublishNotification(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, mock.MatchedBy(func(p amqp.Publishing) bool {
		var msg NotificationMessage
		if err := json.Unmarshal(p.Body, &msg); err != nil {
			return false
		}
		return msg.NotificationID == "n-1" && p.DeliveryMode == amqp.Persistent && p.MessageId == "n-1"
	})).Return(nil)

	err := NewProducer(pub).PublishNotification(context.Background(), "n-1")
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestProducer_PublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, mock.Anything).Return(errors.New("channel closed"))

	err := NewProducer(pub).PublishNotification(context.Background(), "n-1")
	assert.ErrorContains(t, err, "channel closed")
}

func delivery(body string, redelivered bool) (amqp.Delivery, *fakeAck) {
	ack := &fakeAck{}
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body), Redelivered: redelivered}, ack
}

func TestWorker_Handle(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		redelivered bool
		sendErr     error
		wantAck     bool
		wantRequeue bool
	}{
		{name: "sent", body: `{"notification_id":"n-1"}`, wantAck: true},
		{name: "malformed", body: `not json`},
		{name: "missing id", body: `{}`},
		{name: "not found", body: `{"notification_id":"n-1"}`, sendErr: usecase.NotFound("notification", "n-1")},
		{name: "db error first time", body: `{"notification_id":"n-1"}`, sendErr: errors.New("db down"), wantRequeue: true},
		{name: "db error redelivered", body: `{"notification_id":"n-1"}`, redelivered: true, sendErr: errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(MockSender)
			if tt.sendErr != nil {
				sender.On("SendByID", mock.Anything, "n-1").Return(nil, tt.sendErr)
			} else {
				sender.On("SendByID", mock.Anything, "n-1").Return(&entity.Notification{ID: "n-1", Status: entity.NotificationSent}, nil)
			}
			w := NewWorker(nil, sender, zap.NewNop())

			d, ack := delivery(tt.body, tt.redelivered)
			w.handle(context.Background(), d)

			if tt.wantAck {
				assert.Equal(t, 1, ack.acked)
				assert.Zero(t, ack.nacked)
				return
			}
			assert.Zero(t, ack.acked)
			assert.Equal(t, 1, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}
