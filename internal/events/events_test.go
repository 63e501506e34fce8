package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"estoque/internal/events"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEmitter_Emit(t *testing.T) {
	publisher := new(mockPublisher)
	var body []byte
	publisher.On("Publish", events.ProductCreated, mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(1).([]byte) }).
		Return(nil).Once()

	events.NewEmitter(publisher, discard).Emit(context.Background(), events.ProductCreated, map[string]any{"id": 7})
	publisher.AssertExpectations(t)

	var event events.Event
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, events.ProductCreated, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.JSONEq(t, `{"id":7}`, string(event.Payload))
}

func TestEmitter_PublishFailureIsSwallowed(t *testing.T) {
	publisher := new(mockPublisher)
	publisher.On("Publish", events.UserDeleted, mock.Anything).Return(errors.New("channel closed")).Once()

	assert.NotPanics(t, func() {
		events.NewEmitter(publisher, discard).Emit(context.Background(), events.UserDeleted, nil)
	})
	publisher.AssertExpectations(t)
}

func TestEmitter_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		events.NewEmitter(nil, discard).Emit(context.Background(), events.UserCreated, nil)
		var emitter *events.Emitter
		emitter.Emit(context.Background(), events.UserCreated, nil)
	})
}

func TestLoggingHandler(t *testing.T) {
	handler := events.LoggingHandler(discard)
	assert.NoError(t, handler(amqp.Delivery{Body: []byte(`{"id":"1","type":"user.created"}`)}))
	assert.NoError(t, handler(amqp.Delivery{Body: []byte(`not json`)}))
}
