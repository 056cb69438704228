package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestKafkaProducer_PublishMessage_Success(t *testing.T) {
	writer := new(mockWriter)
	producer := NewKafkaProducerWithWriter(writer, "review_events")
	ctx := context.Background()

	writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 &&
			string(msgs[0].Key) == "42" &&
			string(msgs[0].Value) == `{"event_type":"REVIEW_CREATED"}` &&
			!msgs[0].Time.IsZero()
	})).Return(nil)

	err := producer.PublishMessage(ctx, "42", []byte(`{"event_type":"REVIEW_CREATED"}`))

	assert.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestKafkaProducer_PublishMessage_Error(t *testing.T) {
	writer := new(mockWriter)
	producer := NewKafkaProducerWithWriter(writer, "review_events")
	ctx := context.Background()

	writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker unavailable"))

	err := producer.PublishMessage(ctx, "1", []byte("{}"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write message to kafka")
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestKafkaProducer_Close(t *testing.T) {
	writer := new(mockWriter)
	producer := NewKafkaProducerWithWriter(writer, "review_events")

	writer.On("Close").Return(nil)

	assert.NoError(t, producer.Close())
	writer.AssertExpectations(t)
}
