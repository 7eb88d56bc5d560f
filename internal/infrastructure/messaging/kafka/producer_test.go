package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Ingest/internal/config"
	"github.com/turtacn/KeyIP-Ingest/internal/testutil"
	pkgerrors "github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// mockKafkaWriter is a testify mock of WriterInterface.
type mockKafkaWriter struct {
	mock.Mock
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockKafkaWriter) Close() error {
	return m.Called().Error(0)
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{}
}

func newTestProducerConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "patent-records",
	}
}

func newTestProducer(w WriterInterface) *Producer {
	return NewProducerWithWriter(w, newTestProducerConfig(), testutil.NewMockLogger())
}

func msg(key, value string) *Message {
	return &Message{Topic: "patent-records", Key: []byte(key), Value: []byte(value)}
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(newTestProducerConfig()))

	cfg := newTestProducerConfig()
	cfg.Brokers = nil
	assert.True(t, pkgerrors.IsCode(ValidateProducerConfig(cfg), pkgerrors.ErrCodeValidation))

	cfg = newTestProducerConfig()
	cfg.Topic = ""
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestNewProducer_BuildsWriter(t *testing.T) {
	p, err := NewProducer(newTestProducerConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, p.writer)
	require.NoError(t, p.Close())
}

func TestRequiredAcksAndCompression(t *testing.T) {
	assert.Equal(t, kafka.RequireAll, requiredAcks(-1))
	assert.Equal(t, kafka.RequireNone, requiredAcks(0))
	assert.Equal(t, kafka.RequireOne, requiredAcks(1))

	assert.Equal(t, kafka.Snappy, compression("snappy"))
	assert.Equal(t, kafka.Zstd, compression("zstd"))
	assert.Equal(t, kafka.Compression(0), compression("none"))
}

func TestPublishBatch_Success(t *testing.T) {
	w := new(mockKafkaWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 2 && string(msgs[0].Key) == "1" && msgs[1].Topic == "patent-records"
	})).Return(nil)

	p := newTestProducer(w)
	res, err := p.PublishBatch(context.Background(), []*Message{msg("1", "a"), msg("2", "bb")})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Failed)
	assert.EqualValues(t, 2, p.metrics.MessagesSent.Load())
	assert.EqualValues(t, 3, p.metrics.BytesSent.Load())
	w.AssertExpectations(t)
}

func TestPublishBatch_PartialFailure(t *testing.T) {
	w := new(mockKafkaWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Return(kafka.WriteErrors{nil, errors.New("fail")})

	p := newTestProducer(w)
	res, err := p.PublishBatch(context.Background(), []*Message{msg("1", "1"), msg("2", "2")})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	m := p.GetMetrics()
	assert.EqualValues(t, 1, m.MessagesFailed)
	assert.EqualValues(t, 1, m.MessagesSent)
	assert.EqualValues(t, 1, m.BytesSent)
	assert.False(t, m.LastSentAt.IsZero())
}

func TestPublishBatch_WholeBatchFailure(t *testing.T) {
	w := new(mockKafkaWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	p := newTestProducer(w)
	res, err := p.PublishBatch(context.Background(), []*Message{msg("1", "1")})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, -1, res.Errors[0].Index)

	m := p.GetMetrics()
	assert.EqualValues(t, 1, m.MessagesFailed)
	assert.Zero(t, m.BytesSent)
	assert.True(t, m.LastSentAt.IsZero())
}

func TestPublishBatch_Empty(t *testing.T) {
	_, err := newTestProducer(new(mockKafkaWriter)).PublishBatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	w := new(mockKafkaWriter)
	w.On("Close").Return(nil).Once()

	p := newTestProducer(w)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	w.AssertExpectations(t)

	_, err := p.PublishBatch(context.Background(), []*Message{msg("1", "1")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestToKafkaMessage_Headers(t *testing.T) {
	km := toKafkaMessage(&Message{Topic: "t", Headers: map[string]string{HeaderRunID: "r"}})

	require.Len(t, km.Headers, 1)
	assert.Equal(t, HeaderRunID, km.Headers[0].Key)
	assert.Equal(t, "r", string(km.Headers[0].Value))
	assert.False(t, km.Time.IsZero())
}

//Personal.AI order the ending
