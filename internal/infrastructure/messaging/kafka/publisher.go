package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Header keys set on every record message.
const (
	HeaderRunID = "run_id"
	HeaderYear  = "year"
)

// BatchPublisher is satisfied by *Producer.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, msgs []*Message) (*BatchResult, error)
}

// RecordPublisher turns records into JSON messages on one topic.
type RecordPublisher struct {
	producer  BatchPublisher
	topic     string
	keyField  string
	batchSize int
	logger    logging.Logger
}

// NewRecordPublisher builds a publisher.  keyField selects the message key;
// records whose key is unavailable fall back to their doc-number.
func NewRecordPublisher(p BatchPublisher, topic, keyField string, batchSize int, log logging.Logger) *RecordPublisher {
	if batchSize <= 0 {
		batchSize = 500
	}
	if keyField == "" {
		keyField = patent.FieldDocNumber
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RecordPublisher{producer: p, topic: topic, keyField: keyField, batchSize: batchSize, logger: log}
}

// Publish sends every record of d, batchSize at a time, and returns the
// number delivered.  Any failed message fails the call after the remaining
// batches have been attempted.
func (rp *RecordPublisher) Publish(ctx context.Context, runID string, d *dataset.Dataset) (int, error) {
	var (
		sent   int
		failed int
		first  error
	)
	for start := 0; start < d.Len(); start += rp.batchSize {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		end := start + rp.batchSize
		if end > d.Len() {
			end = d.Len()
		}

		msgs := make([]*Message, 0, end-start)
		for _, rec := range d.Records[start:end] {
			msg, err := rp.message(runID, rec, d.Columns)
			if err != nil {
				return sent, err
			}
			msgs = append(msgs, msg)
		}

		res, err := rp.producer.PublishBatch(ctx, msgs)
		if err != nil {
			return sent, errors.Wrap(err, errors.ErrCodeSinkFailed, "kafka publish failed")
		}
		sent += res.Succeeded
		failed += res.Failed
		if first == nil && len(res.Errors) > 0 {
			first = res.Errors[0].Error
		}
	}

	rp.logger.Info("records published to kafka",
		logging.String("topic", rp.topic),
		logging.String("run_id", runID),
		logging.Int("sent", sent),
		logging.Int("failed", failed),
	)
	if failed > 0 {
		msg := fmt.Sprintf("%d of %d records not published", failed, d.Len())
		if first == nil {
			return sent, errors.New(errors.ErrCodeSinkFailed, msg)
		}
		return sent, errors.Wrap(first, errors.ErrCodeSinkFailed, msg)
	}
	return sent, nil
}

// message encodes rec restricted to columns, in a stable key order.
func (rp *RecordPublisher) message(runID string, rec patent.Record, columns []string) (*Message, error) {
	body := make(map[string]string, len(columns))
	for _, c := range columns {
		body[c] = rec.Get(c)
	}
	value, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode record")
	}

	key := rec.Get(rp.keyField)
	if !patent.IsAvailable(key) {
		key = rec.Get(patent.FieldDocNumber)
	}
	return &Message{
		Topic: rp.topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			HeaderRunID: runID,
			HeaderYear:  rec.Get(patent.FieldYear),
		},
	}, nil
}

//Personal.AI order the ending
