package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	msgs []kafka.Message
	err  error
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *stubWriter) Close() error { return nil }

func TestKafkaPublisherWritesKeyedEnvelope(t *testing.T) {
	w := &stubWriter{}
	p := &KafkaPublisher{w: w}
	orderID := uuid.New()

	env, err := NewEnvelope(OrderCreated, orderID, map[string]string{"total": "25.00"})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), env))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, orderID.String(), string(msg.Key))
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var decoded Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 1, decoded.Version)
	assert.Equal(t, orderID, decoded.AggregateID)
	assert.JSONEq(t, `{"total":"25.00"}`, string(decoded.Data))
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	p := &KafkaPublisher{w: &stubWriter{err: errors.New("broker down")}}
	env, err := NewEnvelope(OrderCancelled, uuid.New(), nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.cancelled")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Envelope{}))
	assert.NoError(t, p.Close())
}
