package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishMovement(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w)
	price := decimal.RequireFromString("10.00")
	ev := entity.MovementEvent{
		EventID:     "e-1",
		Type:        entity.EventMovementApplied,
		MovementID:  4,
		ProductID:   42,
		Kind:        entity.MovementOutflow,
		Quantity:    20,
		UnitPrice:   &price,
		NewQuantity: 30,
		OccurredAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, p.PublishMovement(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, ev.OccurredAt, msg.Time)
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte("movement.applied")})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "outflow", decoded["kind"])
	assert.Equal(t, "10", decoded["unit_price"])
	assert.EqualValues(t, 30, decoded["new_quantity"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker caído")
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: boom})
	err := p.PublishMovement(context.Background(), entity.MovementEvent{Type: entity.EventMovementReversed})
	assert.ErrorIs(t, err, boom)
}
