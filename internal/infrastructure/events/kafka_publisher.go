// Package events publica los movimientos confirmados del libro de stock.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// MessageWriter es la parte de *kafka.Writer que usa el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe un mensaje JSON por movimiento. La clave es el product_id para
// que los eventos de un mismo producto queden en la misma partición y en orden.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher crea el productor sobre los brokers y topic indicados.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	})
}

// NewKafkaPublisherWithWriter permite inyectar el writer (pruebas).
func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// PublishMovement implementa inventory.EventPublisher.
func (p *KafkaPublisher) PublishMovement(ctx context.Context, event entity.MovementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s: %w", event.Type, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop descarta los eventos (KAFKA_BROKERS vacío).
type Nop struct{}

func (Nop) PublishMovement(context.Context, entity.MovementEvent) error { return nil }
func (Nop) Close() error                                            { return nil }
