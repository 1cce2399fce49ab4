package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/segmentio/kafka-go"
)

// Topic carries every finalized sale off the register.
const Topic = "sales-tape"

const eventType = "sale.completed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher pushes completed transactions to Kafka. The session treats it
// as best-effort: a dead broker never undoes a sale already on the tape.
type Publisher struct {
	writer messageWriter
}

func New(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) SaleCompleted(ctx context.Context, tx *domain.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(tx.ID), // transaction id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
