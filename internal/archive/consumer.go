package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/segmentio/kafka-go"
)

// Consumer drains the sales-tape topic into the durable archive. Inserts
// are idempotent on transaction id, so redelivered messages are skipped.
type Consumer struct {
	repo   SaleArchive
	reader *kafka.Reader
}

func NewConsumer(repo SaleArchive, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "sales-archiver",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{repo, reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		fmt.Printf("error closing kafka reader: %v\n", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Printf("error reading message: %v\n", err)
		return
	}

	if err := c.handleMessage(ctx, m.Value); err != nil {
		fmt.Printf("failed to archive sale: %v\n", err)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, value []byte) error {
	var tx domain.Transaction
	if err := json.Unmarshal(value, &tx); err != nil {
		return fmt.Errorf("parse sale event: %w", err)
	}

	if tx.ID == "" {
		return errors.New("sale event missing transaction id")
	}

	if err := c.repo.SaveSale(ctx, &tx); err != nil {
		if errors.Is(err, ErrDuplicateSale) {
			fmt.Printf("sale %s already archived, skipping\n", tx.ID)
			return nil
		}
		return fmt.Errorf("save sale %s: %w", tx.ID, err)
	}

	fmt.Printf("sale %s archived for station %s\n", tx.ID, tx.StationID)
	return nil
}
