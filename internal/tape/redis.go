package tape

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/redis/go-redis/v9"
)

const tapeKey = "nexus:transactions"

func NewRedisTape(client *redis.Client) *RedisTape {
	return &RedisTape{client: client}
}

// RedisTape keeps the sales tape in a single Redis list under a fixed key.
type RedisTape struct {
	client *redis.Client
}

func (t *RedisTape) Append(ctx context.Context, tx *domain.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction failed: %w", err)
	}

	// Prepend and truncate in one round trip so the tape never exceeds Depth.
	pipe := t.client.TxPipeline()
	pipe.LPush(ctx, tapeKey, data)
	pipe.LTrim(ctx, tapeKey, 0, Depth-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append failed: %w", err)
	}
	return nil
}

func (t *RedisTape) List(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 || limit > Depth {
		limit = Depth
	}

	raw, err := t.client.LRange(ctx, tapeKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range failed: %w", err)
	}

	txs := make([]*domain.Transaction, 0, len(raw))
	for _, entry := range raw {
		var tx domain.Transaction
		if err := json.Unmarshal([]byte(entry), &tx); err != nil {
			return nil, fmt.Errorf("unmarshal transaction failed: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, nil
}
