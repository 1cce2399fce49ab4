package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestSaleCompleted_MessageShape(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}

	tx := &domain.Transaction{
		ID:            "TX-1757600000000",
		StoreID:       "ST-1",
		Timestamp:     time.Now(),
		OperatorID:    "op-7",
		StationID:     "01",
		PaymentMethod: domain.PaymentCard,
		Subtotal:      6.00,
		Tax:           0.48,
		Total:         6.48,
		Lines: []domain.TransactionLine{
			{ProductID: 1, Name: "Milk 1L", Quantity: 2, PriceAtSale: 2.50},
		},
	}

	require.NoError(t, p.SaleCompleted(context.Background(), tx))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, []byte("TX-1757600000000"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("sale.completed"), msg.Headers[0].Value)

	var decoded domain.Transaction
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, tx.ID, decoded.ID)
	assert.InDelta(t, 6.48, decoded.Total, 1e-9)
	require.Len(t, decoded.Lines, 1)
	assert.Equal(t, 2, decoded.Lines[0].Quantity)
}

func TestSaleCompleted_WriterError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: errors.New("broker unreachable")}}

	err := p.SaleCompleted(context.Background(), &domain.Transaction{ID: "TX-1"})
	assert.ErrorContains(t, err, "broker unreachable")
}
