package suspend

import (
	"context"
	"testing"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestStore(t *testing.T) (Store, func()) {
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return NewMongoStore(db), cleanup
}

func parkedSnapshot(stationID string) *session.Snapshot {
	return &session.Snapshot{
		OperatorID: "op-7",
		StationID:  stationID,
		Method:     domain.PaymentCash,
		Lines: []domain.CartLine{
			{ProductID: 1, Name: "Whole Milk 1L", UnitPrice: 1.50, Quantity: 2},
		},
		Audit: []domain.AuditEvent{
			{Kind: domain.AuditScan, RiskWeight: domain.RiskWeightScan},
		},
		ItemsAdded: 2,
	}
}

func TestPark_AssignsID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	snap := parkedSnapshot("station-1")

	id, err := store.Park(ctx, snap)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, snap.CreatedAt.IsZero())
}

func TestResume_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	snap := parkedSnapshot("station-1")

	id, err := store.Park(ctx, snap)
	require.NoError(t, err)

	got, err := store.Resume(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "op-7", got.OperatorID)
	assert.Equal(t, "station-1", got.StationID)
	assert.Equal(t, domain.PaymentCash, got.Method)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, 2, got.ItemsAdded)
}

func TestResume_RemovesParkedSale(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	id, err := store.Park(ctx, parkedSnapshot("station-1"))
	require.NoError(t, err)

	_, err = store.Resume(ctx, id)
	require.NoError(t, err)

	// A parked sale can only be resumed once.
	_, err = store.Resume(ctx, id)
	assert.ErrorIs(t, err, ErrParkedSaleNotFound)
}

func TestResume_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Resume(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrParkedSaleNotFound)
}

func TestList_FiltersByStation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.Park(ctx, parkedSnapshot("station-1"))
	require.NoError(t, err)
	_, err = store.Park(ctx, parkedSnapshot("station-1"))
	require.NoError(t, err)
	_, err = store.Park(ctx, parkedSnapshot("station-2"))
	require.NoError(t, err)

	snaps, err := store.List(ctx, "station-1")
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestContextCancellation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond)

	_, err := store.Resume(ctx, "any")
	assert.Error(t, err)
}
