package suspend

import (
	"context"
	"errors"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/session"
)

var ErrParkedSaleNotFound = errors.New("parked sale not found")

// Store holds suspended sales between customers. Park assigns the
// snapshot id; Resume removes the snapshot so it cannot land on two
// registers.
type Store interface {
	Park(ctx context.Context, snap *session.Snapshot) (string, error)
	Resume(ctx context.Context, id string) (*session.Snapshot, error)
	List(ctx context.Context, stationID string) ([]*session.Snapshot, error)
}
