package session

import (
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

// Snapshot is a parked sale: everything needed to put the cart back on a
// register exactly as it was suspended. The ID is assigned by the store
// that parks it.
type Snapshot struct {
	ID         string               `json:"id" bson:"_id,omitempty"`
	OperatorID string               `json:"operator_id" bson:"operator_id"`
	StationID  string               `json:"station_id" bson:"station_id"`
	Method     domain.PaymentMethod `json:"payment_method" bson:"payment_method"`
	Lines      []domain.CartLine    `json:"lines" bson:"lines"`
	Audit      []domain.AuditEvent  `json:"audit" bson:"audit"`
	ItemsAdded int                  `json:"items_added" bson:"items_added"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
}
