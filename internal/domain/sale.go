package domain

import "time"

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentMobile PaymentMethod = "MOBILE" // shown as NFC on the register
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentMobile
}

// String representation (for logging)
func (m PaymentMethod) String() string {
	return string(m)
}

type SaleState string

const (
	SaleIdle       SaleState = "IDLE"
	SaleActive     SaleState = "ACTIVE"
	SaleFinalizing SaleState = "FINALIZING"
)

func (s SaleState) String() string {
	return string(s)
}

// CartLine is one aggregated entry per distinct product in the current sale.
// Lines are kept most-recent-first; a repeated add bumps Quantity instead of
// appending a duplicate line.
type CartLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Totals are derived from the cart, never stored.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type TransactionLine struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"price_at_sale"`
}

// Transaction is the durable record of one completed sale. It is built
// exactly once at finalize time and never mutated afterwards.
type Transaction struct {
	ID            string            `json:"id"`
	StoreID       string            `json:"store_id"`
	Timestamp     time.Time         `json:"timestamp"`
	OperatorID    string            `json:"operator_id"`
	OperatorName  string            `json:"operator_name"`
	StationID     string            `json:"station_id"`
	Lines         []TransactionLine `json:"line_items"`
	Subtotal      float64           `json:"subtotal"`
	Tax           float64           `json:"tax"`
	Total         float64           `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	ChangeDue     float64           `json:"change_due"`
	AuthCode      string            `json:"auth_code,omitempty"`
	AuditTrail    []AuditEvent      `json:"audit_trail"`
}

// SessionMetrics is a display-only snapshot of the velocity meter.
// StartedAt is the zero time while the register is idle.
type SessionMetrics struct {
	StartedAt      time.Time `json:"started_at"`
	ItemsAdded     int       `json:"items_added"`
	ItemsPerMinute int       `json:"items_per_minute"`
}
