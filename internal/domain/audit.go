package domain

import "time"

// AuditKind enumerates the operator actions the register records.
type AuditKind string

const (
	AuditScan            AuditKind = "SCAN"
	AuditVoid            AuditKind = "VOID"
	AuditLogin           AuditKind = "LOGIN"
	AuditDrawerOpen      AuditKind = "DRAWER_OPEN"
	AuditCancelPostTotal AuditKind = "CANCEL_POST_TOTAL"
)

// Risk weights per kind. A VOID is the action loss-prevention reviews,
// so it carries more weight than a plain scan.
const (
	RiskWeightScan       = 0
	RiskWeightDrawerOpen = 1
	RiskWeightVoid       = 2
)

// AuditEvent is append-only for the duration of one sale and travels with
// the finalized Transaction.
type AuditEvent struct {
	Kind       AuditKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	Detail     string    `json:"detail"`
	RiskWeight int       `json:"risk_weight"`
	OperatorID string    `json:"operator_id"`
}
