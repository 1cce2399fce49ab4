package session

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/feedback"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/payment"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/tape"
)

const (
	// DefaultTaxRate applies when the store config carries no rate.
	DefaultTaxRate = 0.08

	// metricsTick is how often the velocity meter recomputes.
	metricsTick = time.Second

	// minElapsedMinutes floors the elapsed time so the meter doesn't blow
	// up in the first instants of a session.
	minElapsedMinutes = 0.01
)

// Config identifies the operator and station owning this session. The
// session never reads ambient state; everything it needs arrives here.
type Config struct {
	StoreID      string
	OperatorID   string
	OperatorName string
	StationID    string
	TaxRate      float64
}

// SaleNotifier receives each completed transaction after it is on the
// tape. Failures are logged, never propagated: publishing is best-effort.
type SaleNotifier interface {
	SaleCompleted(ctx context.Context, tx *domain.Transaction) error
}

// SaleSession owns the in-progress cart of one register lane: line items,
// the per-sale audit log, the velocity meter and the finalize protocol.
// IDLE -> ACTIVE on the first add, ACTIVE -> FINALIZING while settlement
// is in flight, back to IDLE once the transaction is on the tape.
type SaleSession struct {
	cfg      Config
	tape     tape.TransactionTape
	auth     payment.Authorizer
	beeper   feedback.Beeper
	notifier SaleNotifier
	now      func() time.Time

	mu         sync.Mutex
	state      domain.SaleState
	lines      []domain.CartLine
	audit      []domain.AuditEvent
	method     domain.PaymentMethod
	startedAt  time.Time
	itemsAdded int
	ipm        int

	stopMetrics chan struct{}
	wg          sync.WaitGroup
}

func New(cfg Config, t tape.TransactionTape, auth payment.Authorizer, beeper feedback.Beeper, notifier SaleNotifier) *SaleSession {
	if cfg.TaxRate <= 0 {
		cfg.TaxRate = DefaultTaxRate
	}
	if beeper == nil {
		beeper = feedback.NopBeeper{}
	}
	return &SaleSession{
		cfg:      cfg,
		tape:     t,
		auth:     auth,
		beeper:   beeper,
		notifier: notifier,
		now:      time.Now,
		state:    domain.SaleIdle,
		method:   domain.PaymentCash,
	}
}

// AddItem registers one unit of the product. A line for the same product
// gets its quantity bumped; otherwise a new line goes to the front so the
// operator sees the latest scan on top. A zero product is a no-op: the
// dispatch layer resolves catalog ids before calling.
func (s *SaleSession) AddItem(product domain.Product) error {
	s.mu.Lock()
	if s.state == domain.SaleFinalizing {
		s.mu.Unlock()
		return ErrFinalizing
	}
	if product.ID == 0 {
		s.mu.Unlock()
		return nil
	}

	if s.state == domain.SaleIdle {
		s.state = domain.SaleActive
		s.startedAt = s.now()
		s.startMetricsLocked()
	}

	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == product.ID {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		line := domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
		}
		s.lines = append([]domain.CartLine{line}, s.lines...)
	}

	s.itemsAdded++
	s.recomputeIPMLocked()
	s.appendAuditLocked(domain.AuditScan, fmt.Sprintf("Added %s", product.Name), domain.RiskWeightScan)
	s.mu.Unlock()

	if err := s.beeper.Blip(); err != nil {
		log.Printf("scan blip failed: %v", err)
	}
	return nil
}

// RemoveItem voids the whole line, not a single unit. A later re-add
// starts over at quantity 1.
func (s *SaleSession) RemoveItem(productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SaleFinalizing {
		return ErrFinalizing
	}

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			name := s.lines[i].Name
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.appendAuditLocked(domain.AuditVoid, fmt.Sprintf("Removed %s from cart", name), domain.RiskWeightVoid)
			return nil
		}
	}
	return ErrLineNotFound
}

func (s *SaleSession) SetPaymentMethod(method domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SaleFinalizing {
		return ErrFinalizing
	}
	if !method.Valid() {
		return ErrInvalidPayment
	}
	s.method = method
	return nil
}

// PaymentMethod returns the currently selected tender.
func (s *SaleSession) PaymentMethod() domain.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// RecordEvent appends an audit event outside the scan/void flows, e.g.
// LOGIN when the operator signs in or DRAWER_OPEN on a no-sale.
func (s *SaleSession) RecordEvent(kind domain.AuditKind, detail string, riskWeight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAuditLocked(kind, detail, riskWeight)
}

// Totals is a pure function of the current cart. No rounding happens
// here; formatting to two decimals is the presentation layer's problem.
func (s *SaleSession) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeTotals(s.lines, s.cfg.TaxRate)
}

func computeTotals(lines []domain.CartLine, taxRate float64) domain.Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}
	tax := subtotal * taxRate
	return domain.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

func (s *SaleSession) State() domain.SaleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Lines returns a copy of the cart, most recent first.
func (s *SaleSession) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// AuditTrail returns a copy of the events recorded so far this sale.
func (s *SaleSession) AuditTrail() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEvent, len(s.audit))
	copy(out, s.audit)
	return out
}

func (s *SaleSession) Metrics() domain.SessionMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionMetrics{
		StartedAt:      s.startedAt,
		ItemsAdded:     s.itemsAdded,
		ItemsPerMinute: s.ipm,
	}
}

// Finalize converts the cart into a Transaction: validate tender, settle
// with the authorizer, put the record on the tape and reset to IDLE. The
// tape append and the reset happen under one lock hold so no caller can
// observe a cleared cart without a recorded transaction or vice versa.
// amountTendered only matters for CASH; zero means "not provided".
func (s *SaleSession) Finalize(ctx context.Context, method domain.PaymentMethod, amountTendered float64) (*domain.Transaction, error) {
	s.mu.Lock()
	if s.state == domain.SaleFinalizing {
		s.mu.Unlock()
		return nil, ErrFinalizing
	}
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}
	if !method.Valid() {
		s.mu.Unlock()
		return nil, ErrInvalidPayment
	}

	totals := computeTotals(s.lines, s.cfg.TaxRate)
	if method == domain.PaymentCash && amountTendered > 0 && amountTendered < totals.Total {
		s.mu.Unlock()
		return nil, ErrInsufficientTender
	}

	s.state = domain.SaleFinalizing
	s.method = method
	linesSnap := make([]domain.CartLine, len(s.lines))
	copy(linesSnap, s.lines)
	auditSnap := make([]domain.AuditEvent, len(s.audit))
	copy(auditSnap, s.audit)
	s.mu.Unlock()

	// Settlement happens outside the lock; mutating input is rejected
	// while the state is FINALIZING, so the snapshots stay authoritative.
	result, err := s.auth.Authorize(ctx, payment.Request{Method: method, Amount: totals.Total})
	if err != nil {
		s.mu.Lock()
		s.state = domain.SaleActive
		s.mu.Unlock()
		return nil, fmt.Errorf("payment authorization failed: %w", err)
	}

	items := make([]domain.TransactionLine, len(linesSnap))
	for i, line := range linesSnap {
		items[i] = domain.TransactionLine{
			ProductID:   line.ProductID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			PriceAtSale: line.UnitPrice,
		}
	}

	now := s.now()
	var changeDue float64
	if method == domain.PaymentCash {
		changeDue = math.Max(0, amountTendered-totals.Total)
	}

	tx := &domain.Transaction{
		ID:            fmt.Sprintf("TX-%d", now.UnixMilli()),
		StoreID:       s.cfg.StoreID,
		Timestamp:     now,
		OperatorID:    s.cfg.OperatorID,
		OperatorName:  s.cfg.OperatorName,
		StationID:     s.cfg.StationID,
		Lines:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: method,
		ChangeDue:     changeDue,
		AuthCode:      result.AuthCode,
		AuditTrail:    auditSnap,
	}

	s.mu.Lock()
	if err := s.tape.Append(ctx, tx); err != nil {
		s.state = domain.SaleActive
		s.mu.Unlock()
		return nil, fmt.Errorf("tape append failed: %w", err)
	}
	s.clearLocked()
	s.mu.Unlock()

	if s.notifier != nil {
		if err := s.notifier.SaleCompleted(ctx, tx); err != nil {
			log.Printf("sale event publish failed for %s: %v", tx.ID, err)
		}
	}
	return tx, nil
}

// Reset throws the sale away for the next customer: cart, audit log and
// timer all clear, no transaction is recorded. A finalize in flight
// cannot be aborted, only prevented from re-entering.
func (s *SaleSession) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SaleFinalizing {
		return ErrFinalizing
	}
	s.clearLocked()
	return nil
}

// Suspend parks the current sale so another customer can be served, then
// clears the session. The snapshot is resumable via Resume.
func (s *SaleSession) Suspend() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SaleFinalizing {
		return nil, ErrFinalizing
	}
	if len(s.lines) == 0 {
		return nil, ErrNothingToSuspend
	}

	snap := &Snapshot{
		OperatorID: s.cfg.OperatorID,
		StationID:  s.cfg.StationID,
		Method:     s.method,
		Lines:      make([]domain.CartLine, len(s.lines)),
		Audit:      make([]domain.AuditEvent, len(s.audit)),
		ItemsAdded: s.itemsAdded,
		CreatedAt:  s.now(),
	}
	copy(snap.Lines, s.lines)
	copy(snap.Audit, s.audit)

	s.clearLocked()
	return snap, nil
}

// Resume restores a parked sale onto an idle register. The velocity timer
// restarts from now; parked wall time does not count against the operator.
func (s *SaleSession) Resume(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SaleIdle {
		return ErrSaleInProgress
	}

	s.state = domain.SaleActive
	s.lines = make([]domain.CartLine, len(snap.Lines))
	copy(s.lines, snap.Lines)
	s.audit = make([]domain.AuditEvent, len(snap.Audit))
	copy(s.audit, snap.Audit)
	s.method = snap.Method
	s.itemsAdded = snap.ItemsAdded
	s.startedAt = s.now()
	s.startMetricsLocked()
	s.recomputeIPMLocked()
	return nil
}

// Close stops the metrics goroutine and waits for it to finish.
func (s *SaleSession) Close() {
	s.mu.Lock()
	s.stopMetricsLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *SaleSession) clearLocked() {
	s.state = domain.SaleIdle
	s.lines = nil
	s.audit = nil
	s.startedAt = time.Time{}
	s.itemsAdded = 0
	s.ipm = 0
	s.stopMetricsLocked()
}

func (s *SaleSession) appendAuditLocked(kind domain.AuditKind, detail string, riskWeight int) {
	s.audit = append(s.audit, domain.AuditEvent{
		Kind:       kind,
		Timestamp:  s.now(),
		Detail:     detail,
		RiskWeight: riskWeight,
		OperatorID: s.cfg.OperatorID,
	})
}

func (s *SaleSession) startMetricsLocked() {
	stop := make(chan struct{})
	s.stopMetrics = stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(metricsTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.recomputeIPMLocked()
				s.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (s *SaleSession) stopMetricsLocked() {
	if s.stopMetrics != nil {
		close(s.stopMetrics)
		s.stopMetrics = nil
	}
}

func (s *SaleSession) recomputeIPMLocked() {
	if s.startedAt.IsZero() || s.itemsAdded == 0 {
		s.ipm = 0
		return
	}
	elapsed := s.now().Sub(s.startedAt).Minutes()
	if elapsed < minElapsedMinutes {
		elapsed = minElapsedMinutes
	}
	s.ipm = int(math.Round(float64(s.itemsAdded) / elapsed))
}
