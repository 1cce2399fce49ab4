// Package dispatch maps raw register keystrokes onto sale operations.
// It is the only layer that knows the keyboard shortcut scheme; the
// session itself never sees a key event.
package dispatch

import (
	"context"
	"log"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

// KeyEvent is one keystroke as reported by the register front panel.
type KeyEvent struct {
	Key   string
	Shift bool
	// NumericFieldFocused is set while the operator is typing into an
	// amount field; shortcuts must not fire mid-entry.
	NumericFieldFocused bool
}

// Terminal is the slice of the sale session the dispatcher drives.
type Terminal interface {
	AddItem(product domain.Product) error
	Finalize(ctx context.Context, method domain.PaymentMethod, amountTendered float64) (*domain.Transaction, error)
	Reset() error
	SetPaymentMethod(method domain.PaymentMethod) error
	PaymentMethod() domain.PaymentMethod
	Lines() []domain.CartLine
}

// ProductLookup resolves a 1-based catalog position to a product.
type ProductLookup interface {
	ProductAt(ctx context.Context, position int) (*domain.Product, error)
}

// Dispatcher routes key events to a terminal. Not safe for concurrent
// use; feed it events from a single input loop.
type Dispatcher struct {
	terminal Terminal
	catalog  ProductLookup

	operatorActive bool
	receiptVisible bool
}

func New(terminal Terminal, catalog ProductLookup) *Dispatcher {
	return &Dispatcher{terminal: terminal, catalog: catalog}
}

// SetOperatorActive enables or disables shortcut handling. All keys are
// ignored until an operator signs on.
func (d *Dispatcher) SetOperatorActive(active bool) {
	d.operatorActive = active
	if !active {
		d.receiptVisible = false
	}
}

// ReceiptVisible reports whether a post-sale receipt is being shown.
func (d *Dispatcher) ReceiptVisible() bool {
	return d.receiptVisible
}

// DismissReceipt hides the post-sale receipt, if shown.
func (d *Dispatcher) DismissReceipt() {
	d.receiptVisible = false
}

// Handle processes one key event. It returns true when the event was
// consumed by a shortcut.
func (d *Dispatcher) Handle(ctx context.Context, ev KeyEvent) bool {
	if !d.operatorActive || ev.NumericFieldFocused {
		return false
	}

	switch {
	case len(ev.Key) == 1 && ev.Key[0] >= '1' && ev.Key[0] <= '9' && !ev.Shift:
		d.addByPosition(ctx, int(ev.Key[0]-'0'))
		return true

	case ev.Key == " " && !ev.Shift:
		d.finalize(ctx)
		return true

	case ev.Key == "Escape":
		if d.receiptVisible {
			d.receiptVisible = false
			return true
		}
		if err := d.terminal.Reset(); err != nil {
			log.Printf("dispatch: reset rejected: %v", err)
		}
		return true

	case ev.Shift && (ev.Key == "C" || ev.Key == "c"):
		d.setMethod(domain.PaymentCash)
		return true

	case ev.Shift && (ev.Key == "K" || ev.Key == "k"):
		d.setMethod(domain.PaymentCard)
		return true

	case ev.Shift && (ev.Key == "N" || ev.Key == "n"):
		d.setMethod(domain.PaymentMobile)
		return true
	}

	return false
}

func (d *Dispatcher) addByPosition(ctx context.Context, position int) {
	product, err := d.catalog.ProductAt(ctx, position)
	if err != nil {
		// Digit beyond the catalog is a no-op.
		return
	}
	if err := d.terminal.AddItem(*product); err != nil {
		log.Printf("dispatch: add item rejected: %v", err)
	}
}

func (d *Dispatcher) finalize(ctx context.Context) {
	if len(d.terminal.Lines()) == 0 {
		return
	}
	if _, err := d.terminal.Finalize(ctx, d.terminal.PaymentMethod(), 0); err != nil {
		log.Printf("dispatch: finalize rejected: %v", err)
		return
	}
	d.receiptVisible = true
}

func (d *Dispatcher) setMethod(method domain.PaymentMethod) {
	if err := d.terminal.SetPaymentMethod(method); err != nil {
		log.Printf("dispatch: set payment method rejected: %v", err)
	}
}
