package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/catalog"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/payment"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/session"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/suspend"
	"github.com/go-chi/chi/v5"
)

// SaleTerminal is the slice of the sale session the HTTP layer drives.
type SaleTerminal interface {
	AddItem(product domain.Product) error
	RemoveItem(productID int64) error
	SetPaymentMethod(method domain.PaymentMethod) error
	Finalize(ctx context.Context, method domain.PaymentMethod, amountTendered float64) (*domain.Transaction, error)
	Reset() error
	Suspend() (*session.Snapshot, error)
	Resume(snap *session.Snapshot) error
	RecordEvent(kind domain.AuditKind, detail string, riskWeight int)
	State() domain.SaleState
	Lines() []domain.CartLine
	Totals() domain.Totals
	PaymentMethod() domain.PaymentMethod
	Metrics() domain.SessionMetrics
	AuditTrail() []domain.AuditEvent
}

type SaleHandler struct {
	terminal SaleTerminal
	catalog  CatalogService
	parked   suspend.Store // nil when no park store is configured
	timeout  time.Duration
}

func NewSaleHandler(terminal SaleTerminal, catalog CatalogService, parked suspend.Store, timeout time.Duration) *SaleHandler {
	return &SaleHandler{
		terminal: terminal,
		catalog:  catalog,
		parked:   parked,
		timeout:  timeout,
	}
}

type SaleResponse struct {
	State         domain.SaleState      `json:"state"`
	Lines         []domain.CartLine     `json:"lines"`
	Totals        domain.Totals         `json:"totals"`
	PaymentMethod domain.PaymentMethod  `json:"payment_method"`
	Metrics       domain.SessionMetrics `json:"metrics"`
	AuditTrail    []domain.AuditEvent   `json:"audit_trail"`
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
}

type SetPaymentRequestDTO struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

type FinalizeRequestDTO struct {
	PaymentMethod  domain.PaymentMethod `json:"payment_method"`
	AmountTendered float64              `json:"amount_tendered"`
}

func (h *SaleHandler) saleView() SaleResponse {
	lines := h.terminal.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	audit := h.terminal.AuditTrail()
	if audit == nil {
		audit = []domain.AuditEvent{}
	}
	return SaleResponse{
		State:         h.terminal.State(),
		Lines:         lines,
		Totals:        h.terminal.Totals(),
		PaymentMethod: h.terminal.PaymentMethod(),
		Metrics:       h.terminal.Metrics(),
		AuditTrail:    audit,
	}
}

func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.saleView())
}

func (h *SaleHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 && req.SKU == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id or sku is required")
		return
	}

	var (
		product *domain.Product
		err     error
	)
	if req.ProductID > 0 {
		product, err = h.catalog.GetProduct(ctx, req.ProductID)
	} else {
		product, err = h.catalog.GetProductBySKU(ctx, req.SKU)
	}
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up product")
		return
	}

	if err := h.terminal.AddItem(*product); err != nil {
		if errors.Is(err, session.ErrFinalizing) {
			respondError(w, http.StatusConflict, "finalizing", "sale is being finalized")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, h.saleView())
}

func (h *SaleHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.terminal.RemoveItem(productID); err != nil {
		switch {
		case errors.Is(err, session.ErrLineNotFound):
			respondError(w, http.StatusNotFound, "not_found", "item is not in the cart")
		case errors.Is(err, session.ErrFinalizing):
			respondError(w, http.StatusConflict, "finalizing", "sale is being finalized")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		}
		return
	}

	respondJSON(w, http.StatusOK, h.saleView())
}

func (h *SaleHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req SetPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.terminal.SetPaymentMethod(req.PaymentMethod); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidPayment):
			respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment method must be CASH, CARD or MOBILE")
		case errors.Is(err, session.ErrFinalizing):
			respondError(w, http.StatusConflict, "finalizing", "sale is being finalized")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to set payment method")
		}
		return
	}

	respondJSON(w, http.StatusOK, h.saleView())
}

func (h *SaleHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req FinalizeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method := req.PaymentMethod
	if method == "" {
		method = h.terminal.PaymentMethod()
	}

	tx, err := h.terminal.Finalize(ctx, method, req.AmountTendered)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", "cannot finalize an empty cart")
		case errors.Is(err, session.ErrFinalizing):
			respondError(w, http.StatusConflict, "finalizing", "sale is already being finalized")
		case errors.Is(err, session.ErrInvalidPayment):
			respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment method must be CASH, CARD or MOBILE")
		case errors.Is(err, session.ErrInsufficientTender):
			respondError(w, http.StatusUnprocessableEntity, "insufficient_tender", "cash tendered is less than the total")
		case errors.Is(err, payment.ErrDeclined):
			respondError(w, http.StatusBadGateway, "payment_declined", "payment was declined")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to finalize sale")
		}
		return
	}

	respondJSON(w, http.StatusOK, tx)
}

func (h *SaleHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.terminal.Reset(); err != nil {
		if errors.Is(err, session.ErrFinalizing) {
			respondError(w, http.StatusConflict, "finalizing", "sale is being finalized")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reset sale")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SaleHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	if h.parked == nil {
		respondError(w, http.StatusServiceUnavailable, "suspend_unavailable", "no park store is configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.terminal.Suspend()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNothingToSuspend):
			respondError(w, http.StatusConflict, "empty_cart", "there is no sale to suspend")
		case errors.Is(err, session.ErrFinalizing):
			respondError(w, http.StatusConflict, "finalizing", "sale is being finalized")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to suspend sale")
		}
		return
	}

	id, err := h.parked.Park(ctx, snap)
	if err != nil {
		// Put the sale back on the register rather than lose it.
		if resumeErr := h.terminal.Resume(snap); resumeErr != nil {
			log.Printf("failed to restore sale after park error: %v", resumeErr)
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to park sale")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *SaleHandler) ResumeParked(w http.ResponseWriter, r *http.Request) {
	if h.parked == nil {
		respondError(w, http.StatusServiceUnavailable, "suspend_unavailable", "no park store is configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	snap, err := h.parked.Resume(ctx, id)
	if err != nil {
		if errors.Is(err, suspend.ErrParkedSaleNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "parked sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load parked sale")
		return
	}

	if err := h.terminal.Resume(snap); err != nil {
		// The snapshot was already removed from the store; park it again
		// so it is not lost.
		if _, parkErr := h.parked.Park(ctx, snap); parkErr != nil {
			log.Printf("failed to re-park sale %s: %v", snap.ID, parkErr)
		}
		if errors.Is(err, session.ErrSaleInProgress) {
			respondError(w, http.StatusConflict, "sale_in_progress", "finish or suspend the current sale first")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to resume sale")
		return
	}

	respondJSON(w, http.StatusOK, h.saleView())
}

func (h *SaleHandler) ListParked(w http.ResponseWriter, r *http.Request) {
	if h.parked == nil {
		respondError(w, http.StatusServiceUnavailable, "suspend_unavailable", "no park store is configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snaps, err := h.parked.List(ctx, r.URL.Query().Get("station_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list parked sales")
		return
	}
	if snaps == nil {
		snaps = []*session.Snapshot{}
	}

	respondJSON(w, http.StatusOK, map[string][]*session.Snapshot{"parked_sales": snaps})
}

func (h *SaleHandler) OpenDrawer(w http.ResponseWriter, r *http.Request) {
	detail := "No-sale drawer open"
	if operatorID := getOperatorID(r.Context()); operatorID != "" {
		detail = "No-sale drawer open by " + operatorID
	}
	h.terminal.RecordEvent(domain.AuditDrawerOpen, detail, domain.RiskWeightDrawerOpen)
	w.WriteHeader(http.StatusNoContent)
}
