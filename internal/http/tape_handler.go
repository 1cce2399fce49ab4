package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/tape"
)

type TapeHandler struct {
	tape    tape.TransactionTape
	timeout time.Duration
}

func NewTapeHandler(t tape.TransactionTape, timeout time.Duration) *TapeHandler {
	return &TapeHandler{
		tape:    t,
		timeout: timeout,
	}
}

type TransactionsResponse struct {
	Transactions []*domain.Transaction `json:"transactions"`
}

// List returns past transactions, most recent first. The optional limit
// query parameter caps the result; it defaults to the full tape depth.
func (h *TapeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := tape.Depth
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > tape.Depth {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	transactions, err := h.tape.List(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read transaction tape")
		return
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	respondJSON(w, http.StatusOK, TransactionsResponse{Transactions: transactions})
}
