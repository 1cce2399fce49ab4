package session

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to finalize")
	ErrFinalizing         = errors.New("finalize already in progress")
	ErrLineNotFound       = errors.New("line not found in cart")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrInsufficientTender = errors.New("cash tendered is less than the total due")
	ErrSaleInProgress     = errors.New("a sale is already in progress")
	ErrNothingToSuspend   = errors.New("no sale to suspend")
)
