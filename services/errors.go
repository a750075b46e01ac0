package services

import "errors"

var (
	ErrInvalidQRFormat    = errors.New("invalid QR code format")
	ErrTableNotFound      = errors.New("table not found")
	ErrSessionStartFailed = errors.New("failed to start table session")
	ErrSessionEndFailed   = errors.New("failed to end table session")
	ErrSessionNotActive   = errors.New("table session is not active")
	ErrSessionNotFound    = errors.New("table session not found")
	ErrNoActiveSession    = errors.New("no active table session")
	ErrScanInProgress     = errors.New("a table scan is already in progress")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")

	ErrNotAuthenticated        = errors.New("sign in to place an order")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderPersistFailed      = errors.New("failed to save order")

	ErrPaymentDeclined = errors.New("payment declined")
	ErrStoreFailure    = errors.New("store unavailable")
)
