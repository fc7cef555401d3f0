package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a request that can never succeed as sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyCart is returned by checkout paths when the session cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrBusy means another mutation for the same session held the lock past the wait budget.
	ErrBusy = errors.New("session busy")
	// ErrPaymentNotCaptured means the payment gateway did not confirm the order as paid.
	ErrPaymentNotCaptured = errors.New("payment not captured")
	// ErrPaymentsDisabled means no hosted payment gateway is configured.
	ErrPaymentsDisabled = errors.New("payments disabled")
)
