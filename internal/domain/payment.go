package domain

import "time"

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

// Payment is the durable record of a captured hosted-widget transaction.
type Payment struct {
	ID              string    `json:"id"`
	ExternalOrderID string    `json:"externalOrderId"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	TotalAmount     int64     `json:"totalAmount"`
	OriginalAmount  int64     `json:"originalAmount"`
	DiscountAmount  int64     `json:"discountAmount"`
	ItemsCount      int       `json:"itemsCount"`
	SessionID       string    `json:"sessionId"`
	Status          string    `json:"status"`
	PaymentMethod   string    `json:"paymentMethod"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
