package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      uint64          `json:"userId"`
	NetAmount   decimal.Decimal `json:"netAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderPaidEvent struct {
	OrderNumber          string    `json:"orderNumber"`
	PaymentTransactionID string    `json:"paymentTransactionId"`
	PaidAt               time.Time `json:"paidAt"`
}
