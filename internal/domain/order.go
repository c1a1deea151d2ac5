package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPlaced     OrderStatus = "placed"
	StatusProcessing OrderStatus = "processing"
	StatusCancelled  OrderStatus = "cancelled"
	StatusDelivered  OrderStatus = "delivered"
	StatusFailed     OrderStatus = "failed"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Order is the local order header. OrderNumber holds the payment gateway's
// order id once the remote order exists; until then the row is identified by
// its Receipt, a key reserved before the gateway call is made.
type Order struct {
	ID                   uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber          string          `json:"order_number" gorm:"size:64;index"`
	Receipt              string          `json:"receipt" gorm:"size:64;uniqueIndex;not null"`
	UserID               uint64          `json:"user_id" gorm:"not null;index"`
	GrossAmount          decimal.Decimal `json:"gross_amount" gorm:"type:decimal(10,2);not null"`
	DiscountAmount       decimal.Decimal `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	NetAmount            decimal.Decimal `json:"net_amount" gorm:"type:decimal(10,2);not null"`
	ShippingAmount       decimal.Decimal `json:"shipping_amount" gorm:"type:decimal(10,2);not null"`
	Status               OrderStatus     `json:"status" gorm:"type:enum('pending','placed','processing','cancelled','delivered','failed');default:'pending';index"`
	PaymentStatus        PaymentStatus   `json:"payment_status" gorm:"type:enum('unpaid','paid');default:'unpaid';index"`
	PaymentTransactionID string          `json:"payment_transaction_id" gorm:"size:64"`
	ShippingAddress      string          `json:"shipping_address" gorm:"type:text;not null"`
	Items                []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// OrderItem captures price and quantity at order time. Rows are written once,
// in the same transaction as the header, and never mutated.
type OrderItem struct {
	ID                uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID           uint64          `json:"order_id" gorm:"not null;index"`
	ProductID         uint64          `json:"product_id" gorm:"not null;index"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity          int             `json:"quantity" gorm:"not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ShippingAddressID uint64          `json:"shipping_address_id" gorm:"not null"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// CanTransitionTo reports whether an order status may move to next via the
// update-order endpoint. Payment status has its own one-way lifecycle and is
// not part of these transitions.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPlaced:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next == StatusDelivered || next == StatusCancelled
	default:
		return false
	}
}
