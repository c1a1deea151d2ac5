package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
)

// OrderRepository persists the order header and its line items. Multi-row
// operations run inside a single database transaction.
type OrderRepository interface {
	// CreatePending inserts the order with its items and reserves stock for
	// every line inside one transaction. A line whose conditional stock
	// decrement matches no row aborts the whole transaction.
	CreatePending(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	// MarkPlaced finalizes a pending order with the gateway order id.
	MarkPlaced(ctx context.Context, orderID uint64, orderNumber string) error
	// MarkFailed flips a pending order to failed and restores the stock it
	// reserved.
	MarkFailed(ctx context.Context, orderID uint64) error
	// MarkPaid performs the one-way unpaid->paid transition as a conditional
	// update and reports how many rows it touched. Zero rows means the order
	// either does not exist or was already paid; callers disambiguate.
	MarkPaid(ctx context.Context, orderNumber, transactionID string) (int64, error)
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64, page, limit int) ([]domain.Order, int64, error)
	// FindAll lists orders for the admin views, optionally filtered by
	// status. limit <= 0 disables pagination.
	FindAll(ctx context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error)
	// UpdateStatus applies an order lifecycle transition. Cancelling restores
	// the stock the order reserved, in the same transaction.
	UpdateStatus(ctx context.Context, orderID uint64, next domain.OrderStatus) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	PaidRevenue(ctx context.Context) (decimal.Decimal, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type CouponRepository interface {
	// FindByCode returns nil with no error when the code is unknown.
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type AddressRepository interface {
	// FindByIDForUser returns nil with no error when the address does not
	// exist or belongs to another user.
	FindByIDForUser(ctx context.Context, id, userID uint64) (*domain.Address, error)
}
