package services

import (
	"context"
	"time"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
)

const (
	maxOrderItems   = 5
	maxItemQuantity = 5
)

// RequestedItem is one product/quantity pair from a create-order request.
type RequestedItem struct {
	ProductID uint64
	Quantity  int
}

// LineItem is a requested item joined with its product row. The product's
// price and stock are snapshotted here for pricing and reservation.
type LineItem struct {
	Product  domain.Product
	Quantity int
}

// validateItems checks the request shape before any database read: item
// count bounds, unique product ids, per-item quantity bounds.
func validateItems(items []RequestedItem) error {
	if len(items) == 0 || len(items) > maxOrderItems {
		return domain.ErrInvalidRequest("order must contain between 1 and %d items", maxOrderItems)
	}
	seen := make(map[uint64]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			return domain.ErrInvalidRequest("duplicate product %d in order items", item.ProductID)
		}
		seen[item.ProductID] = true
	}
	for _, item := range items {
		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			return domain.ErrInvalidRequest("quantity for product %d must be between 1 and %d", item.ProductID, maxItemQuantity)
		}
	}
	return nil
}

// resolveCoupon loads and validates the coupon, including that its bound
// product is among the requested items. Returns nil when no code was given.
func (s *OrderService) resolveCoupon(ctx context.Context, code string, items []RequestedItem, now time.Time) (*domain.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil || !coupon.ValidAt(now) {
		return nil, domain.ErrInvalidCoupon(code)
	}
	for _, item := range items {
		if item.ProductID == coupon.ProductID {
			return coupon, nil
		}
	}
	return nil, domain.ErrCouponNotApplicable(code, coupon.ProductID)
}

// resolveProducts loads the requested products and checks availability and
// stock. Missing and inactive products are reported together in one error.
func (s *OrderService) resolveProducts(ctx context.Context, items []RequestedItem) ([]LineItem, error) {
	ids := make([]uint64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var unavailable []uint64
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || p.Status != domain.ProductActive {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return nil, domain.ErrProductUnavailable(unavailable)
	}

	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		p := byID[item.ProductID]
		if p.StockQuantity <= 0 {
			return nil, domain.ErrOutOfStock(item.ProductID)
		}
		if p.StockQuantity < item.Quantity {
			return nil, domain.ErrInsufficientStock(item.ProductID)
		}
		lines = append(lines, LineItem{Product: p, Quantity: item.Quantity})
	}
	return lines, nil
}

// resolveAddress enforces that the shipping address belongs to the caller.
func (s *OrderService) resolveAddress(ctx context.Context, addressID, userID uint64) (*domain.Address, error) {
	address, err := s.addresses.FindByIDForUser(ctx, addressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, domain.ErrAddressNotFound(addressID)
	}
	return address, nil
}
