package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
)

func testProduct(id uint64, price string, stock int) domain.Product {
	return domain.Product{
		ID:            id,
		Title:         "Test Book",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Status:        domain.ProductActive,
	}
}

func testCoupon(code string, productID uint64, percent string, start, end time.Time) *domain.Coupon {
	return &domain.Coupon{
		ID:            1,
		Code:          code,
		ProductID:     productID,
		DiscountValue: decimal.RequireFromString(percent),
		StartDate:     start,
		EndDate:       end,
		Status:        domain.CouponActive,
	}
}

func testAddress(id, userID uint64) *domain.Address {
	return &domain.Address{
		ID:      id,
		UserID:  userID,
		Name:    "Test User",
		Line1:   "12 Test Lane",
		City:    "Pune",
		State:   "MH",
		Pincode: "411001",
	}
}

const (
	testUserID    = uint64(42)
	testAddressID = uint64(7)
	testCurrency  = "INR"
)
