package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponStatus string

const (
	CouponActive   CouponStatus = "active"
	CouponInactive CouponStatus = "inactive"
)

// Coupon is a percentage discount bound to exactly one product, valid within
// [StartDate, EndDate).
type Coupon struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Code          string          `json:"code" gorm:"size:64;uniqueIndex;not null"`
	ProductID     uint64          `json:"product_id" gorm:"not null;index"`
	DiscountValue decimal.Decimal `json:"discount_value" gorm:"type:decimal(5,2);not null"`
	StartDate     time.Time       `json:"start_date" gorm:"not null"`
	EndDate       time.Time       `json:"end_date" gorm:"not null"`
	Status        CouponStatus    `json:"status" gorm:"type:enum('active','inactive');default:'active'"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// ValidAt reports whether the coupon can be redeemed at t.
func (c *Coupon) ValidAt(t time.Time) bool {
	if c.Status != CouponActive {
		return false
	}
	return !t.Before(c.StartDate) && t.Before(c.EndDate)
}
