package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

type Product struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string          `json:"title" gorm:"size:255;not null"`
	Author        string          `json:"author" gorm:"size:255"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	Status        ProductStatus   `json:"status" gorm:"type:enum('active','inactive');default:'active';index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}
