package domain

import (
	"encoding/json"
	"time"
)

type Address struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Phone     string    `json:"phone" gorm:"size:20"`
	Line1     string    `json:"line1" gorm:"size:255;not null"`
	Line2     string    `json:"line2" gorm:"size:255"`
	City      string    `json:"city" gorm:"size:128;not null"`
	State     string    `json:"state" gorm:"size:128;not null"`
	Pincode   string    `json:"pincode" gorm:"size:16;not null"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Snapshot serializes the address for embedding into an order row, so later
// edits or deletion of the saved address do not affect placed orders.
func (a *Address) Snapshot() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
