package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
	"github.com/siwamsingh/bookstore-backend/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) CreatePending(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		// Reserve stock with a conditional decrement so two concurrent
		// orders cannot both take the last copies.
		for _, item := range items {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrInsufficientStock(item.ProductID)
			}
		}
		order.Items = items
		return nil
	})
}

func (r *orderRepo) MarkPlaced(ctx context.Context, orderID uint64, orderNumber string) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", orderID, domain.StatusPending).
		Updates(map[string]any{"order_number": orderNumber, "status": domain.StatusPlaced})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d is not pending", orderID)
	}
	return nil
}

func (r *orderRepo) MarkFailed(ctx context.Context, orderID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", orderID, domain.StatusPending).
			Update("status", domain.StatusFailed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d is not pending", orderID)
		}
		return restock(tx, orderID)
	})
}

func (r *orderRepo) MarkPaid(ctx context.Context, orderNumber, transactionID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("order_number = ? AND payment_status = ?", orderNumber, domain.PaymentUnpaid).
		Updates(map[string]any{
			"payment_status":         domain.PaymentPaid,
			"payment_transaction_id": transactionID,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("order_number = ?", orderNumber).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64, page, limit int) ([]domain.Order, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var out []domain.Order
	err = r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *orderRepo) FindAll(ctx context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error) {
	count := r.db.WithContext(ctx).Model(&domain.Order{})
	if status != "" {
		count = count.Where("status = ?", status)
	}
	var total int64
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Offset((page - 1) * limit).Limit(limit)
	}
	var out []domain.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID uint64, next domain.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound(fmt.Sprintf("%d", orderID))
			}
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return domain.ErrInvalidRequest("order %d cannot move from %s to %s", orderID, o.Status, next)
		}
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", orderID, o.Status).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidRequest("order %d changed concurrently", orderID)
		}
		if next == domain.StatusCancelled {
			return restock(tx, orderID)
		}
		return nil
	})
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	type row struct {
		Status domain.OrderStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Total
	}
	return out, nil
}

func (r *orderRepo) PaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("payment_status = ?", domain.PaymentPaid).
		Select("COALESCE(SUM(net_amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// restock returns the quantities reserved by an order's line items to the
// product rows.
func restock(tx *gorm.DB, orderID uint64) error {
	var items []domain.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		err := tx.Model(&domain.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
