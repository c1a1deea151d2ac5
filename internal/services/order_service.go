package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
	"github.com/siwamsingh/bookstore-backend/internal/infra/rabbitmq"
	"github.com/siwamsingh/bookstore-backend/internal/infra/razorpay"
	"github.com/siwamsingh/bookstore-backend/internal/repository"
	"github.com/siwamsingh/bookstore-backend/pkg/logkey"
)

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	coupons   repository.CouponRepository
	addresses repository.AddressRepository
	gateway   razorpay.ClientInterface
	publisher rabbitmq.PublisherInterface
	currency  string

	redisClient *redis.Client
	now         func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	coupons repository.CouponRepository,
	addresses repository.AddressRepository,
	gateway razorpay.ClientInterface,
	publisher rabbitmq.PublisherInterface,
	currency string,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		coupons:   coupons,
		addresses: addresses,
		gateway:   gateway,
		publisher: publisher,
		currency:  currency,
		now:       time.Now,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

type CreateOrderInput struct {
	Items             []RequestedItem
	ShippingAddressID uint64
	CouponCode        string
}

// CreateOrderResult is what the client needs to start the payment step.
// Amount is in minor currency units as echoed by the gateway.
type CreateOrderResult struct {
	OrderID  string
	Currency string
	Amount   int64
}

// CreateOrder runs the full placement flow: validate, price, persist a
// pending order with reserved stock, create the gateway order, finalize.
// All validation happens before any write; a gateway failure after the local
// insert marks the pending row failed and releases its stock instead of
// leaving it dangling.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint64, in CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	coupon, err := s.resolveCoupon(ctx, in.CouponCode, in.Items, s.now())
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveProducts(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	address, err := s.resolveAddress(ctx, in.ShippingAddressID, userID)
	if err != nil {
		return nil, err
	}

	breakdown := PriceOrder(lines, coupon)

	snapshot, err := address.Snapshot()
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Receipt:         uuid.NewString(),
		UserID:          userID,
		GrossAmount:     breakdown.GrossAmount,
		DiscountAmount:  breakdown.DiscountAmount,
		NetAmount:       breakdown.NetAmount,
		ShippingAmount:  decimal.Zero,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentUnpaid,
		ShippingAddress: snapshot,
	}
	items := make([]domain.OrderItem, 0, len(breakdown.Lines))
	for _, line := range breakdown.Lines {
		items = append(items, domain.OrderItem{
			ProductID:         line.ProductID,
			Price:             line.Price,
			Quantity:          line.Quantity,
			TotalAmount:       line.TotalAmount,
			ShippingAddressID: address.ID,
		})
	}

	if err := s.orders.CreatePending(ctx, order, items); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		slog.Error("failed to persist pending order", slog.String(logkey.Error, err.Error()))
		return nil, domain.ErrPersistence()
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, breakdown.NetAmount, s.currency, order.Receipt)
	if err != nil {
		slog.Error("payment gateway order creation failed",
			slog.Uint64(logkey.OrderID, order.ID), slog.String(logkey.Error, err.Error()))
		if failErr := s.orders.MarkFailed(ctx, order.ID); failErr != nil {
			slog.Error("failed to mark order failed after gateway error",
				slog.Uint64(logkey.OrderID, order.ID), slog.String(logkey.Error, failErr.Error()))
		}
		return nil, domain.ErrPaymentGateway()
	}

	if err := s.orders.MarkPlaced(ctx, order.ID, gatewayOrder.ID); err != nil {
		slog.Error("failed to finalize order after gateway order creation",
			slog.Uint64(logkey.OrderID, order.ID),
			slog.String(logkey.OrderNumber, gatewayOrder.ID),
			slog.String(logkey.Error, err.Error()))
		return nil, domain.ErrPersistence()
	}
	order.OrderNumber = gatewayOrder.ID
	order.Status = domain.StatusPlaced

	go s.publishOrderCreated(context.Background(), order)
	s.invalidateUserOrdersCache(ctx, userID)

	return &CreateOrderResult{
		OrderID:  gatewayOrder.ID,
		Currency: gatewayOrder.Currency,
		Amount:   gatewayOrder.Amount,
	}, nil
}

// webhookPayload mirrors the shape of the provider's payment webhook body.
type webhookPayload struct {
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ConfirmPayment handles a payment webhook delivery. The signature is checked
// before anything else touches the database. The unpaid->paid transition is a
// single conditional update, so a replayed delivery cannot flip the order
// twice or overwrite the stored transaction id.
func (s *OrderService) ConfirmPayment(ctx context.Context, rawPayload []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(rawPayload, signature) {
		return domain.ErrInvalidSignature()
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return domain.ErrInvalidRequest("malformed webhook payload")
	}
	paymentID := payload.Payload.Payment.Entity.ID
	orderNumber := payload.Payload.Payment.Entity.OrderID
	if paymentID == "" || orderNumber == "" {
		return domain.ErrInvalidRequest("webhook payload missing payment or order id")
	}

	rows, err := s.orders.MarkPaid(ctx, orderNumber, paymentID)
	if err != nil {
		slog.Error("failed to update payment status",
			slog.String(logkey.OrderNumber, orderNumber), slog.String(logkey.Error, err.Error()))
		return domain.ErrPersistence()
	}

	if rows == 0 {
		order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return domain.ErrPersistence()
		}
		if order == nil {
			return domain.ErrOrderNotFound(orderNumber)
		}
		return domain.ErrAlreadyPaid(orderNumber)
	}

	slog.Info("order payment confirmed",
		slog.String(logkey.OrderNumber, orderNumber))

	go s.publishOrderPaid(context.Background(), orderNumber, paymentID)
	if s.redisClient != nil {
		if order, err := s.orders.FindByOrderNumber(ctx, orderNumber); err == nil && order != nil {
			s.invalidateUserOrdersCache(ctx, order.UserID)
		}
	}
	return nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uint64, page, limit int) ([]domain.Order, int64, error) {
	return s.orders.FindByUser(ctx, userID, page, limit)
}

func (s *OrderService) ListOrders(ctx context.Context, status domain.OrderStatus, page, limit int) ([]domain.Order, int64, error) {
	if status != "" {
		switch status {
		case domain.StatusPending, domain.StatusPlaced, domain.StatusProcessing,
			domain.StatusCancelled, domain.StatusDelivered, domain.StatusFailed:
		default:
			return nil, 0, domain.ErrInvalidRequest("unknown order status %q", status)
		}
	}
	return s.orders.FindAll(ctx, status, page, limit)
}

// OrderStats aggregates order counts per status with total paid revenue.
type OrderStats struct {
	Counts      map[domain.OrderStatus]int64 `json:"counts"`
	PaidRevenue decimal.Decimal              `json:"paid_revenue"`
}

func (s *OrderService) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	stats := &OrderStats{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.orders.CountByStatus(ctx)
		if err != nil {
			return err
		}
		stats.Counts = counts
		return nil
	})
	g.Go(func() error {
		revenue, err := s.orders.PaidRevenue(ctx)
		if err != nil {
			return err
		}
		stats.PaidRevenue = revenue
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint64, next domain.OrderStatus) error {
	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return domainErr
		}
		slog.Error("failed to update order status",
			slog.Uint64(logkey.OrderID, orderID), slog.String(logkey.Error, err.Error()))
		return domain.ErrPersistence()
	}
	if s.redisClient != nil {
		if order, err := s.orders.FindByID(ctx, orderID); err == nil && order != nil {
			s.invalidateUserOrdersCache(ctx, order.UserID)
		}
	}
	return nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		NetAmount:   order.NetAmount,
		CreatedAt:   order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		slog.Error("failed to publish order.created",
			slog.Uint64(logkey.OrderID, order.ID), slog.String(logkey.Error, err.Error()))
	}
}

func (s *OrderService) publishOrderPaid(ctx context.Context, orderNumber, transactionID string) {
	evt := domain.OrderPaidEvent{
		OrderNumber:          orderNumber,
		PaymentTransactionID: transactionID,
		PaidAt:               s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, "order.paid", evt); err != nil {
		slog.Error("failed to publish order.paid",
			slog.String(logkey.OrderNumber, orderNumber), slog.String(logkey.Error, err.Error()))
	}
}

// UserOrdersCacheKey is the cache key for a user's first page of orders.
func UserOrdersCacheKey(userID uint64) string {
	return fmt.Sprintf("orders:user:%d", userID)
}

func (s *OrderService) invalidateUserOrdersCache(ctx context.Context, userID uint64) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, UserOrdersCacheKey(userID))
}
