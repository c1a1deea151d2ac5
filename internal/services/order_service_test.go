package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
	"github.com/siwamsingh/bookstore-backend/internal/infra/razorpay"
	"github.com/siwamsingh/bookstore-backend/internal/mocks"
)

type serviceMocks struct {
	orders    *mocks.MockOrderRepository
	products  *mocks.MockProductRepository
	coupons   *mocks.MockCouponRepository
	addresses *mocks.MockAddressRepository
	gateway   *mocks.MockGateway
	publisher *mocks.MockPublisher
}

func newServiceWithMocks() (*OrderService, *serviceMocks) {
	m := &serviceMocks{
		orders:    new(mocks.MockOrderRepository),
		products:  new(mocks.MockProductRepository),
		coupons:   new(mocks.MockCouponRepository),
		addresses: new(mocks.MockAddressRepository),
		gateway:   new(mocks.MockGateway),
		publisher: new(mocks.MockPublisher),
	}
	s := NewOrderService(m.orders, m.products, m.coupons, m.addresses, m.gateway, m.publisher, testCurrency)
	return s, m
}

func assertDomainError(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *domain.Error
	assert.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateOrder_Success(t *testing.T) {
	s, m := newServiceWithMocks()

	m.addresses.On("FindByIDForUser", mock.Anything, testAddressID, testUserID).
		Return(testAddress(testAddressID, testUserID), nil)
	m.products.On("FindByIDs", mock.Anything, []uint64{5}).
		Return([]domain.Product{testProduct(5, "100.00", 10)}, nil)
	var pendingOrder domain.Order
	var items []domain.OrderItem
	m.orders.On("CreatePending", mock.Anything, mock.AnythingOfType("*domain.Order"), mock.AnythingOfType("[]domain.OrderItem")).
		Return(nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*domain.Order)
			order.ID = 11
			pendingOrder = *order
			items = args.Get(2).([]domain.OrderItem)
		})
	m.gateway.On("CreateOrder", mock.Anything, mock.Anything, testCurrency, mock.AnythingOfType("string")).
		Return(&razorpay.GatewayOrder{ID: "order_test123", Amount: 20000, Currency: testCurrency}, nil)
	m.orders.On("MarkPlaced", mock.Anything, uint64(11), "order_test123").Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

	result, err := s.CreateOrder(context.Background(), testUserID, CreateOrderInput{
		Items:             []RequestedItem{{ProductID: 5, Quantity: 2}},
		ShippingAddressID: testAddressID,
	})

	assert.NoError(t, err)
	assert.Equal(t, "order_test123", result.OrderID)
	assert.Equal(t, testCurrency, result.Currency)
	assert.Equal(t, int64(20000), result.Amount)

	// The pending order carries discount-applied totals and a snapshot.
	assert.True(t, decimal.RequireFromString("200.00").Equal(pendingOrder.GrossAmount))
	assert.True(t, pendingOrder.DiscountAmount.IsZero())
	assert.True(t, decimal.RequireFromString("200.00").Equal(pendingOrder.NetAmount))
	assert.Equal(t, domain.StatusPending, pendingOrder.Status)
	assert.Equal(t, domain.PaymentUnpaid, pendingOrder.PaymentStatus)
	assert.NotEmpty(t, pendingOrder.Receipt)
	assert.Contains(t, pendingOrder.ShippingAddress, "Pune")

	assert.Len(t, items, 1)
	assert.Equal(t, uint64(5), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("100.00").Equal(items[0].Price))
	assert.True(t, decimal.RequireFromString("200.00").Equal(items[0].TotalAmount))
	assert.Equal(t, testAddressID, items[0].ShippingAddressID)

	// Gateway amount is the decimal net total; conversion to minor units
	// happens inside the adapter.
	gatewayAmount := m.gateway.Calls[0].Arguments.Get(1).(decimal.Decimal)
	assert.True(t, decimal.RequireFromString("200.00").Equal(gatewayAmount))

	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
}

func TestCreateOrder_CouponApplied(t *testing.T) {
	s, m := newServiceWithMocks()
	now := time.Now()

	m.coupons.On("FindByCode", mock.Anything, "TEN").
		Return(testCoupon("TEN", 9, "10", now.Add(-time.Hour), now.Add(time.Hour)), nil)
	m.addresses.On("FindByIDForUser", mock.Anything, testAddressID, testUserID).
		Return(testAddress(testAddressID, testUserID), nil)
	m.products.On("FindByIDs", mock.Anything, []uint64{9}).
		Return([]domain.Product{testProduct(9, "199.99", 5)}, nil)
	m.orders.On("CreatePending", mock.Anything, mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 12
		})
	m.gateway.On("CreateOrder", mock.Anything, mock.Anything, testCurrency, mock.Anything).
		Return(&razorpay.GatewayOrder{ID: "order_coupon", Amount: 35998, Currency: testCurrency}, nil)
	m.orders.On("MarkPlaced", mock.Anything, uint64(12), "order_coupon").Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

	result, err := s.CreateOrder(context.Background(), testUserID, CreateOrderInput{
		Items:             []RequestedItem{{ProductID: 9, Quantity: 2}},
		ShippingAddressID: testAddressID,
		CouponCode:        "TEN",
	})

	assert.NoError(t, err)
	assert.Equal(t, "order_coupon", result.OrderID)

	pendingOrder := m.orders.Calls[0].Arguments.Get(1).(*domain.Order)
	assert.True(t, decimal.RequireFromString("40.00").Equal(pendingOrder.DiscountAmount),
		"discount = %s", pendingOrder.DiscountAmount)
	assert.True(t, decimal.RequireFromString("359.98").Equal(pendingOrder.NetAmount),
		"net = %s", pendingOrder.NetAmount)

	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
}

func TestCreateOrder_ValidationFailures(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		input        CreateOrderInput
		setupMocks   func(*serviceMocks)
		expectedCode string
		wantMessage  string
	}{
		{
			name: "empty item list",
			input: CreateOrderInput{
				ShippingAddressID: testAddressID,
			},
			expectedCode: domain.CodeInvalidRequest,
		},
		{
			name: "too many items",
			input: CreateOrderInput{
				Items: []RequestedItem{
					{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1},
					{ProductID: 3, Quantity: 1}, {ProductID: 4, Quantity: 1},
					{ProductID: 5, Quantity: 1}, {ProductID: 6, Quantity: 1},
				},
				ShippingAddressID: testAddressID,
			},
			expectedCode: domain.CodeInvalidRequest,
		},
		{
			name: "duplicate product id",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 7, Quantity: 1}, {ProductID: 7, Quantity: 2}},
				ShippingAddressID: testAddressID,
			},
			expectedCode: domain.CodeInvalidRequest,
			wantMessage:  "7",
		},
		{
			name: "quantity above limit",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 3, Quantity: 6}},
				ShippingAddressID: testAddressID,
			},
			expectedCode: domain.CodeInvalidRequest,
			wantMessage:  "product 3",
		},
		{
			name: "quantity below limit",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 3, Quantity: 0}},
				ShippingAddressID: testAddressID,
			},
			expectedCode: domain.CodeInvalidRequest,
		},
		{
			name: "unknown coupon",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 1, Quantity: 1}},
				ShippingAddressID: testAddressID,
				CouponCode:        "NOPE",
			},
			setupMocks: func(m *serviceMocks) {
				m.coupons.On("FindByCode", mock.Anything, "NOPE").Return(nil, nil)
			},
			expectedCode: domain.CodeInvalidCoupon,
		},
		{
			name: "expired coupon still marked active",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 1, Quantity: 1}},
				ShippingAddressID: testAddressID,
				CouponCode:        "OLD",
			},
			setupMocks: func(m *serviceMocks) {
				m.coupons.On("FindByCode", mock.Anything, "OLD").
					Return(testCoupon("OLD", 1, "10", now.Add(-48*time.Hour), now.Add(-24*time.Hour)), nil)
			},
			expectedCode: domain.CodeInvalidCoupon,
		},
		{
			name: "coupon bound to product not in order",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 1, Quantity: 1}},
				ShippingAddressID: testAddressID,
				CouponCode:        "OTHER",
			},
			setupMocks: func(m *serviceMocks) {
				m.coupons.On("FindByCode", mock.Anything, "OTHER").
					Return(testCoupon("OTHER", 99, "10", now.Add(-time.Hour), now.Add(time.Hour)), nil)
			},
			expectedCode: domain.CodeCouponNotApplicable,
			wantMessage:  "99",
		},
		{
			name: "missing and inactive products reported together",
			input: CreateOrderInput{
				Items: []RequestedItem{
					{ProductID: 1, Quantity: 1},
					{ProductID: 2, Quantity: 1},
					{ProductID: 3, Quantity: 1},
				},
				ShippingAddressID: testAddressID,
			},
			setupMocks: func(m *serviceMocks) {
				inactive := testProduct(2, "10.00", 5)
				inactive.Status = domain.ProductInactive
				m.products.On("FindByIDs", mock.Anything, []uint64{1, 2, 3}).
					Return([]domain.Product{testProduct(1, "10.00", 5), inactive}, nil)
			},
			expectedCode: domain.CodeProductUnavailable,
			wantMessage:  "2, 3",
		},
		{
			name: "product out of stock",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 4, Quantity: 1}},
				ShippingAddressID: testAddressID,
			},
			setupMocks: func(m *serviceMocks) {
				m.products.On("FindByIDs", mock.Anything, []uint64{4}).
					Return([]domain.Product{testProduct(4, "10.00", 0)}, nil)
			},
			expectedCode: domain.CodeOutOfStock,
			wantMessage:  "4",
		},
		{
			name: "insufficient stock",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 4, Quantity: 3}},
				ShippingAddressID: testAddressID,
			},
			setupMocks: func(m *serviceMocks) {
				m.products.On("FindByIDs", mock.Anything, []uint64{4}).
					Return([]domain.Product{testProduct(4, "10.00", 2)}, nil)
			},
			expectedCode: domain.CodeInsufficientStock,
			wantMessage:  "4",
		},
		{
			name: "address belongs to another user",
			input: CreateOrderInput{
				Items:             []RequestedItem{{ProductID: 1, Quantity: 1}},
				ShippingAddressID: testAddressID,
			},
			setupMocks: func(m *serviceMocks) {
				m.products.On("FindByIDs", mock.Anything, []uint64{1}).
					Return([]domain.Product{testProduct(1, "10.00", 5)}, nil)
				m.addresses.On("FindByIDForUser", mock.Anything, testAddressID, testUserID).
					Return(nil, nil)
			},
			expectedCode: domain.CodeAddressNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newServiceWithMocks()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			result, err := s.CreateOrder(context.Background(), testUserID, tt.input)

			assert.Nil(t, result)
			assertDomainError(t, err, tt.expectedCode)
			if tt.wantMessage != "" {
				assert.Contains(t, err.Error(), tt.wantMessage)
			}

			// Validation failures must happen before any write or gateway
			// call.
			m.orders.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything, mock.Anything)
			m.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrder_GatewayFailureMarksOrderFailed(t *testing.T) {
	s, m := newServiceWithMocks()

	m.addresses.On("FindByIDForUser", mock.Anything, testAddressID, testUserID).
		Return(testAddress(testAddressID, testUserID), nil)
	m.products.On("FindByIDs", mock.Anything, []uint64{5}).
		Return([]domain.Product{testProduct(5, "100.00", 10)}, nil)
	m.orders.On("CreatePending", mock.Anything, mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 21
		})
	m.gateway.On("CreateOrder", mock.Anything, mock.Anything, testCurrency, mock.Anything).
		Return(nil, errors.New("gateway unreachable"))
	m.orders.On("MarkFailed", mock.Anything, uint64(21)).Return(nil)

	result, err := s.CreateOrder(context.Background(), testUserID, CreateOrderInput{
		Items:             []RequestedItem{{ProductID: 5, Quantity: 1}},
		ShippingAddressID: testAddressID,
	})

	assert.Nil(t, result)
	assertDomainError(t, err, domain.CodePaymentGateway)
	m.orders.AssertCalled(t, "MarkFailed", mock.Anything, uint64(21))
	m.orders.AssertNotCalled(t, "MarkPlaced", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_PersistenceFailure(t *testing.T) {
	s, m := newServiceWithMocks()

	m.addresses.On("FindByIDForUser", mock.Anything, testAddressID, testUserID).
		Return(testAddress(testAddressID, testUserID), nil)
	m.products.On("FindByIDs", mock.Anything, []uint64{5}).
		Return([]domain.Product{testProduct(5, "100.00", 10)}, nil)
	m.orders.On("CreatePending", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	result, err := s.CreateOrder(context.Background(), testUserID, CreateOrderInput{
		Items:             []RequestedItem{{ProductID: 5, Quantity: 1}},
		ShippingAddressID: testAddressID,
	})

	assert.Nil(t, result)
	assertDomainError(t, err, domain.CodePersistence)
	m.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_ReservationRaceSurfacesInsufficientStock(t *testing.T) {
	s, m := newServiceWithMocks()

	m.addresses.On("FindByIDForUser", mock.Anything, testAddressID, testUserID).
		Return(testAddress(testAddressID, testUserID), nil)
	m.products.On("FindByIDs", mock.Anything, []uint64{5}).
		Return([]domain.Product{testProduct(5, "100.00", 1)}, nil)
	// Another order took the last copy between the read and the reserve.
	m.orders.On("CreatePending", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrInsufficientStock(5))

	result, err := s.CreateOrder(context.Background(), testUserID, CreateOrderInput{
		Items:             []RequestedItem{{ProductID: 5, Quantity: 1}},
		ShippingAddressID: testAddressID,
	})

	assert.Nil(t, result)
	assertDomainError(t, err, domain.CodeInsufficientStock)
}

const validWebhookBody = `{"payload":{"payment":{"entity":{"id":"pay_123","order_id":"order_test123"}}}}`

func TestConfirmPayment_FirstDeliveryTransitions(t *testing.T) {
	s, m := newServiceWithMocks()

	m.gateway.On("VerifyWebhookSignature", []byte(validWebhookBody), "sig").Return(true)
	m.orders.On("MarkPaid", mock.Anything, "order_test123", "pay_123").Return(int64(1), nil)
	m.publisher.On("Publish", mock.Anything, "order.paid", mock.Anything).Return(nil).Maybe()

	err := s.ConfirmPayment(context.Background(), []byte(validWebhookBody), "sig")

	assert.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
}

func TestConfirmPayment_ReplayReturnsAlreadyPaid(t *testing.T) {
	s, m := newServiceWithMocks()

	paid := &domain.Order{
		ID:                   11,
		OrderNumber:          "order_test123",
		PaymentStatus:        domain.PaymentPaid,
		PaymentTransactionID: "pay_123",
	}

	m.gateway.On("VerifyWebhookSignature", []byte(validWebhookBody), "sig").Return(true)
	m.orders.On("MarkPaid", mock.Anything, "order_test123", "pay_123").Return(int64(0), nil)
	m.orders.On("FindByOrderNumber", mock.Anything, "order_test123").Return(paid, nil)

	err := s.ConfirmPayment(context.Background(), []byte(validWebhookBody), "sig")

	assertDomainError(t, err, domain.CodeAlreadyPaid)
	// Replay must not touch the stored transaction id.
	assert.Equal(t, "pay_123", paid.PaymentTransactionID)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything, "order.paid", mock.Anything)
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	s, m := newServiceWithMocks()

	m.gateway.On("VerifyWebhookSignature", []byte(validWebhookBody), "sig").Return(true)
	m.orders.On("MarkPaid", mock.Anything, "order_test123", "pay_123").Return(int64(0), nil)
	m.orders.On("FindByOrderNumber", mock.Anything, "order_test123").Return(nil, nil)

	err := s.ConfirmPayment(context.Background(), []byte(validWebhookBody), "sig")

	assertDomainError(t, err, domain.CodeOrderNotFound)
}

func TestConfirmPayment_BadSignatureRejectedBeforeLookup(t *testing.T) {
	s, m := newServiceWithMocks()

	m.gateway.On("VerifyWebhookSignature", []byte(validWebhookBody), "forged").Return(false)

	err := s.ConfirmPayment(context.Background(), []byte(validWebhookBody), "forged")

	assertDomainError(t, err, domain.CodeInvalidSignature)
	m.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "FindByOrderNumber", mock.Anything, mock.Anything)
}

func TestConfirmPayment_MalformedPayload(t *testing.T) {
	s, m := newServiceWithMocks()

	body := []byte(`{"payload":{}}`)
	m.gateway.On("VerifyWebhookSignature", body, "sig").Return(true)

	err := s.ConfirmPayment(context.Background(), body, "sig")

	assertDomainError(t, err, domain.CodeInvalidRequest)
	m.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrderStats(t *testing.T) {
	s, m := newServiceWithMocks()

	m.orders.On("CountByStatus", mock.Anything).Return(map[domain.OrderStatus]int64{
		domain.StatusPlaced:    3,
		domain.StatusDelivered: 7,
	}, nil)
	m.orders.On("PaidRevenue", mock.Anything).Return(decimal.RequireFromString("1234.56"), nil)

	stats, err := s.GetOrderStats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.Counts[domain.StatusPlaced])
	assert.Equal(t, int64(7), stats.Counts[domain.StatusDelivered])
	assert.True(t, decimal.RequireFromString("1234.56").Equal(stats.PaidRevenue))
	m.orders.AssertExpectations(t)
}

func TestUpdateOrderStatus_PassesThroughDomainErrors(t *testing.T) {
	s, m := newServiceWithMocks()

	m.orders.On("UpdateStatus", mock.Anything, uint64(9), domain.StatusDelivered).
		Return(domain.ErrInvalidRequest("order 9 cannot move from placed to delivered"))

	err := s.UpdateOrderStatus(context.Background(), 9, domain.StatusDelivered)

	assertDomainError(t, err, domain.CodeInvalidRequest)
}

func TestListOrders_RejectsUnknownStatus(t *testing.T) {
	s, m := newServiceWithMocks()

	_, _, err := s.ListOrders(context.Background(), "shipped", 1, 10)

	assertDomainError(t, err, domain.CodeInvalidRequest)
	m.orders.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
