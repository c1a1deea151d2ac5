package http

import "github.com/siwamsingh/bookstore-backend/internal/domain"

// OrderItemRequest carries no binding tags on purpose: quantity and product
// bounds are checked by the order validator so failures name the offending
// product.
type OrderItemRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	OrderItems        []OrderItemRequest `json:"order_items" binding:"required"`
	ShippingAddressID uint64             `json:"shipping_address_id" binding:"required"`
	CouponCode        string             `json:"coupon_code"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type ListOrdersRequest struct {
	Page   int                `json:"page"`
	Limit  int                `json:"limit"`
	Status domain.OrderStatus `json:"status"`
}

type UpdateOrderRequest struct {
	OrderID uint64             `json:"order_id" binding:"required"`
	Status  domain.OrderStatus `json:"status" binding:"required"`
}

type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// ErrorResponse is the error envelope every endpoint returns on failure.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}
