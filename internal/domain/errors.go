package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is the failure surface of the order flow. Code is stable and machine
// readable, Status is the HTTP status the handlers respond with, Message is
// safe to return to clients.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidCoupon       = "INVALID_COUPON"
	CodeCouponNotApplicable = "COUPON_NOT_APPLICABLE"
	CodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	CodeOutOfStock          = "OUT_OF_STOCK"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeAddressNotFound     = "ADDRESS_NOT_FOUND"
	CodePaymentGateway      = "PAYMENT_GATEWAY_ERROR"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeAlreadyPaid         = "ALREADY_PAID"
	CodePersistence         = "PERSISTENCE_ERROR"
)

func ErrInvalidRequest(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidRequest, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalidCoupon(code string) *Error {
	return &Error{Code: CodeInvalidCoupon, Status: http.StatusBadRequest, Message: fmt.Sprintf("coupon %q is not valid", code)}
}

func ErrCouponNotApplicable(code string, productID uint64) *Error {
	return &Error{
		Code:    CodeCouponNotApplicable,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("coupon %q applies only to product %d, which is not in this order", code, productID),
	}
}

func ErrProductUnavailable(productIDs []uint64) *Error {
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return &Error{
		Code:    CodeProductUnavailable,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("products unavailable: %s", strings.Join(ids, ", ")),
	}
}

func ErrOutOfStock(productID uint64) *Error {
	return &Error{Code: CodeOutOfStock, Status: http.StatusBadRequest, Message: fmt.Sprintf("product %d is out of stock", productID)}
}

func ErrInsufficientStock(productID uint64) *Error {
	return &Error{Code: CodeInsufficientStock, Status: http.StatusBadRequest, Message: fmt.Sprintf("insufficient stock for product %d", productID)}
}

func ErrAddressNotFound(addressID uint64) *Error {
	return &Error{Code: CodeAddressNotFound, Status: http.StatusForbidden, Message: fmt.Sprintf("shipping address %d not found", addressID)}
}

func ErrPaymentGateway() *Error {
	return &Error{Code: CodePaymentGateway, Status: http.StatusBadGateway, Message: "payment gateway request failed"}
}

func ErrInvalidSignature() *Error {
	return &Error{Code: CodeInvalidSignature, Status: http.StatusBadRequest, Message: "webhook signature verification failed"}
}

func ErrOrderNotFound(orderNumber string) *Error {
	return &Error{Code: CodeOrderNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("order %q not found", orderNumber)}
}

func ErrAlreadyPaid(orderNumber string) *Error {
	return &Error{Code: CodeAlreadyPaid, Status: http.StatusConflict, Message: fmt.Sprintf("order %q is already paid", orderNumber)}
}

func ErrPersistence() *Error {
	return &Error{Code: CodePersistence, Status: http.StatusInternalServerError, Message: "failed to persist order"}
}
