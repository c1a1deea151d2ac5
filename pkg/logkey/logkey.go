// Package logkey holds the attribute names used across slog call sites so
// log queries do not have to chase spelling variants.
package logkey

const (
	TraceID     = "trace_id"
	UserID      = "user_id"
	OrderID     = "order_id"
	OrderNumber = "order_number"
	ProductID   = "product_id"
	Error       = "error"
)
