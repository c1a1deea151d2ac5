package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/siwamsingh/bookstore-backend/internal/auth"
	"github.com/siwamsingh/bookstore-backend/internal/domain"
	"github.com/siwamsingh/bookstore-backend/internal/services"
	"github.com/siwamsingh/bookstore-backend/pkg/logkey"
)

const (
	signatureHeader = "x-razorpay-signature"

	maxWebhookBody = int64(65536)

	defaultPage        = 1
	defaultLimit       = 10
	userOrdersCacheTTL = 10 * time.Second
)

type Handler struct {
	service *services.OrderService
	rdb     *redis.Client
}

func NewHandler(s *services.OrderService, rdb *redis.Client) *Handler {
	return &Handler{service: s, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, verifier *auth.Verifier) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	orders := r.Group("/orders")
	orders.POST("/verify-order", h.VerifyOrder)

	authed := orders.Group("")
	authed.Use(Authentication(verifier))
	authed.POST("/create-order", h.CreateOrder)
	authed.POST("/get-user-orders", h.GetUserOrders)

	admin := authed.Group("")
	admin.Use(AdminOnly())
	admin.POST("/get-all-orders", h.GetAllOrders)
	admin.POST("/get-all-orders-np", h.GetAllOrdersNP)
	admin.POST("/get-orders-stats", h.GetOrderStats)
	admin.POST("/update-order", h.UpdateOrder)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest("malformed request body"))
		return
	}

	items := make([]services.RequestedItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		items = append(items, services.RequestedItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	result, err := h.service.CreateOrder(c.Request.Context(), claims.UserID, services.CreateOrderInput{
		Items:             items,
		ShippingAddressID: req.ShippingAddressID,
		CouponCode:        req.CouponCode,
	})
	if err != nil {
		slog.Warn("order creation rejected",
			slog.String(logkey.TraceID, traceID(c)),
			slog.Uint64(logkey.UserID, claims.UserID),
			slog.String(logkey.Error, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateOrderResponse{
		OrderID:  result.OrderID,
		Currency: result.Currency,
		Amount:   result.Amount,
	})
}

// VerifyOrder is the payment provider's webhook endpoint. It is deliberately
// outside the session middleware: the caller authenticates through the
// signature header over the raw body.
func (h *Handler) VerifyOrder(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, domain.ErrInvalidRequest("unreadable webhook body"))
		return
	}

	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		respondError(c, domain.ErrInvalidSignature())
		return
	}

	if err := h.service.ConfirmPayment(c.Request.Context(), payload, signature); err != nil {
		slog.Warn("webhook rejected",
			slog.String(logkey.TraceID, traceID(c)), slog.String(logkey.Error, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetUserOrders(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ListOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, domain.ErrInvalidRequest("malformed request body"))
		return
	}
	page, limit := normalizePage(req.Page, req.Limit)

	ctx := c.Request.Context()

	// First page is served from cache when possible; writes invalidate it.
	cacheable := h.rdb != nil && page == defaultPage && limit == defaultLimit
	cacheKey := services.UserOrdersCacheKey(claims.UserID)
	if cacheable {
		if cached, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp ListOrdersResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	orders, total, err := h.service.GetUserOrders(ctx, claims.UserID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ListOrdersResponse{Orders: orders, Total: total, Page: page, Limit: limit}
	if cacheable {
		if data, err := json.Marshal(resp); err == nil {
			h.rdb.Set(ctx, cacheKey, data, userOrdersCacheTTL)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetAllOrders(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, domain.ErrInvalidRequest("malformed request body"))
		return
	}
	page, limit := normalizePage(req.Page, req.Limit)

	orders, total, err := h.service.ListOrders(c.Request.Context(), req.Status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListOrdersResponse{Orders: orders, Total: total, Page: page, Limit: limit})
}

// GetAllOrdersNP lists every order without pagination, for the admin export
// views.
func (h *Handler) GetAllOrdersNP(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, domain.ErrInvalidRequest("malformed request body"))
		return
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), req.Status, 0, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListOrdersResponse{Orders: orders, Total: total})
}

func (h *Handler) GetOrderStats(c *gin.Context) {
	stats, err := h.service.GetOrderStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest("malformed request body"))
		return
	}

	if err := h.service.UpdateOrderStatus(c.Request.Context(), req.OrderID, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

// respondError maps known domain errors to their HTTP status and message and
// hides everything else behind a generic 500.
func respondError(c *gin.Context, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.Status, ErrorResponse{
			StatusCode: domainErr.Status,
			Message:    domainErr.Message,
			Success:    false,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
		Success:    false,
	})
}
