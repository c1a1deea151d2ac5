package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siwamsingh/bookstore-backend/internal/auth"
	"github.com/siwamsingh/bookstore-backend/pkg/logkey"
)

const (
	ctxKeyClaims  = "claims"
	ctxKeyTraceID = "trace_id"

	accessTokenCookie = "access_token"
)

// TraceLogger assigns every request a trace id and logs method, path, status
// and latency once the handler chain finishes.
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.NewString()
		c.Set(ctxKeyTraceID, traceID)

		start := time.Now()
		c.Next()

		slog.Info("request handled",
			slog.String(logkey.TraceID, traceID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func traceID(c *gin.Context) string {
	return c.GetString(ctxKeyTraceID)
}

// Authentication validates the session token from the access_token cookie or
// a bearer header and stores the claims on the request context.
func Authentication(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			abortError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := verifier.Parse(token)
		if err != nil {
			slog.Warn("rejected session token",
				slog.String(logkey.TraceID, traceID(c)), slog.String(logkey.Error, err.Error()))
			abortError(c, http.StatusUnauthorized, "invalid session")
			return
		}
		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

// AdminOnly requires an authenticated admin. Must run after Authentication.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok || claims.Role != auth.RoleAdmin {
			abortError(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func claimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}
