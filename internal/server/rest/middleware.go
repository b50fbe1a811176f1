package rest

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/dmitrijs2005/projectboard/internal/server/auth"
	"github.com/dmitrijs2005/projectboard/internal/server/metrics"
	"github.com/dmitrijs2005/projectboard/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityKey  = "identity"
	requestIDKey = "request_id"
)

// withRequestID reuses the caller's X-Request-ID or generates one, and
// echoes it back.
func withRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"request_id", requestID(c),
			"client_ip", c.ClientIP(),
		)
	}
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.Error(c.Request.Context(), "panic recovered",
			"panic", rec,
			"request_id", requestID(c),
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Success: false, Message: msgInternal})
	})
}

// securityHeaders sets CORS and a few hardening headers. Preflight requests
// end here.
func securityHeaders(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// rateLimit keys on the client address. If the limiter backend fails the
// request is let through and the failure logged.
func rateLimit(l ratelimit.Limiter, m *metrics.Metrics, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error(), "request_id", requestID(c))
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(int(math.Ceil(d.Reset.Seconds()))))

		if !d.Allowed {
			m.RateLimited()
			fail(c, common.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// requireAuth admits requests carrying a valid bearer token and stores the
// caller's identity on the context.
func requireAuth(secret []byte, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			m.AuthFailure("missing_header")
			fail(c, newStatusError(http.StatusUnauthorized, msgHeaderMissing, nil))
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != common.BearerScheme || token == "" {
			m.AuthFailure("bad_format")
			fail(c, newStatusError(http.StatusUnauthorized, msgInvalidAuthFormat, nil))
			return
		}

		id, err := auth.ParseToken(token, secret)
		if err != nil {
			m.AuthFailure("invalid_token")
			fail(c, newStatusError(http.StatusUnauthorized, msgInvalidToken, err))
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func identity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}
