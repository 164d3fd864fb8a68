package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/supabase-community/gotrue-go/types"
	"golang.org/x/time/rate"
)

const RequestIDKey = "request_id"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs one line per request. Client errors are logged at warn level and
// server errors at error level.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.LogAttrs(c.Request.Context(), level, "HTTP Request",
			slog.String("request_id", c.GetString(RequestIDKey)),
			slog.Group("request",
				slog.String("method", c.Request.Method),
				slog.String("path", path),
				slog.String("client_ip", c.ClientIP()),
			),
			slog.Group("response",
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.Int("size", c.Writer.Size()),
			),
		)
	}
}

// ErrorHandler turns the last error pushed by a handler into the API error envelope.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := statusFor(err)
		requestID := c.GetString(RequestIDKey)

		if status >= http.StatusInternalServerError {
			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		res := models.ErrorResponse(message)
		res.RequestID = requestID
		c.JSON(status, res)
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errdef.IsBadRequest(err):
		return http.StatusBadRequest, err.Error()
	case errdef.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case errdef.IsConflict(err):
		return http.StatusConflict, err.Error()
	case errdef.IsForbidden(err):
		return http.StatusForbidden, err.Error()
	case errdef.IsUnauthorized(err):
		return http.StatusUnauthorized, err.Error()
	case errdef.IsUpstream(err):
		return http.StatusBadGateway, err.Error()
	default:
		// Don't return error details in production
		return http.StatusInternalServerError, "Internal server error"
	}
}

type TokenValidator interface {
	ValidateToken(token string) (*helpers.CustomClaims, error)
}

type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, claims *helpers.CustomClaims, accessToken string) (*helpers.Session, error)
}

// AuthMiddleware accepts a bearer token or the access_token cookie. An expired cookie session
// is refreshed with the refresh_token cookie. The resolved session is stored under
// helpers.SessionKey.
func AuthMiddleware(validator TokenValidator, refresher TokenRefresher, resolver SessionResolver, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := accessToken(c)
		if token == "" {
			abortUnauthorized(c, "access token not found")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil && fromCookie {
			refreshToken, cookieErr := c.Cookie(helpers.RefreshTokenCookie)
			if cookieErr != nil || refreshToken == "" {
				abortUnauthorized(c, "token expired")
				return
			}

			tokens, refreshErr := refresher.RefreshToken(c.Request.Context(), refreshToken)
			if refreshErr != nil || tokens == nil || tokens.AccessToken == "" {
				logger.Warn("Token refresh failed", "error", refreshErr)
				abortUnauthorized(c, "token expired and refresh failed")
				return
			}

			helpers.SetAuthCookies(c, tokens, secureCookies)
			token = tokens.AccessToken
			claims, err = validator.ValidateToken(token)
		}
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		session, err := resolver.ResolveSession(c.Request.Context(), claims, token)
		if err != nil {
			if errdef.IsUnauthorized(err) {
				abortUnauthorized(c, err.Error())
				return
			}
			logger.Error("Failed to resolve session", "user_id", claims.Subject, "error", err)
			res := models.ErrorResponse("Internal server error")
			res.RequestID = c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusInternalServerError, res)
			return
		}

		c.Set(helpers.SessionKey, session)
		c.Next()
	}
}

func accessToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token), false
		}
	}
	token, err := c.Cookie(helpers.AccessTokenCookie)
	if err != nil {
		return "", false
	}
	return token, true
}

func abortUnauthorized(c *gin.Context, message string) {
	res := models.ErrorResponse(message)
	res.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(http.StatusUnauthorized, res)
}

// CronAuth protects scheduled endpoints with a shared bearer secret. An empty secret disables
// the endpoint.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if secret == "" || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			abortUnauthorized(c, "invalid cron secret")
			return
		}
		c.Next()
	}
}

// RateLimit applies a token bucket per client IP.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			res := models.ErrorResponse("too many requests")
			res.RequestID = c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, res)
			return
		}
		c.Next()
	}
}
