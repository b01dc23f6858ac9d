package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tasks-api/internal/metrics"
	"tasks-api/internal/service/csrf"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

const (
	headerCSRFToken = "X-CSRF-Token"
	headerUserID    = "X-User-Id"
	headerRequestID = "X-Request-ID"

	ctxRequestID = "requestID"
	ctxUserID    = "csrfUserID"
)

// Gate rejection messages. Clients match on these strings.
const (
	msgCSRFMissing = "CSRF token missing"
	msgCSRFInvalid = "Invalid CSRF token"
	msgCSRFExpired = "CSRF token expired"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// csrfBody holds the body fields the gate may read when headers are absent.
type csrfBody struct {
	CSRFToken string `json:"csrfToken"`
	UserID    any    `json:"user_id"`
}

// csrfMiddleware runs the CSRF gate before any task handler. On success the
// resolved user id is stored in the context under ctxUserID.
func csrfMiddleware(svc csrfService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, token := csrfCredentials(c)

		err := svc.Verify(c.Request.Context(), userID, token)
		switch {
		case err == nil:
			c.Set(ctxUserID, userID)
			c.Next()
		case errors.Is(err, csrf.ErrTokenMissing):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgCSRFMissing})
		case errors.Is(err, csrf.ErrTokenInvalid):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgCSRFInvalid})
		case errors.Is(err, csrf.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgCSRFExpired})
		default:
			logger.Printf("csrf gate: request_id=%s user=%d err=%v", c.GetString(ctxRequestID), userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
	}
}

// csrfCredentials extracts the user id and token. Headers take precedence over
// body fields: a present but malformed X-User-Id header yields 0 rather than
// falling back to the body.
func csrfCredentials(c *gin.Context) (int64, string) {
	var body csrfBody
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		// The body is cached so handlers can bind it again.
		_ = c.ShouldBindBodyWith(&body, binding.JSON)
	}

	token := strings.TrimSpace(c.GetHeader(headerCSRFToken))
	if token == "" {
		token = strings.TrimSpace(body.CSRFToken)
	}

	var userID int64
	if raw := strings.TrimSpace(c.GetHeader(headerUserID)); raw != "" {
		userID = parsePositiveID(raw)
	} else {
		userID = userIDFromJSON(body.UserID)
	}
	return userID, token
}

func parsePositiveID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func userIDFromJSON(v any) int64 {
	switch val := v.(type) {
	case float64:
		if val <= 0 || val != math.Trunc(val) || val > math.MaxInt64 {
			return 0
		}
		return int64(val)
	case json.Number:
		return parsePositiveID(val.String())
	case string:
		return parsePositiveID(val)
	default:
		return 0
	}
}
