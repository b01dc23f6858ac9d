package httpserver

import (
	"errors"
	"log"
	"net/http"

	"tasks-api/internal/domain"

	"github.com/gin-gonic/gin"
)

type csrfTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

func csrfTokenHandler(svc csrfService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := parsePositiveID(c.Param("user_id"))
		if userID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}

		token, err := svc.IssueOrReuse(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			logger.Printf("issue csrf token: request_id=%s user=%d err=%v", c.GetString(ctxRequestID), userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSRF token"})
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, csrfTokenResponse{CSRFToken: token})
	}
}
