package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsuite/cbt-backend/internal/response"
	"github.com/schoolsuite/cbt-backend/internal/service"
)

// RequireAdminKey gates question-bank management behind the X-Admin-Key
// header, checked against the bcrypt hash in config. There are no admin
// accounts; the deployment shares one operator key.
func RequireAdminKey(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := authService.CheckAdminKey(key); err != nil {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}

		c.Next()
	}
}
