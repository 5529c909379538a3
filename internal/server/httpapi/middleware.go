package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkveil/inkveil/internal/api"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/server/auth"
)

const userIDKey = "userID"

// authRequired verifies the bearer access token and stores the user ID in
// the request context. An expired token is reported verbatim so clients
// can distinguish it and run their refresh flow.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing token"})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: common.ErrTokenExpired.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: common.ErrInvalidToken.Error()})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
