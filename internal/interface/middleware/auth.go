package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codecraftkids/codecraft-api/pkg/apperror"
	"github.com/codecraftkids/codecraft-api/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenParser is satisfied by helpers.JWTManager.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Auth reads "Authorization: Bearer <token>", validates it and injects the
// user ID into the context. Tokens are stateless; no store is consulted.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.MsgNoToken, nil)
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.MsgInvalidToken, nil)
			return
		}
		userID, err := tokens.ParseToken(strings.TrimSpace(token))
		if err != nil || userID == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.MsgInvalidToken, nil)
			return
		}
		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's ID set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
