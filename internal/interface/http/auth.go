package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// operatorAuth guards the label export/archive endpoints with an HS256
// bearer token. Without a configured secret the endpoints stay closed.
func operatorAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "auth_disabled", "operator endpoints are not configured", nil))
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "invalid_token", "invalid or expired token", err))
			return
		}

		c.Next()
	}
}
