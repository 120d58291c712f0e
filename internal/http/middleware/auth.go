package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tripquote/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// AuthOptional attaches the caller identity when a valid bearer token is
// sent. Requests without a token stay anonymous; an invalid token is 401.
func AuthOptional(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || len(key) == 0 {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "format Authorization harus Bearer <token>")
			return
		}
		ident, err := ParseIdentity(strings.TrimSpace(raw), key)
		if err != nil {
			abortUnauthorized(c, "token tidak valid")
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// ParseIdentity verifies an HS256 token and reads user_id, email and role.
func ParseIdentity(token string, key []byte) (domain.RequestContext, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.RequestContext{}, err
	}

	ident := domain.RequestContext{
		Email: claimString(claims, "email"),
		Role:  claimString(claims, "role"),
	}
	switch v := claims["user_id"].(type) {
	case float64:
		ident.UserID = fmt.Sprintf("%.0f", v)
	case string:
		ident.UserID = v
	}
	if ident.UserID == "" {
		if sub, _ := claims.GetSubject(); sub != "" {
			ident.UserID = sub
		}
	}
	if ident.Anonymous() {
		return ident, errors.New("token has no subject")
	}
	return ident, nil
}

// GetIdentity returns the caller identity, zero when anonymous.
func GetIdentity(c *gin.Context) domain.RequestContext {
	if c == nil {
		return domain.RequestContext{}
	}
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(domain.RequestContext); ok {
			return ident
		}
	}
	return domain.RequestContext{}
}

func claimString(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return strings.TrimSpace(s)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      message,
		"code":       "unauthorized",
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
