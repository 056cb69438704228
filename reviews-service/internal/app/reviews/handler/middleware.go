package handler

import (
	"errors"
	"net/http"
	"strings"

	"shopreviews/reviews-service/internal/app/reviews/entity"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure/identity"

	"github.com/gin-gonic/gin"
)

const roleContextKey = "role"

// AuthMiddleware проверяет Bearer токен и кладёт entity.Role в контекст Gin
type AuthMiddleware struct {
	identity infrastructure.IdentityProvider
}

func NewAuthMiddleware(identity infrastructure.IdentityProvider) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
	}
}

// Authenticate отвечает 401, если токен отсутствует или не прошёл проверку
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{Detail: "Not authenticated"})
			return
		}

		// Формат "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{Detail: "Invalid authorization header format"})
			return
		}

		role, err := m.identity.Resolve(parts[1])
		if err != nil {
			detail := "Could not validate credentials"
			if errors.Is(err, identity.ErrExpiredToken) {
				detail = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{Detail: detail})
			return
		}

		c.Set(roleContextKey, role)
		c.Next()
	}
}

// roleFromContext возвращает роль, сохранённую Authenticate
func roleFromContext(c *gin.Context) (entity.Role, bool) {
	value, exists := c.Get(roleContextKey)
	if !exists {
		return entity.Role{}, false
	}
	role, ok := value.(entity.Role)
	return role, ok
}
