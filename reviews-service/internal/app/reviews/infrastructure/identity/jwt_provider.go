package identity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"shopreviews/reviews-service/internal/app/reviews/entity"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims флаги ролей пользователя, которые выдаёт Auth Service
type Claims struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	IsAdmin    bool   `json:"is_admin"`
	IsSupplier bool   `json:"is_supplier"`
	IsCustomer bool   `json:"is_customer"`
	jwt.RegisteredClaims
}

// JWTProvider проверяет HS256 токены и превращает их в entity.Role
type JWTProvider struct {
	secretKey string
	tokenTTL  time.Duration
}

func NewJWTProvider(secretKey string, tokenTTL time.Duration) *JWTProvider {
	return &JWTProvider{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
	}
}

// Issue выпускает токен для роли (нужен тестам и локальной отладке)
func (p *JWTProvider) Issue(role entity.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     role.UserID,
		Username:   role.Username,
		IsAdmin:    role.IsAdmin,
		IsSupplier: role.IsSupplier,
		IsCustomer: role.IsCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(role.UserID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.secretKey))
}

// Resolve проверяет подпись и срок действия токена
func (p *JWTProvider) Resolve(tokenString string) (entity.Role, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(p.secretKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return entity.Role{}, ErrExpiredToken
		}
		return entity.Role{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return entity.Role{}, ErrInvalidToken
	}

	return entity.Role{
		UserID:     claims.UserID,
		Username:   claims.Username,
		IsAdmin:    claims.IsAdmin,
		IsSupplier: claims.IsSupplier,
		IsCustomer: claims.IsCustomer,
	}, nil
}
