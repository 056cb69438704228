package identity

import (
	"testing"
	"time"

	"shopreviews/reviews-service/internal/app/reviews/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTProvider_IssueAndResolve(t *testing.T) {
	provider := NewJWTProvider("test-secret-key", 15*time.Minute)
	role := entity.Role{UserID: 7, Username: "alice", IsCustomer: true}

	token, err := provider.Issue(role)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	resolved, err := provider.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, role, resolved)
}

func TestJWTProvider_Resolve_AllFlags(t *testing.T) {
	provider := NewJWTProvider("test-secret-key", 15*time.Minute)
	role := entity.Role{UserID: 1, Username: "root", IsAdmin: true, IsSupplier: true, IsCustomer: true}

	token, err := provider.Issue(role)
	require.NoError(t, err)

	resolved, err := provider.Resolve(token)
	require.NoError(t, err)
	assert.True(t, resolved.IsAdmin)
	assert.True(t, resolved.IsSupplier)
	assert.True(t, resolved.IsCustomer)
}

func TestJWTProvider_Resolve_WrongSecret(t *testing.T) {
	issuer := NewJWTProvider("secret-key-1", 15*time.Minute)
	verifier := NewJWTProvider("secret-key-2", 15*time.Minute)

	token, _ := issuer.Issue(entity.Role{UserID: 1, IsAdmin: true})

	role, err := verifier.Resolve(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, entity.Role{}, role)
}

func TestJWTProvider_Resolve_Expired(t *testing.T) {
	provider := NewJWTProvider("test-secret-key", -time.Minute)

	token, _ := provider.Issue(entity.Role{UserID: 1, IsCustomer: true})

	_, err := provider.Resolve(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTProvider_Resolve_UnexpectedSigningMethod(t *testing.T) {
	provider := NewJWTProvider("test-secret-key", 15*time.Minute)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, IsAdmin: true})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = provider.Resolve(unsigned)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTProvider_Resolve_Malformed(t *testing.T) {
	provider := NewJWTProvider("test-secret-key", 15*time.Minute)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"single part", "onlyonepart"},
		{"two parts", "header.payload"},
		{"invalid base64", "invalid.base64.token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := provider.Resolve(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
