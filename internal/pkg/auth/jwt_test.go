package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/order-service/internal/config"
)

func testJWTConfig(secret string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Order Service"},
		JWT: config.JWTConfig{
			Secret:            secret,
			AccessTokenExpiry: time.Hour,
		},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig("0123456789abcdef0123456789abcdef"))

	token, err := manager.GenerateAccessToken(7, "buyer@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "Order Service", claims.Issuer)
	assert.Equal(t, "user:7", claims.Subject)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager(testJWTConfig("0123456789abcdef0123456789abcdef"))
	other := NewJWTManager(testJWTConfig("ffffffffffffffffffffffffffffffff"))

	token, err := manager.GenerateAccessToken(7, "buyer@example.com", false)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testJWTConfig("0123456789abcdef0123456789abcdef")
	cfg.JWT.AccessTokenExpiry = -time.Hour
	manager := NewJWTManager(cfg)

	token, err := manager.GenerateAccessToken(7, "buyer@example.com", false)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewJWTManager(testJWTConfig("0123456789abcdef0123456789abcdef"))

	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Empty(t, ExtractTokenFromHeader("abc123"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
