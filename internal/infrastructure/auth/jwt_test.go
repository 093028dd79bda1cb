package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelops/backoffice/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "travelops-identity",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	input := GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "accountant",
		Permissions: []string{"payable:approve"},
	}

	token, expiresAt, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)

	tenantID, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, tenantID)
	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)
	assert.True(t, claims.HasPermission("payable:approve"))
	assert.False(t, claims.HasPermission("payable:pay"))
	assert.True(t, claims.HasAnyPermission("payable:pay", "payable:approve"))
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", AccessTokenExpiration: -time.Minute})

	token, _, err := svc.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsForeignSignatures(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret",
		AccessTokenExpiration: time.Minute,
		Issuer:                "travelops-identity",
	})

	token, _, err := other.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "someone-else",
	})

	token, _, err := other.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_MissingTenant(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "travelops-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: uuid.New().String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMissingTenantID)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{TenantID: uuid.New().String(), UserID: uuid.New().String()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
