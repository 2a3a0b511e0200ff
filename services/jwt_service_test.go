package services

import (
	"testing"

	"vcall-signal-service/config"
	"vcall-signal-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTGenerateAndExtract(t *testing.T) {
	service := NewJWTService(&config.Config{JWTSecretKey: "test-secret"})
	user := &models.User{ID: "user-1", Username: "alice"}

	token, err := service.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWTValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(&config.Config{JWTSecretKey: "secret-a"})
	verifier := NewJWTService(&config.Config{JWTSecretKey: "secret-b"})

	token, err := issuer.GenerateToken(&models.User{ID: "user-1", Username: "alice"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTValidateRejectsGarbage(t *testing.T) {
	service := NewJWTService(&config.Config{JWTSecretKey: "test-secret"})

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}
