package services_test

import (
	"strings"
	"testing"
	"time"

	"gudang/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	tokens := services.NewTokenService("test_secret", time.Hour)

	tok, err := tokens.Issue()
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := tokens.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, services.OwnerSubject, claims.Subject)
	assert.NotEmpty(t, claims.Id)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	tok, err := services.NewTokenService("other_secret", time.Hour).Issue()
	require.NoError(t, err)

	_, err = services.NewTokenService("test_secret", time.Hour).ValidateToken(tok)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   services.OwnerSubject,
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	tok, err := expired.SignedString([]byte("test_secret"))
	require.NoError(t, err)

	_, err = services.NewTokenService("test_secret", time.Hour).ValidateToken(tok)
	assert.Error(t, err)
}

func TestTokenService_RejectsOtherSubject(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "someone-else",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	tok, err := other.SignedString([]byte("test_secret"))
	require.NoError(t, err)

	_, err = services.NewTokenService("test_secret", time.Hour).ValidateToken(tok)
	assert.Error(t, err)
}

func TestTokenService_IssueWithoutSecret(t *testing.T) {
	_, err := services.NewTokenService("", 0).Issue()
	assert.Error(t, err)
}
