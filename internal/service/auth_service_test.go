package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthService() *AuthService {
	cfg := testConfig()
	cfg.BcryptCost = bcrypt.MinCost // keep tests fast
	return &AuthService{cfg: cfg}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, svc.CheckPassword(hash, "correct horse battery staple"))
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("secret-one")
	require.NoError(t, err)

	err = svc.CheckPassword(hash, "secret-onex")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	svc := testAuthService()

	err := svc.CheckPassword("not-a-bcrypt-hash", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	svc := testAuthService()

	h1, err := svc.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := svc.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NoError(t, svc.CheckPassword(h1, "same-password"))
	assert.NoError(t, svc.CheckPassword(h2, "same-password"))
}
