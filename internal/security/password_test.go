package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/cms/internal/security"
)

func TestHashAndVerify(t *testing.T) {
	hash, salt, err := security.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := security.VerifyPassword("correct horse battery staple", hash, salt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("wrong password", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	h1, s1, err := security.HashPassword("same input")
	require.NoError(t, err)
	h2, s2, err := security.HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyRejectsBadEncoding(t *testing.T) {
	_, err := security.VerifyPassword("pw", "not base64 !!!", "also not")
	assert.Error(t, err)
}
