package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "admin@school.edu", []string{"school_admin"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@school.edu", claims.Email)
	assert.True(t, claims.HasRole("school_admin"))
	assert.False(t, claims.HasRole("super_admin"))
	assert.True(t, claims.HasAnyRole("super_admin", "school_admin"))
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!@#")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!@#", hash)
	assert.True(t, CheckPassword(hash, "s3cret!@#"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
