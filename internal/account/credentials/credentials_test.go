package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolkit/edupay/internal/account/domain"
)

func TestGeneratePassword(t *testing.T) {
	const trials = 10000
	seen := make(map[string]bool, trials)

	for i := 0; i < trials; i++ {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, PasswordLength)

		for _, ch := range password {
			require.True(t, strings.ContainsRune(PasswordAlphabet, ch),
				"password character %q outside alphabet", ch)
		}

		// any collision in 10k draws from a 69^12 space means the
		// generator is broken
		require.False(t, seen[password], "duplicate password after %d draws", i)
		seen[password] = true
	}
}

func TestGenerateUsername(t *testing.T) {
	tests := []struct {
		entityType string
		email      string
		prefix     string
	}{
		{entityType: domain.EntityTeacher, email: "rahim@school.edu", prefix: "Trahim"},
		{entityType: domain.EntityStudent, email: "karim.ahmed@example.com", prefix: "Skarim.ahmed"},
		{entityType: domain.EntityParent, email: "guardian@example.com", prefix: "Pguardian"},
	}

	for _, tt := range tests {
		username, err := GenerateUsername(tt.entityType, tt.email)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(username, tt.prefix),
			"username %q should start with %q", username, tt.prefix)
		assert.Len(t, username, len(tt.prefix)+3)

		suffix := username[len(tt.prefix):]
		for _, ch := range suffix {
			assert.True(t, ch >= '0' && ch <= '9', "suffix %q should be digits", suffix)
		}
	}
}

func TestGenerateUsernameNoAtSign(t *testing.T) {
	username, err := GenerateUsername(domain.EntityTeacher, "plainname")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(username, "Tplainname"))
}

func TestGenerateUsernameUnknownEntity(t *testing.T) {
	_, err := GenerateUsername("janitor", "x@example.com")
	assert.Error(t, err)
}
