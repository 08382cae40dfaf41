// Package credentials generates initial account credentials for
// admin-provisioned users.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/schoolkit/edupay/internal/account/domain"
)

// PasswordAlphabet is the fixed 69-symbol alphabet initial passwords are
// drawn from.
const PasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&"

// PasswordLength is the length of every generated password
const PasswordLength = 12

// GeneratePassword draws a password from the alphabet using crypto/rand
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(PasswordAlphabet)))

	var sb strings.Builder
	sb.Grow(PasswordLength)
	for i := 0; i < PasswordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		sb.WriteByte(PasswordAlphabet[n.Int64()])
	}

	return sb.String(), nil
}

// GenerateUsername builds a human-readable username from the entity type and
// the email's local part, suffixed with three random digits:
// {T|S|P}{local-part}{3 digits}.
func GenerateUsername(entityType, email string) (string, error) {
	var prefix string
	switch entityType {
	case domain.EntityTeacher:
		prefix = "T"
	case domain.EntityStudent:
		prefix = "S"
	case domain.EntityParent:
		prefix = "P"
	default:
		return "", fmt.Errorf("unknown entity type: %s", entityType)
	}

	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("failed to generate username suffix: %w", err)
	}

	return fmt.Sprintf("%s%s%03d", prefix, local, n.Int64()), nil
}
