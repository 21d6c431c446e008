package coupon

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	CodeLength = 6
	minCode    = 100000
	maxCode    = 999999
)

var codeSpan = big.NewInt(maxCode - minCode + 1)

// GenerateCode returns a 6-digit verification code drawn uniformly from [100000, 999999].
// Codes are not unique across registrations, redemption is always scoped to a registration id.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

// IsValidCode reports whether s has the shape of a verification code.
func IsValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
