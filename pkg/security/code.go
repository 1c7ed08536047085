package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeRange = 900000

// GenerateCode returns a random 6-digit numeric verification code
// (100000-999999, so leading zeros never appear).
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
