package delivery

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var codeSpace = big.NewInt(1_000_000)

// newCompletionCode returns a uniformly random 6-digit code.
func newCompletionCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate completion code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
