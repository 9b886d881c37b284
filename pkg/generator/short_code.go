package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Codes are case-insensitive, so the alphabet is lowercase base36.
// Capacity: 36^4 = 1,679,616 at length 4, 36^5 = 60,466,176 at length 5.
const (
	charset           = "abcdefghijklmnopqrstuvwxyz0123456789"
	DefaultCodeLength = 5
)

// GenerateShortCode produces one candidate code of the given length.
// Collisions against persisted codes are expected and handled by the caller.
func GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid short code length %d", length)
	}

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}

		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}
