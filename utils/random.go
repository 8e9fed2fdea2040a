// utils/random.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const randomChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns n random alphanumeric characters.
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomChars))))
		if err != nil {
			b[i] = '0'
			continue
		}
		b[i] = randomChars[idx.Int64()]
	}
	return string(b)
}

// RandomDigits returns n random decimal digits, used as the collision
// suffix on payment numbers.
func RandomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b[i] = '0'
			continue
		}
		b[i] = byte('0' + idx.Int64())
	}
	return string(b)
}
