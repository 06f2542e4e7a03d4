package orderrepo

import (
	"crypto/rand"
	"math/big"
)

func randomDigits(n int) string {
	const digits = "0123456789"
	buf := make([]byte, n)
	max := big.NewInt(int64(len(digits)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		buf[i] = digits[idx.Int64()]
	}
	return string(buf)
}

// newOrderSlug returns a public order id of the form "12345678-9012".
func newOrderSlug() string {
	s := randomDigits(12)
	return s[:8] + "-" + s[8:]
}

// newItemSlug returns a public order item id of 10 digits.
func newItemSlug() string {
	return randomDigits(10)
}
