package batcher

import (
	"crypto/rand"
	"math/big"
)

const nonceDigits = 18
const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateNonce returns a random 18-digit base-36 string (spec.md §6). It is
// not security sensitive — only used for batch deduplication — so crypto/rand
// is used solely as the entropy source, not for a key or signature.
func generateNonce() (string, error) {
	buf := make([]byte, nonceDigits)
	max := big.NewInt(int64(len(base36)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = base36[n.Int64()]
	}
	return string(buf), nil
}
