package utils

import (
	"crypto/rand"
	"math/big"
)

const credentialAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// RandomString returns n characters drawn uniformly from an alphabet without
// look-alike glyphs.  Used for generated boarding house passwords that are
// read by a person from a WhatsApp message.
func RandomString(n int) (string, error) {
	max := big.NewInt(int64(len(credentialAlphabet)))
	out := make([]byte, n)
	for i := range out {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = credentialAlphabet[k.Int64()]
	}
	return string(out), nil
}
