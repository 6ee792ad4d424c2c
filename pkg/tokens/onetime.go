package tokens

import (
	"crypto/rand"
	"encoding/hex"
)

// NewOneTimeToken returns 32 random bytes, hex encoded, for links mailed to
// users. Store only its Sha256Hex.
func NewOneTimeToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
