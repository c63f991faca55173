package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex encoded sha256 of data.
// Consumers use it to detect duplicate or corrupted lap documents.
func HashContent(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
