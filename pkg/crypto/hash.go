// Package crypto provides hashing and secret-handling helpers.
package crypto

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// HashSize is the length of a BLAKE3-256 digest.
const HashSize = 32

// FingerprintSize is the number of digest bytes kept in a Fingerprint.
const FingerprintSize = 8

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) [HashSize]byte {
	return blake3.Sum256(data)
}

// Fingerprint returns a short, stable, non-secret identifier for a seed:
// hex(BLAKE3-256(domain || seed)[:8]). It names storage namespaces so that
// metadata for different mnemonics never mixes.
func Fingerprint(seed []byte) string {
	h := blake3.New()
	h.Write([]byte("klingkeys/fingerprint"))
	h.Write(seed)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:FingerprintSize])
}
