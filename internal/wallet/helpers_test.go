package wallet

import (
	"encoding/hex"
	"testing"
)

// testMnemonic is the standard BIP-39 test phrase ("abandon" x11 + "about").
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// testMnemonic24 is the 24-word BIP-39 test phrase ("abandon" x23 + "art").
const testMnemonic24 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

// otherMnemonic is a second valid phrase ("legal winner thank year wave
// sausage worth useful legal winner thank yellow").
const otherMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

// staticSeed is a SeedSource returning a fixed seed.
type staticSeed []byte

func (s staticSeed) Seed() ([]byte, error) {
	return append([]byte(nil), s...), nil
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex %q: %v", s, err)
	}
	return b
}

// testSeed returns the seed of testMnemonic with an empty passphrase.
func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}
