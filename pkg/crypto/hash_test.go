package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestHash_Deterministic(t *testing.T) {
	a := Hash([]byte("klingnet"))
	b := Hash([]byte("klingnet"))
	if a != b {
		t.Error("same input should hash identically")
	}
	if a == Hash([]byte("klingnet!")) {
		t.Error("different input should hash differently")
	}
}

func TestFingerprint(t *testing.T) {
	seed := bytes.Repeat([]byte{0x5e}, 64)
	fp := Fingerprint(seed)
	if len(fp) != 2*FingerprintSize {
		t.Fatalf("fingerprint length = %d, want %d", len(fp), 2*FingerprintSize)
	}
	if fp != Fingerprint(seed) {
		t.Error("fingerprint should be deterministic")
	}

	other := bytes.Repeat([]byte{0x5f}, 64)
	if fp == Fingerprint(other) {
		t.Error("different seeds should have different fingerprints")
	}

	h := Hash(seed)
	if fp == hex.EncodeToString(h[:FingerprintSize]) {
		t.Error("fingerprint should be domain separated from Hash")
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	if !bytes.Equal(b, make([]byte, 4)) {
		t.Errorf("Zero() left %x", b)
	}
	Zero(nil)
}
