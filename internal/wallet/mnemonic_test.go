package wallet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateMnemonic(t *testing.T) {
	for _, words := range []int{WordCount12, WordCount24} {
		mnemonic, err := GenerateMnemonic(words)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d) error: %v", words, err)
		}
		if got := len(strings.Fields(mnemonic)); got != words {
			t.Errorf("word count = %d, want %d", got, words)
		}
		if !ValidateMnemonic(mnemonic) {
			t.Errorf("generated %d-word mnemonic should validate", words)
		}
	}
}

func TestGenerateMnemonic_UnsupportedLength(t *testing.T) {
	for _, words := range []int{0, 15, 18, 21, 25} {
		if _, err := GenerateMnemonic(words); err == nil {
			t.Errorf("GenerateMnemonic(%d) should fail", words)
		}
	}
}

func TestGenerateMnemonic_Unique(t *testing.T) {
	m1, err := GenerateMnemonic(WordCount12)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	m2, err := GenerateMnemonic(WordCount12)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	if m1 == m2 {
		t.Error("two generated mnemonics should not be identical")
	}
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		valid    bool
	}{
		{"valid 24-word BIP-39", testMnemonic24, true},
		{"valid 12-word BIP-39", testMnemonic, true},
		{"extra whitespace", "  abandon abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon about ", true},
		{"empty string", "", false},
		{"random words", "not a real mnemonic", false},
		{"wrong checksum", strings.Repeat("abandon ", 11) + "abandon", false},
		{"unknown word", strings.Repeat("abandon ", 11) + "klingon", false},
		{"valid 18-word BIP-39", strings.Repeat("abandon ", 17) + "agent", false},
		{"single word", "abandon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMnemonic(tt.mnemonic); got != tt.valid {
				t.Errorf("ValidateMnemonic() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestMaskMnemonic(t *testing.T) {
	masked := MaskMnemonic(testMnemonic)
	if strings.Contains(masked, "abandon") || strings.Contains(masked, "about") {
		t.Errorf("masked phrase leaks words: %q", masked)
	}
	if got := len(strings.Fields(masked)); got != 12 {
		t.Errorf("masked word count = %d, want 12", got)
	}
	if MaskMnemonic("") != "" {
		t.Error("masking empty phrase should be empty")
	}
}

func TestMnemonicSession_SeedRequiresPhrase(t *testing.T) {
	ms := NewMnemonicSession("")
	if _, err := ms.Seed(); !errors.Is(err, ErrNoMnemonic) {
		t.Errorf("Seed() error = %v, want ErrNoMnemonic", err)
	}
	if ms.HasPhrase() {
		t.Error("new session should have no phrase")
	}
}

func TestMnemonicSession_Adopt(t *testing.T) {
	ms := NewMnemonicSession("")
	phrase, err := ms.Adopt("  " + testMnemonic + "  ")
	if err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}
	if phrase != testMnemonic || ms.Phrase() != testMnemonic {
		t.Errorf("adopted phrase = %q", ms.Phrase())
	}

	seed, err := ms.Seed()
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	if !bytes.Equal(seed, testSeed(t)) {
		t.Error("session seed differs from SeedFromMnemonic")
	}
}

func TestMnemonicSession_AdoptInvalidKeepsState(t *testing.T) {
	ms := NewMnemonicSession("")
	if _, err := ms.Adopt(testMnemonic); err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}
	before, _ := ms.Seed()

	if _, err := ms.Adopt("not a real mnemonic"); !errors.Is(err, ErrInvalidMnemonic) {
		t.Fatalf("Adopt(invalid) error = %v, want ErrInvalidMnemonic", err)
	}
	if ms.Phrase() != testMnemonic {
		t.Errorf("phrase changed after rejected adopt: %q", ms.Phrase())
	}
	after, _ := ms.Seed()
	if !bytes.Equal(before, after) {
		t.Error("seed changed after rejected adopt")
	}
}

func TestMnemonicSession_ReplaceInvalidatesSeed(t *testing.T) {
	ms := NewMnemonicSession("")
	ms.Adopt(testMnemonic)
	s1, _ := ms.Seed()

	ms.Adopt(otherMnemonic)
	s2, _ := ms.Seed()
	if bytes.Equal(s1, s2) {
		t.Error("seed should change with the phrase")
	}

	want, _ := SeedFromMnemonic(otherMnemonic, "")
	if !bytes.Equal(s2, want) {
		t.Error("seed does not match new phrase")
	}
}

func TestMnemonicSession_SeedIsCopy(t *testing.T) {
	ms := NewMnemonicSession("")
	ms.Adopt(testMnemonic)

	s1, _ := ms.Seed()
	for i := range s1 {
		s1[i] = 0
	}
	s2, _ := ms.Seed()
	if !bytes.Equal(s2, testSeed(t)) {
		t.Error("wiping a returned seed must not affect the cached seed")
	}
}

func TestMnemonicSession_Passphrase(t *testing.T) {
	ms := NewMnemonicSession("TREZOR")
	ms.Adopt(testMnemonic)
	seed, _ := ms.Seed()
	want, _ := SeedFromMnemonic(testMnemonic, "TREZOR")
	if !bytes.Equal(seed, want) {
		t.Error("session passphrase not applied")
	}
}

func TestMnemonicSession_Wipe(t *testing.T) {
	ms := NewMnemonicSession("")
	ms.Adopt(testMnemonic)
	ms.Seed()
	ms.Wipe()
	if ms.HasPhrase() {
		t.Error("phrase should be gone after Wipe")
	}
	if _, err := ms.Seed(); !errors.Is(err, ErrNoMnemonic) {
		t.Errorf("Seed() after Wipe error = %v, want ErrNoMnemonic", err)
	}
}
