// Package wallet derives per-chain HD wallets from a BIP-39 mnemonic and
// tracks the wallets derived during a session.
package wallet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Klingon-tech/klingnet-keys/pkg/crypto"
	"github.com/tyler-smith/go-bip39"
)

// Supported mnemonic lengths and their entropy sizes.
const (
	WordCount12 = 12
	WordCount24 = 24

	entropyBits12 = 128
	entropyBits24 = 256
)

// GenerateMnemonic creates a new BIP-39 mnemonic with 12 or 24 words.
func GenerateMnemonic(words int) (string, error) {
	var bits int
	switch words {
	case WordCount12:
		bits = entropyBits12
	case WordCount24:
		bits = entropyBits24
	default:
		return "", fmt.Errorf("unsupported word count %d (want 12 or 24)", words)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	defer crypto.Zero(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks that a mnemonic has 12 or 24 words from the
// English list and a valid BIP-39 checksum.
func ValidateMnemonic(mnemonic string) bool {
	words := strings.Fields(mnemonic)
	if len(words) != WordCount12 && len(words) != WordCount24 {
		return false
	}
	return bip39.IsMnemonicValid(strings.Join(words, " "))
}

// NormalizeMnemonic collapses whitespace runs to single spaces.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

// MaskMnemonic replaces every word with asterisks, keeping the word count
// visible.
func MaskMnemonic(mnemonic string) string {
	words := strings.Fields(mnemonic)
	for i := range words {
		words[i] = "*****"
	}
	return strings.Join(words, " ")
}

// MnemonicSession holds the active phrase and lazily caches its seed.
// The phrase is replaced wholesale; a rejected candidate leaves it untouched.
type MnemonicSession struct {
	mu         sync.RWMutex
	phrase     string
	passphrase string
	seed       []byte
}

// NewMnemonicSession returns an empty session. passphrase is the optional
// BIP-39 passphrase ("" for none) used for every phrase in the session.
func NewMnemonicSession(passphrase string) *MnemonicSession {
	return &MnemonicSession{passphrase: passphrase}
}

// Generate creates a fresh phrase and makes it the active one.
func (m *MnemonicSession) Generate(words int) (string, error) {
	phrase, err := GenerateMnemonic(words)
	if err != nil {
		return "", err
	}
	if !ValidateMnemonic(phrase) {
		return "", fmt.Errorf("generated mnemonic failed validation: %w", ErrInvalidMnemonic)
	}
	m.replace(phrase)
	return phrase, nil
}

// Adopt validates candidate and, if valid, makes it the active phrase.
func (m *MnemonicSession) Adopt(candidate string) (string, error) {
	phrase := NormalizeMnemonic(candidate)
	if !ValidateMnemonic(phrase) {
		return "", ErrInvalidMnemonic
	}
	m.replace(phrase)
	return phrase, nil
}

func (m *MnemonicSession) replace(phrase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	crypto.Zero(m.seed)
	m.seed = nil
	m.phrase = phrase
}

// install makes phrase active with its already computed seed. The session
// takes ownership of seed.
func (m *MnemonicSession) install(phrase string, seed []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	crypto.Zero(m.seed)
	m.seed = seed
	m.phrase = phrase
}

// Phrase returns the active phrase, or "" if none.
func (m *MnemonicSession) Phrase() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phrase
}

// Masked returns the active phrase with every word hidden.
func (m *MnemonicSession) Masked() string {
	return MaskMnemonic(m.Phrase())
}

// HasPhrase reports whether a phrase is active.
func (m *MnemonicSession) HasPhrase() bool {
	return m.Phrase() != ""
}

// Seed returns a copy of the seed for the active phrase. The caller owns the
// copy and should wipe it with crypto.Zero when done.
func (m *MnemonicSession) Seed() ([]byte, error) {
	m.mu.RLock()
	if m.seed != nil {
		out := append([]byte(nil), m.seed...)
		m.mu.RUnlock()
		return out, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phrase == "" {
		return nil, ErrNoMnemonic
	}
	if m.seed == nil {
		seed, err := SeedFromMnemonic(m.phrase, m.passphrase)
		if err != nil {
			return nil, err
		}
		m.seed = seed
	}
	return append([]byte(nil), m.seed...), nil
}

// Fingerprint returns the non-secret fingerprint of the active seed.
func (m *MnemonicSession) Fingerprint() (string, error) {
	seed, err := m.Seed()
	if err != nil {
		return "", err
	}
	defer crypto.Zero(seed)
	return crypto.Fingerprint(seed), nil
}

// Wipe forgets the phrase and zeroes the cached seed.
func (m *MnemonicSession) Wipe() {
	m.replace("")
}
