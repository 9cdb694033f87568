package chain

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// Encoder renders raw key material in a chain's canonical text form.
type Encoder interface {
	// PublicKey encodes the public key (or the address derived from it).
	PublicKey(pub []byte) (string, error)
	// PrivateKey encodes the private key in the form wallets import.
	PrivateKey(priv []byte) (string, error)
	// ValidateAddress checks that s is a well-formed public key/address.
	ValidateAddress(s string) error
}

// solanaEncoder uses base58 for both the 32-byte public key and the
// 64-byte seed||pub secret key.
type solanaEncoder struct{}

func (solanaEncoder) PublicKey(pub []byte) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("solana public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	return base58.Encode(pub), nil
}

func (solanaEncoder) PrivateKey(priv []byte) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("solana secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	return base58.Encode(priv), nil
}

func (solanaEncoder) ValidateAddress(s string) error {
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid base58: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return fmt.Errorf("solana address must decode to %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return nil
}

// ethereumEncoder turns a compressed secp256k1 public key into an EIP-55
// address and the private scalar into 0x-prefixed hex.
type ethereumEncoder struct{}

func (ethereumEncoder) PublicKey(pub []byte) (string, error) {
	key, err := ethcrypto.DecompressPubkey(pub)
	if err != nil {
		return "", fmt.Errorf("parse secp256k1 public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*key).Hex(), nil
}

func (ethereumEncoder) PrivateKey(priv []byte) (string, error) {
	if len(priv) != secp256k1.PrivKeyBytesLen {
		return "", fmt.Errorf("secp256k1 private key must be %d bytes, got %d", secp256k1.PrivKeyBytesLen, len(priv))
	}
	return hexutil.Encode(priv), nil
}

// ValidateAddress accepts 0x-prefixed addresses that are all lower case,
// all upper case, or carry a correct EIP-55 checksum.
func (ethereumEncoder) ValidateAddress(s string) error {
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") || !common.IsHexAddress(s) {
		return fmt.Errorf("invalid ethereum address %q", s)
	}
	digits := s[2:]
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return nil
	}
	if want := common.HexToAddress(s).Hex(); digits != want[2:] {
		return fmt.Errorf("ethereum address %q has a bad checksum", s)
	}
	return nil
}
