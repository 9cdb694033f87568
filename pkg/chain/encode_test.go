package chain

import (
	"encoding/hex"
	"strings"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Compressed secp256k1 generator point, i.e. the public key of private key 1.
const generatorCompressed = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func TestEthereumEncoder_PublicKey(t *testing.T) {
	pub, _ := hex.DecodeString(generatorCompressed)
	got, err := ethereumEncoder{}.PublicKey(pub)
	if err != nil {
		t.Fatalf("PublicKey() error: %v", err)
	}
	if want := "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"; got != want {
		t.Errorf("PublicKey() = %s, want %s", got, want)
	}
}

func TestEthereumEncoder_MatchesKeyFromPrivate(t *testing.T) {
	priv, err := ethcrypto.HexToECDSA(strings.Repeat("0", 63) + "1")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ethereumEncoder{}.PublicKey(ethcrypto.CompressPubkey(&priv.PublicKey))
	if err != nil {
		t.Fatalf("PublicKey() error: %v", err)
	}
	if want := ethcrypto.PubkeyToAddress(priv.PublicKey).Hex(); got != want {
		t.Errorf("PublicKey() = %s, want %s", got, want)
	}
}

func TestEthereumEncoder_PrivateKey(t *testing.T) {
	priv := make([]byte, 32)
	priv[31] = 1
	got, err := ethereumEncoder{}.PrivateKey(priv)
	if err != nil {
		t.Fatalf("PrivateKey() error: %v", err)
	}
	want := "0x" + strings.Repeat("0", 63) + "1"
	if got != want {
		t.Errorf("PrivateKey() = %s, want %s", got, want)
	}

	if _, err := (ethereumEncoder{}).PrivateKey(priv[:31]); err == nil {
		t.Error("expected error for 31-byte key")
	}
}

func TestEthereumEncoder_BadPublicKey(t *testing.T) {
	if _, err := (ethereumEncoder{}).PublicKey([]byte{0x02, 0x01}); err == nil {
		t.Error("expected error for truncated public key")
	}
}

func TestSolanaEncoder(t *testing.T) {
	got, err := solanaEncoder{}.PublicKey(make([]byte, 32))
	if err != nil {
		t.Fatalf("PublicKey() error: %v", err)
	}
	if want := strings.Repeat("1", 32); got != want {
		t.Errorf("PublicKey(zero) = %s, want %s", got, want)
	}
	if _, err := (solanaEncoder{}).PublicKey(make([]byte, 33)); err == nil {
		t.Error("expected error for 33-byte public key")
	}
	if _, err := (solanaEncoder{}).PrivateKey(make([]byte, 32)); err == nil {
		t.Error("expected error for 32-byte secret key")
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		id    ID
		addr  string
		valid bool
	}{
		{Solana, "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk", true},
		{Solana, "0OIl", false},
		{Solana, "1111", false},
		{Ethereum, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", true},
		{Ethereum, "0x9858effd232b4033e47d90003d41ec34ecaeda94", true},
		{Ethereum, "0X9858EFFD232B4033E47D90003D41EC34ECAEDA94", true},
		{Ethereum, "9858EfFD232B4033E47d90003D41EC34EcaEda94", false},
		{Ethereum, "9858effd232b4033e47d90003d41ec34ecaeda94", false},
		{Ethereum, "0x9858efFD232B4033E47d90003D41EC34EcaEda94", false},
		{Ethereum, "0x9858EfFD", false},
		{Ethereum, "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk", false},
	}
	for _, tt := range tests {
		t.Run(tt.id.String()+"/"+tt.addr, func(t *testing.T) {
			s, _ := Resolve(tt.id)
			err := s.Encoder.ValidateAddress(tt.addr)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateAddress(%q) error = %v, want valid=%v", tt.addr, err, tt.valid)
			}
		})
	}
}
