// Package chain defines the supported blockchains and how keys are derived
// and encoded for each of them.
//
// Every chain is one entry in the specs table: adding a chain means adding an
// ID constant and its Spec, nothing else.
package chain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedChain is returned for chain IDs or names that have no Spec.
var ErrUnsupportedChain = errors.New("unsupported chain")

// ID identifies a supported blockchain.
type ID uint8

const (
	// Solana keys are ed25519, derived with SLIP-0010.
	Solana ID = iota + 1
	// Ethereum keys are secp256k1, derived with BIP-32.
	Ethereum
)

// Curve selects the key derivation scheme for a chain.
type Curve uint8

const (
	// Ed25519SLIP10 derives ed25519 keys per SLIP-0010 (hardened only).
	Ed25519SLIP10 Curve = iota + 1
	// Secp256k1BIP32 derives secp256k1 keys per BIP-32.
	Secp256k1BIP32
)

// String returns the curve tag.
func (c Curve) String() string {
	switch c {
	case Ed25519SLIP10:
		return "ed25519-slip10"
	case Secp256k1BIP32:
		return "secp256k1-bip32"
	default:
		return fmt.Sprintf("curve(%d)", uint8(c))
	}
}

// Spec describes how wallets are derived and encoded for one chain.
type Spec struct {
	ID       ID
	Name     string // lower-case identifier, e.g. "solana"
	Symbol   string // ticker used when printing balances
	CoinType uint32 // SLIP-0044 coin type (unhardened value)
	Curve    Curve
	Decimals int32 // base units per coin, as a power of ten
	Encoder  Encoder
}

// Path returns the derivation path m/44'/coin'/index'/0' for a wallet index.
func (s Spec) Path(index uint32) (DerivationPath, error) {
	if index >= HardenedKeyStart {
		return nil, fmt.Errorf("index %d exceeds hardened range [0, %d]", index, HardenedKeyStart-1)
	}
	return DerivationPath{
		HardenedKeyStart + PurposeBIP44,
		HardenedKeyStart + s.CoinType,
		HardenedKeyStart + index,
		HardenedKeyStart + ChangeExternal,
	}, nil
}

var specs = map[ID]Spec{
	Solana: {
		ID:       Solana,
		Name:     "solana",
		Symbol:   "SOL",
		CoinType: 501,
		Curve:    Ed25519SLIP10,
		Decimals: 9,
		Encoder:  solanaEncoder{},
	},
	Ethereum: {
		ID:       Ethereum,
		Name:     "ethereum",
		Symbol:   "ETH",
		CoinType: 60,
		Curve:    Secp256k1BIP32,
		Decimals: 18,
		Encoder:  ethereumEncoder{},
	},
}

// Resolve returns the Spec registered for id.
func Resolve(id ID) (Spec, error) {
	s, ok := specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %d", ErrUnsupportedChain, uint8(id))
	}
	return s, nil
}

// Parse maps a chain name (case-insensitive) to its ID.
func Parse(name string) (ID, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for id, s := range specs {
		if s.Name == n {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedChain, name)
}

// All returns every registered Spec ordered by ID.
func All() []Spec {
	out := make([]Spec, 0, len(specs))
	for _, s := range specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Names returns the registered chain names ordered by ID.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// String returns the chain name, or a placeholder for unknown IDs.
func (id ID) String() string {
	if s, ok := specs[id]; ok {
		return s.Name
	}
	return fmt.Sprintf("chain(%d)", uint8(id))
}

// Valid reports whether id has a registered Spec.
func (id ID) Valid() bool {
	_, ok := specs[id]
	return ok
}
