package wallet

import (
	"errors"
	"fmt"

	slip10 "github.com/anyproto/go-slip10"

	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
)

// ErrNonHardened is returned when a SLIP-0010 ed25519 path has an
// unhardened level; ed25519 only supports hardened children.
var ErrNonHardened = errors.New("ed25519 derivation requires hardened indices")

// ErrEmptyPath is returned when an ed25519 path has no levels below m.
var ErrEmptyPath = errors.New("ed25519 derivation path has no levels")

// DeriveEd25519 walks path per SLIP-0010 and returns the 32-byte ed25519
// public key and the 64-byte private key (seed || public key).
func DeriveEd25519(seed []byte, path chain.DerivationPath) (pub, priv []byte, err error) {
	if len(seed) < MinSeedSize || len(seed) > MaxSeedSize {
		return nil, nil, fmt.Errorf("seed must be %d to %d bytes, got %d", MinSeedSize, MaxSeedSize, len(seed))
	}
	if len(path) == 0 {
		return nil, nil, ErrEmptyPath
	}
	for _, idx := range path {
		if idx < chain.HardenedKeyStart {
			return nil, nil, fmt.Errorf("%w: level %d", ErrNonHardened, idx)
		}
	}

	node, err := slip10.DeriveForPath(path.String(), seed)
	if err != nil {
		return nil, nil, fmt.Errorf("slip10 derive %s: %w", path, err)
	}
	pk, sk := node.Keypair()
	return append([]byte(nil), pk[:]...), append([]byte(nil), sk[:]...), nil
}
