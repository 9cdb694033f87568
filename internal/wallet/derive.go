package wallet

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Klingon-tech/klingnet-keys/internal/log"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
	"github.com/Klingon-tech/klingnet-keys/pkg/crypto"
	"golang.org/x/sync/errgroup"
)

// KeyDeriver derives a raw key pair at path from seed.
type KeyDeriver func(seed []byte, path chain.DerivationPath) (pub, priv []byte, err error)

// SeedSource provides seed bytes. Implementations return a copy that the
// caller wipes after use.
type SeedSource interface {
	Seed() ([]byte, error)
}

// Engine derives wallets deterministically from a seed source.
type Engine struct {
	seeds    SeedSource
	derivers map[chain.Curve]KeyDeriver
}

// NewEngine creates an engine with the SLIP-0010 and BIP-32 derivers.
func NewEngine(seeds SeedSource) *Engine {
	return &Engine{
		seeds: seeds,
		derivers: map[chain.Curve]KeyDeriver{
			chain.Ed25519SLIP10:  DeriveEd25519,
			chain.Secp256k1BIP32: DeriveSecp256k1,
		},
	}
}

// Derive returns the wallet at index for the given chain. The result depends
// only on the seed, the chain and the index.
func (e *Engine) Derive(ctx context.Context, id chain.ID, index uint32) (*Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec, err := chain.Resolve(id)
	if err != nil {
		return nil, err
	}
	derive, ok := e.derivers[spec.Curve]
	if !ok {
		return nil, fmt.Errorf("%w: no deriver for curve %s", chain.ErrUnsupportedChain, spec.Curve)
	}
	path, err := spec.Path(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	seed, err := e.seeds.Seed()
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(seed)

	pub, priv, err := derive(seed, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDerivationFailed, path, err)
	}
	defer crypto.Zero(priv)

	pubText, err := spec.Encoder.PublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: encode public key: %w", ErrDerivationFailed, err)
	}
	privText, err := spec.Encoder.PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: encode private key", ErrDerivationFailed)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Wallet.Debug().
		Str("chain", spec.Name).
		Uint32("index", index).
		Str("path", path.String()).
		Str("public_key", pubText).
		Msg("Derived wallet")

	return &Wallet{
		Index:     index,
		Chain:     id,
		Path:      path.String(),
		PublicKey: pubText,
		secret:    []byte(privText),
	}, nil
}

// MaxBatch caps how many wallets one GenerateN call may derive.
const MaxBatch = 1000

// DeriveBatch derives the given indices in parallel, at most GOMAXPROCS at a
// time. Results are returned in the order of indices. On any failure no
// wallet is returned.
func (e *Engine) DeriveBatch(ctx context.Context, id chain.ID, indices []uint32) ([]*Wallet, error) {
	out := make([]*Wallet, len(indices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, idx := range indices {
		g.Go(func() error {
			w, err := e.Derive(gctx, id, idx)
			if err != nil {
				return err
			}
			out[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, w := range out {
			if w != nil {
				w.wipe()
			}
		}
		return nil, err
	}
	return out, nil
}
