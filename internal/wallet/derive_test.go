package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
)

// solanaIndex0 is the published address of the test phrase at m/44'/501'/0'/0'.
const solanaIndex0 = "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk"

// ethereumAddresses are the test phrase's addresses at m/44'/60'/i'/0'.
var ethereumAddresses = []string{
	"0x1cC31E180CCA3a8698fD6f13765209EC7CB9E755",
	"0x3590821f4FD8B921B74d923475B7DA6c9b2aE83b",
	"0x33b1e0848dcc72662E60A70E40A65c40342EA971",
}

const ethereumIndex0Key = "0x43ff9ebfdccfa25e3921d9500db2f946d46a525fa08004af7f98976d9706cd5c"

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(staticSeed(testSeed(t)))
}

func TestDerive_SolanaGoldenVector(t *testing.T) {
	w, err := testEngine(t).Derive(context.Background(), chain.Solana, 0)
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	if w.PublicKey != solanaIndex0 {
		t.Errorf("public key = %s, want %s", w.PublicKey, solanaIndex0)
	}
	if w.Path != "m/44'/501'/0'/0'" {
		t.Errorf("path = %s", w.Path)
	}
	if w.Index != 0 || w.Chain != chain.Solana || w.Revealed {
		t.Errorf("unexpected wallet fields: %+v", w)
	}
	if n := len(w.PrivateKey()); n < 86 || n > 88 {
		t.Errorf("base58 secret key length = %d, want 86-88", n)
	}
}

func TestDerive_EthereumEncoding(t *testing.T) {
	w, err := testEngine(t).Derive(context.Background(), chain.Ethereum, 0)
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	if w.Path != "m/44'/60'/0'/0'" {
		t.Errorf("path = %s", w.Path)
	}
	if !strings.HasPrefix(w.PublicKey, "0x") || len(w.PublicKey) != 42 {
		t.Errorf("address = %s, want 0x + 40 hex", w.PublicKey)
	}
	if !strings.HasPrefix(w.PrivateKey(), "0x") || len(w.PrivateKey()) != 66 {
		t.Errorf("private key has %d chars, want 0x + 64 hex", len(w.PrivateKey()))
	}

	// The chain path must agree with the raw primitive on the same path.
	pub, _, err := DeriveSecp256k1(testSeed(t), chain.MustParsePath(w.Path))
	if err != nil {
		t.Fatalf("DeriveSecp256k1() error: %v", err)
	}
	spec, _ := chain.Resolve(chain.Ethereum)
	addr, _ := spec.Encoder.PublicKey(pub)
	if addr != w.PublicKey {
		t.Errorf("engine address %s != primitive address %s", w.PublicKey, addr)
	}
}

func TestDerive_EthereumGoldenVectors(t *testing.T) {
	e := testEngine(t)
	for i, want := range ethereumAddresses {
		w, err := e.Derive(context.Background(), chain.Ethereum, uint32(i))
		if err != nil {
			t.Fatalf("Derive(%d) error: %v", i, err)
		}
		if w.PublicKey != want {
			t.Errorf("index %d address = %s, want %s", i, w.PublicKey, want)
		}
		if i == 0 && w.PrivateKey() != ethereumIndex0Key {
			t.Errorf("index 0 private key mismatch")
		}
	}
}

// The common wallet path m/44'/60'/0'/0/0 has a widely published address
// for the test phrase; it pins BIP-32 plus EIP-55 encoding end to end.
func TestDeriveSecp256k1_PublishedEthereumAddress(t *testing.T) {
	pub, _, err := DeriveSecp256k1(testSeed(t), chain.MustParsePath("m/44'/60'/0'/0/0"))
	if err != nil {
		t.Fatalf("DeriveSecp256k1() error: %v", err)
	}
	spec, _ := chain.Resolve(chain.Ethereum)
	addr, err := spec.Encoder.PublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	if want := "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"; addr != want {
		t.Errorf("address = %s, want %s", addr, want)
	}
}

func TestDerive_Deterministic(t *testing.T) {
	ctx := context.Background()
	for _, id := range []chain.ID{chain.Solana, chain.Ethereum} {
		e1 := testEngine(t)
		e2 := testEngine(t)
		for idx := uint32(0); idx < 3; idx++ {
			a, err := e1.Derive(ctx, id, idx)
			if err != nil {
				t.Fatalf("Derive() error: %v", err)
			}
			b, err := e2.Derive(ctx, id, idx)
			if err != nil {
				t.Fatalf("Derive() error: %v", err)
			}
			if a.PublicKey != b.PublicKey || a.PrivateKey() != b.PrivateKey() {
				t.Errorf("%v index %d not deterministic", id, idx)
			}
		}
	}
}

func TestDerive_IndicesDiffer(t *testing.T) {
	e := testEngine(t)
	seen := make(map[string]bool)
	for idx := uint32(0); idx < 5; idx++ {
		w, err := e.Derive(context.Background(), chain.Solana, idx)
		if err != nil {
			t.Fatalf("Derive() error: %v", err)
		}
		if seen[w.PublicKey] {
			t.Fatalf("index %d repeats an earlier key", idx)
		}
		seen[w.PublicKey] = true
	}
}

func TestDerive_UnsupportedChain(t *testing.T) {
	_, err := testEngine(t).Derive(context.Background(), chain.ID(99), 0)
	if !errors.Is(err, chain.ErrUnsupportedChain) {
		t.Errorf("error = %v, want ErrUnsupportedChain", err)
	}
}

func TestDerive_IndexOutOfHardenedRange(t *testing.T) {
	_, err := testEngine(t).Derive(context.Background(), chain.Solana, chain.HardenedKeyStart)
	if !errors.Is(err, ErrDerivationFailed) {
		t.Errorf("error = %v, want ErrDerivationFailed", err)
	}
}

func TestDerive_PrimitiveFailure(t *testing.T) {
	// A 4-byte seed is rejected by both primitives.
	e := NewEngine(staticSeed{1, 2, 3, 4})
	for _, id := range []chain.ID{chain.Solana, chain.Ethereum} {
		w, err := e.Derive(context.Background(), id, 0)
		if !errors.Is(err, ErrDerivationFailed) {
			t.Errorf("%v error = %v, want ErrDerivationFailed", id, err)
		}
		if w != nil {
			t.Errorf("%v returned a wallet on failure", id)
		}
	}
}

func TestDerive_NoMnemonic(t *testing.T) {
	e := NewEngine(NewMnemonicSession(""))
	if _, err := e.Derive(context.Background(), chain.Solana, 0); !errors.Is(err, ErrNoMnemonic) {
		t.Errorf("error = %v, want ErrNoMnemonic", err)
	}
}

func TestDerive_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w, err := testEngine(t).Derive(ctx, chain.Solana, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if w != nil {
		t.Error("cancelled derive returned a wallet")
	}
}

func TestDeriveBatch_MatchesSequential(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	indices := []uint32{4, 0, 2, 9}

	batch, err := e.DeriveBatch(ctx, chain.Ethereum, indices)
	if err != nil {
		t.Fatalf("DeriveBatch() error: %v", err)
	}
	if len(batch) != len(indices) {
		t.Fatalf("len = %d, want %d", len(batch), len(indices))
	}
	for i, idx := range indices {
		w, _ := e.Derive(ctx, chain.Ethereum, idx)
		if batch[i].Index != idx || batch[i].PublicKey != w.PublicKey {
			t.Errorf("batch[%d] = #%d %s, want #%d %s", i, batch[i].Index, batch[i].PublicKey, idx, w.PublicKey)
		}
	}
}

func TestDeriveBatch_FailureReturnsNothing(t *testing.T) {
	ws, err := testEngine(t).DeriveBatch(context.Background(), chain.Solana, []uint32{0, chain.HardenedKeyStart})
	if !errors.Is(err, ErrDerivationFailed) {
		t.Errorf("error = %v, want ErrDerivationFailed", err)
	}
	if ws != nil {
		t.Error("failed batch returned wallets")
	}
}

func TestWalletString_OmitsSecret(t *testing.T) {
	w, err := testEngine(t).Derive(context.Background(), chain.Solana, 0)
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	if strings.Contains(w.String(), w.PrivateKey()) {
		t.Error("Wallet.String() leaks the private key")
	}
	v := w.view(0)
	if v.PrivateKey != MaskedSecret {
		t.Errorf("unrevealed view private key = %q, want mask", v.PrivateKey)
	}
	w.Revealed = true
	v = w.view(0)
	if v.PrivateKey != w.PrivateKey() {
		t.Error("revealed view should carry the private key")
	}
	if strings.Contains(v.String(), w.PrivateKey()) {
		t.Error("WalletView.String() leaks the private key")
	}
}
