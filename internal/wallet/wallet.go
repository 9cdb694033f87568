package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
	"github.com/Klingon-tech/klingnet-keys/pkg/crypto"
)

// MaskedSecret is shown in place of a private key that is not revealed.
const MaskedSecret = "********"

// Wallet is one derived key pair. It is created only by Engine.
type Wallet struct {
	Index     uint32
	Chain     chain.ID
	Path      string
	PublicKey string
	Revealed  bool

	secret []byte // encoded private key
}

// PrivateKey returns the encoded private key regardless of Revealed.
func (w *Wallet) PrivateKey() string {
	return string(w.secret)
}

// String omits the private key so wallets can be logged safely.
func (w *Wallet) String() string {
	return fmt.Sprintf("%s wallet #%d %s (%s)", w.Chain, w.Index, w.PublicKey, w.Path)
}

func (w *Wallet) wipe() {
	crypto.Zero(w.secret)
	w.secret = nil
}

// WalletView is a read-only snapshot of a listed wallet. PrivateKey holds
// the secret only when Revealed is set, MaskedSecret otherwise.
type WalletView struct {
	Position   int
	Index      uint32
	Chain      chain.ID
	Path       string
	PublicKey  string
	PrivateKey string
	Revealed   bool
}

// String omits the private key so views can be logged safely.
func (v WalletView) String() string {
	return fmt.Sprintf("[%d] %s #%d %s", v.Position, v.Chain, v.Index, v.PublicKey)
}

func (w *Wallet) view(pos int) WalletView {
	v := WalletView{
		Position:   pos,
		Index:      w.Index,
		Chain:      w.Chain,
		Path:       w.Path,
		PublicKey:  w.PublicKey,
		PrivateKey: MaskedSecret,
		Revealed:   w.Revealed,
	}
	if w.Revealed {
		v.PrivateKey = w.PrivateKey()
	}
	return v
}
