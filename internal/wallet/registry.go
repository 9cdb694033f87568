package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
)

// Registry is the ordered list of wallets derived for the selected chain.
//
// Display positions shift on deletion; derivation indices never change. New
// wallets take the next index from a high-water mark that only grows, so a
// deleted index is never handed out again implicitly.
//
// Registry is not safe for concurrent use; Session serializes access.
type Registry struct {
	chain   chain.ID
	wallets []*Wallet
	next    uint32
}

// registryState is a cheap copy of a Registry for rollback.
type registryState struct {
	wallets []*Wallet
	next    uint32
}

// NewRegistry returns an empty registry for id.
func NewRegistry(id chain.ID) *Registry {
	return &Registry{chain: id}
}

// Chain returns the selected chain.
func (r *Registry) Chain() chain.ID {
	return r.chain
}

// Select switches to id, clearing the list if the chain changes.
// Reports whether a switch happened.
func (r *Registry) Select(id chain.ID) bool {
	if id == r.chain {
		return false
	}
	r.Reset()
	r.chain = id
	return true
}

// Reset drops every wallet, wiping its private key, and rewinds the
// high-water mark.
func (r *Registry) Reset() {
	for _, w := range r.wallets {
		w.wipe()
	}
	r.wallets = nil
	r.next = 0
}

// NextIndex returns the derivation index the next generated wallet gets.
func (r *Registry) NextIndex() uint32 {
	return r.next
}

// raiseNextIndex moves the high-water mark up to n; it never lowers it.
func (r *Registry) raiseNextIndex(n uint32) {
	if n > r.next {
		r.next = n
	}
}

// Len returns the number of listed wallets.
func (r *Registry) Len() int {
	return len(r.wallets)
}

// Contains reports whether a wallet with derivation index is listed.
func (r *Registry) Contains(index uint32) bool {
	for _, w := range r.wallets {
		if w.Index == index {
			return true
		}
	}
	return false
}

// Append adds wallets in order. Either all are appended or none.
func (r *Registry) Append(ws ...*Wallet) error {
	seen := make(map[uint32]struct{}, len(ws))
	for _, w := range ws {
		if w.Chain != r.chain {
			return fmt.Errorf("%w: %s wallet in %s registry", ErrChainMismatch, w.Chain, r.chain)
		}
		if _, dup := seen[w.Index]; dup || r.Contains(w.Index) {
			return fmt.Errorf("%w: %d", ErrDuplicateIndex, w.Index)
		}
		seen[w.Index] = struct{}{}
	}
	for _, w := range ws {
		r.wallets = append(r.wallets, w)
		r.raiseNextIndex(w.Index + 1)
	}
	return nil
}

// At returns the wallet at display position pos.
func (r *Registry) At(pos int) (*Wallet, error) {
	if pos < 0 || pos >= len(r.wallets) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, pos, len(r.wallets))
	}
	return r.wallets[pos], nil
}

// ToggleReveal flips the Revealed flag of the wallet at pos and returns the
// new value.
func (r *Registry) ToggleReveal(pos int) (bool, error) {
	w, err := r.At(pos)
	if err != nil {
		return false, err
	}
	w.Revealed = !w.Revealed
	return w.Revealed, nil
}

// Remove unlists the wallet at pos and returns it. Later wallets move up one
// position. The caller is responsible for wiping the returned wallet.
func (r *Registry) Remove(pos int) (*Wallet, error) {
	w, err := r.At(pos)
	if err != nil {
		return nil, err
	}
	r.wallets = append(r.wallets[:pos:pos], r.wallets[pos+1:]...)
	return w, nil
}

// Views returns snapshots of all listed wallets in display order.
func (r *Registry) Views() []WalletView {
	out := make([]WalletView, len(r.wallets))
	for i, w := range r.wallets {
		out[i] = w.view(i)
	}
	return out
}

// Indices returns the derivation indices in display order.
func (r *Registry) Indices() []uint32 {
	out := make([]uint32, len(r.wallets))
	for i, w := range r.wallets {
		out[i] = w.Index
	}
	return out
}

func (r *Registry) state() registryState {
	return registryState{
		wallets: append([]*Wallet(nil), r.wallets...),
		next:    r.next,
	}
}

func (r *Registry) restore(s registryState) {
	r.wallets = s.wallets
	r.next = s.next
}
