package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Klingon-tech/klingnet-keys/internal/log"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
	"github.com/Klingon-tech/klingnet-keys/pkg/crypto"
)

// Options configures a Session.
type Options struct {
	// Chain is the initially selected chain. Defaults to chain.Solana.
	Chain chain.ID
	// Words is the length of generated phrases (12 or 24). Defaults to 12.
	Words int
	// Passphrase is the optional BIP-39 passphrase.
	Passphrase string
	// Mnemonic, if set, is adopted instead of generating a fresh phrase.
	Mnemonic string
	// Index, if set, persists listed wallets per seed and chain.
	Index *Index
}

// Session is one user's working state: the active mnemonic and the wallets
// listed for the selected chain. All methods are safe for concurrent use;
// mutations are serialized and either fully applied or not at all.
type Session struct {
	mu       sync.Mutex
	words    int
	mnemonic *MnemonicSession
	engine   *Engine
	wallets  *Registry

	index       *Index
	fingerprint string
	// pending holds persisted entries that have not been re-derived yet,
	// keyed by derivation index.
	pending map[uint32]string
}

// NewSession creates a session with a generated (or adopted) phrase and an
// empty wallet list.
func NewSession(opts Options) (*Session, error) {
	if opts.Chain == 0 {
		opts.Chain = chain.Solana
	}
	if _, err := chain.Resolve(opts.Chain); err != nil {
		return nil, err
	}
	if opts.Words == 0 {
		opts.Words = WordCount12
	}
	if opts.Words != WordCount12 && opts.Words != WordCount24 {
		return nil, fmt.Errorf("unsupported word count %d (want 12 or 24)", opts.Words)
	}

	ms := NewMnemonicSession(opts.Passphrase)
	s := &Session{
		words:    opts.Words,
		mnemonic: ms,
		engine:   NewEngine(ms),
		wallets:  NewRegistry(opts.Chain),
		index:    opts.Index,
	}

	var err error
	if opts.Mnemonic != "" {
		_, err = ms.Adopt(opts.Mnemonic)
	} else {
		_, err = ms.Generate(opts.Words)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadIndexLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMnemonic generates a fresh phrase, makes it active and clears the
// wallet list in one step. On error the session is unchanged.
func (s *Session) NewMnemonic() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	phrase, err := GenerateMnemonic(s.words)
	if err != nil {
		return "", err
	}
	if err := s.switchPhraseLocked(phrase); err != nil {
		return "", err
	}
	return phrase, nil
}

// AdoptMnemonic validates candidate and, if it is a valid phrase, makes it
// active and clears the wallet list in one step. An invalid candidate
// returns ErrInvalidMnemonic and changes nothing, as does a failed index
// lookup for the candidate seed.
func (s *Session) AdoptMnemonic(candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	phrase := NormalizeMnemonic(candidate)
	if !ValidateMnemonic(phrase) {
		log.Session.Debug().Msg("Rejected mnemonic")
		return ErrInvalidMnemonic
	}
	return s.switchPhraseLocked(phrase)
}

// switchPhraseLocked reads the index record of the candidate seed before
// touching any session state, then swaps the phrase and the wallet list.
func (s *Session) switchPhraseLocked(phrase string) error {
	seed, err := SeedFromMnemonic(phrase, s.mnemonic.passphrase)
	if err != nil {
		return err
	}
	fp := crypto.Fingerprint(seed)
	rec, err := s.readIndex(fp, s.wallets.Chain())
	if err != nil {
		crypto.Zero(seed)
		return err
	}

	s.mnemonic.install(phrase, seed)
	s.wallets.Reset()
	s.applyIndexLocked(fp, rec)
	log.Session.Info().Str("fingerprint", fp).Msg("Mnemonic replaced")
	return nil
}

// Mnemonic returns the active phrase, masked unless reveal is set.
func (s *Session) Mnemonic(reveal bool) string {
	if reveal {
		return s.mnemonic.Phrase()
	}
	return s.mnemonic.Masked()
}

// Fingerprint returns the non-secret fingerprint of the active seed.
func (s *Session) Fingerprint() (string, error) {
	return s.mnemonic.Fingerprint()
}

// Chain returns the selected chain.
func (s *Session) Chain() chain.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets.Chain()
}

// SelectChain switches the selected chain. Switching to a different chain
// empties the wallet list; selecting the current chain is a no-op. If the
// index record for the new chain cannot be read nothing changes.
func (s *Session) SelectChain(id chain.ID) error {
	if _, err := chain.Resolve(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.wallets.Chain() {
		return nil
	}
	var (
		fp  string
		rec *IndexRecord
	)
	if s.index != nil {
		var err error
		if fp, err = s.mnemonic.Fingerprint(); err != nil {
			return err
		}
		if rec, err = s.readIndex(fp, id); err != nil {
			return err
		}
	}

	s.wallets.Select(id)
	s.applyIndexLocked(fp, rec)
	log.Session.Info().Str("chain", id.String()).Msg("Chain selected")
	return nil
}

// NextIndex returns the derivation index GenerateNext will use.
func (s *Session) NextIndex() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets.NextIndex()
}

// GenerateNext derives the wallet at the next unused index and appends it.
// If ctx is cancelled nothing is appended.
func (s *Session) GenerateNext(ctx context.Context) (WalletView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.engine.Derive(ctx, s.wallets.Chain(), s.wallets.NextIndex())
	if err != nil {
		return WalletView{}, err
	}
	if err := s.commitLocked(func() error { return s.wallets.Append(w) }); err != nil {
		w.wipe()
		return WalletView{}, err
	}
	log.Session.Debug().Stringer("wallet", w).Msg("Wallet generated")
	return w.view(s.wallets.Len() - 1), nil
}

// GenerateN derives the next n wallets in parallel and appends all of them,
// or none on error. n may not exceed MaxBatch.
func (s *Session) GenerateN(ctx context.Context, n int) ([]WalletView, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", n)
	}
	if n > MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, n, MaxBatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.wallets.NextIndex()
	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = start + uint32(i)
	}
	ws, err := s.engine.DeriveBatch(ctx, s.wallets.Chain(), indices)
	if err != nil {
		return nil, err
	}
	if err := s.commitLocked(func() error { return s.wallets.Append(ws...) }); err != nil {
		wipeAll(ws)
		return nil, err
	}

	first := s.wallets.Len() - n
	out := make([]WalletView, n)
	for i, w := range ws {
		out[i] = w.view(first + i)
	}
	log.Session.Debug().Int("count", n).Uint32("first_index", start).Msg("Wallets generated")
	return out, nil
}

// DeriveAt derives the wallet at an explicit derivation index and appends
// it. Indices already listed are rejected with ErrDuplicateIndex.
func (s *Session) DeriveAt(ctx context.Context, index uint32) (WalletView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wallets.Contains(index) {
		return WalletView{}, fmt.Errorf("%w: %d", ErrDuplicateIndex, index)
	}
	w, err := s.engine.Derive(ctx, s.wallets.Chain(), index)
	if err != nil {
		return WalletView{}, err
	}
	err = s.commitLocked(func() error {
		if err := s.wallets.Append(w); err != nil {
			return err
		}
		delete(s.pending, index)
		return nil
	})
	if err != nil {
		w.wipe()
		return WalletView{}, err
	}
	log.Session.Debug().Stringer("wallet", w).Msg("Wallet derived at index")
	return w.view(s.wallets.Len() - 1), nil
}

// ToggleReveal flips whether the private key at display position pos is
// shown, and returns the new state.
func (s *Session) ToggleReveal(pos int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets.ToggleReveal(pos)
}

// Delete unlists the wallet at display position pos and returns its
// derivation index. Remaining wallets keep their indices.
func (s *Session) Delete(pos int) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed *Wallet
	err := s.commitLocked(func() error {
		w, err := s.wallets.Remove(pos)
		removed = w
		return err
	})
	if err != nil {
		return 0, err
	}
	index := removed.Index
	log.Session.Debug().Stringer("wallet", removed).Msg("Wallet deleted")
	removed.wipe()
	return index, nil
}

// Wallets returns snapshots of the listed wallets in display order.
func (s *Session) Wallets() []WalletView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets.Views()
}

// Wallet returns the snapshot at display position pos.
func (s *Session) Wallet(pos int) (WalletView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.wallets.At(pos)
	if err != nil {
		return WalletView{}, err
	}
	return w.view(pos), nil
}

// Pending returns persisted derivation indices that Restore would re-derive.
func (s *Session) Pending() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingIndicesLocked()
}

// Restore re-derives the wallets recorded in the index for the active seed
// and chain and appends them. It returns how many were restored.
func (s *Session) Restore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	indices := s.pendingIndicesLocked()
	if len(indices) == 0 {
		return 0, nil
	}
	ws, err := s.engine.DeriveBatch(ctx, s.wallets.Chain(), indices)
	if err != nil {
		return 0, err
	}
	for _, w := range ws {
		if want := s.pending[w.Index]; w.PublicKey != want {
			wipeAll(ws)
			return 0, fmt.Errorf("restored wallet %d has public key %s, index recorded %s", w.Index, w.PublicKey, want)
		}
	}
	err = s.commitLocked(func() error {
		if err := s.wallets.Append(ws...); err != nil {
			return err
		}
		for _, idx := range indices {
			delete(s.pending, idx)
		}
		return nil
	})
	if err != nil {
		wipeAll(ws)
		return 0, err
	}
	log.Session.Info().Int("count", len(ws)).Str("chain", s.wallets.Chain().String()).Msg("Wallets restored")
	return len(ws), nil
}

// Forget erases every index record of the active seed, on all chains, and
// drops the pending set. Listed wallets stay listed and are written back on
// the next change; the high-water mark is kept for the rest of the session.
func (s *Session) Forget() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return ErrNoIndex
	}
	if s.fingerprint == "" {
		return errors.New("wallet index not loaded for active mnemonic")
	}
	if err := s.index.Forget(s.fingerprint); err != nil {
		return err
	}
	s.pending = make(map[uint32]string)
	log.Storage.Info().Str("fingerprint", s.fingerprint).Msg("Wallet index forgotten")
	return nil
}

// Close wipes the phrase, the seed and all private keys.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets.Reset()
	s.mnemonic.Wipe()
	s.pending = nil
	s.fingerprint = ""
}

// commitLocked applies fn to the registry and persists the result. If either
// step fails the registry and pending set are rolled back.
func (s *Session) commitLocked(fn func() error) error {
	prev := s.wallets.state()
	prevPending := make(map[uint32]string, len(s.pending))
	for k, v := range s.pending {
		prevPending[k] = v
	}

	err := fn()
	if err == nil {
		err = s.persistLocked()
	}
	if err != nil {
		s.wallets.restore(prev)
		s.pending = prevPending
		return err
	}
	return nil
}

// loadIndexLocked reads the index record for the active seed and chain and
// applies it.
func (s *Session) loadIndexLocked() error {
	if s.index == nil {
		s.applyIndexLocked("", nil)
		return nil
	}
	fp, err := s.mnemonic.Fingerprint()
	if err != nil {
		return err
	}
	rec, err := s.readIndex(fp, s.wallets.Chain())
	if err != nil {
		return err
	}
	s.applyIndexLocked(fp, rec)
	return nil
}

// readIndex returns the record for fp and id, or nil when no index is
// configured. It never modifies the session.
func (s *Session) readIndex(fp string, id chain.ID) (*IndexRecord, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.Load(fp, id)
}

// applyIndexLocked raises the high-water mark from rec and fills the pending
// set. A nil rec means no index: nothing is pending or persisted.
func (s *Session) applyIndexLocked(fp string, rec *IndexRecord) {
	s.pending = nil
	s.fingerprint = ""
	if rec == nil {
		return
	}
	s.fingerprint = fp
	s.pending = make(map[uint32]string, len(rec.Entries))
	for _, e := range rec.Entries {
		if !s.wallets.Contains(e.Index) {
			s.pending[e.Index] = e.PublicKey
		}
	}
	s.wallets.raiseNextIndex(rec.NextIndex)
	log.Storage.Debug().
		Str("fingerprint", fp).
		Str("chain", s.wallets.Chain().String()).
		Int("pending", len(s.pending)).
		Uint32("next_index", rec.NextIndex).
		Msg("Wallet index loaded")
}

func (s *Session) persistLocked() error {
	if s.index == nil {
		return nil
	}
	if s.fingerprint == "" {
		return errors.New("wallet index not loaded for active mnemonic")
	}
	rec := &IndexRecord{NextIndex: s.wallets.NextIndex()}
	for idx, pub := range s.pending {
		rec.Entries = append(rec.Entries, IndexEntry{Index: idx, PublicKey: pub})
	}
	for _, w := range s.wallets.wallets {
		rec.Entries = append(rec.Entries, IndexEntry{Index: w.Index, PublicKey: w.PublicKey})
	}
	if err := s.index.Save(s.fingerprint, s.wallets.Chain(), rec); err != nil {
		return fmt.Errorf("persist wallet index: %w", err)
	}
	return nil
}

func (s *Session) pendingIndicesLocked() []uint32 {
	out := make([]uint32, 0, len(s.pending))
	for idx := range s.pending {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func wipeAll(ws []*Wallet) {
	for _, w := range ws {
		w.wipe()
	}
}
