package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-keys/internal/storage"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
)

// Index persists which wallets a session has listed, so they can be
// re-derived after a restart. It stores public data only: derivation
// indices, public keys and the high-water mark. Secrets never reach it.
//
// Key layout (all under the "k/" prefix namespace):
//
//	Record: "r/<fingerprint>/<chain>" → JSON IndexRecord
//
// fingerprint is crypto.Fingerprint of the seed, so phrases (and
// passphrases) never share records.
type Index struct {
	db storage.DB
}

// IndexRecord is the persisted state of one (seed, chain) pair.
type IndexRecord struct {
	NextIndex uint32       `json:"next_index"`
	Entries   []IndexEntry `json:"entries"`
}

// IndexEntry is one listed wallet.
type IndexEntry struct {
	Index     uint32 `json:"index"`
	PublicKey string `json:"public_key"`
}

// NewIndex creates a wallet index backed by db.
func NewIndex(db storage.DB) *Index {
	return &Index{db: storage.NewPrefixDB(db, []byte("k/"))}
}

func recordKey(fingerprint string, id chain.ID) []byte {
	return []byte(fmt.Sprintf("r/%s/%s", fingerprint, id))
}

// Load returns the record for fingerprint and chain. A missing record is
// returned as an empty one.
func (ix *Index) Load(fingerprint string, id chain.ID) (*IndexRecord, error) {
	data, err := ix.db.Get(recordKey(fingerprint, id))
	if errors.Is(err, storage.ErrNotFound) {
		return &IndexRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load index record: %w", err)
	}
	var rec IndexRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode index record: %w", err)
	}
	return &rec, nil
}

// Save writes the record for fingerprint and chain. Entries are stored in
// index order.
func (ix *Index) Save(fingerprint string, id chain.ID, rec *IndexRecord) error {
	entries := append([]IndexEntry(nil), rec.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	data, err := json.Marshal(IndexRecord{NextIndex: rec.NextIndex, Entries: entries})
	if err != nil {
		return fmt.Errorf("encode index record: %w", err)
	}
	if err := ix.db.Put(recordKey(fingerprint, id), data); err != nil {
		return fmt.Errorf("save index record: %w", err)
	}
	return nil
}

// Forget removes every record stored for fingerprint.
func (ix *Index) Forget(fingerprint string) error {
	ns := storage.NewPrefixDB(ix.db, []byte("r/"+fingerprint+"/"))
	if err := ns.DeleteAll(); err != nil {
		return fmt.Errorf("forget %s: %w", fingerprint, err)
	}
	return nil
}
