package wallet

import "errors"

var (
	// ErrInvalidMnemonic is returned when a phrase fails BIP-39 validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")
	// ErrNoMnemonic is returned when a seed is requested before any phrase
	// has been generated or adopted.
	ErrNoMnemonic = errors.New("no mnemonic in session")
	// ErrDerivationFailed wraps failures of the underlying key derivation.
	ErrDerivationFailed = errors.New("wallet derivation failed")
	// ErrIndexOutOfRange is returned for display positions that do not exist.
	ErrIndexOutOfRange = errors.New("wallet position out of range")
	// ErrDuplicateIndex is returned when a derivation index is already listed.
	ErrDuplicateIndex = errors.New("derivation index already listed")
	// ErrChainMismatch is returned when a wallet for another chain is
	// appended to the registry.
	ErrChainMismatch = errors.New("wallet chain does not match registry")
	// ErrBatchTooLarge is returned when a batch exceeds MaxBatch wallets.
	ErrBatchTooLarge = errors.New("wallet batch too large")
	// ErrNoIndex is returned by index operations when persistence is off.
	ErrNoIndex = errors.New("wallet index not enabled")
)
