package config

import (
	"fmt"
	"net/url"

	"github.com/Klingon-tech/klingnet-keys/internal/log"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if _, err := chain.Parse(cfg.Chain); err != nil {
		return fmt.Errorf("chain: %w", err)
	}
	if cfg.Mnemonic.Words != 12 && cfg.Mnemonic.Words != 24 {
		return fmt.Errorf("mnemonic.words must be 12 or 24, got %d", cfg.Mnemonic.Words)
	}
	if cfg.Balance.Timeout <= 0 {
		return fmt.Errorf("balance.timeout must be positive")
	}
	if err := validateEndpoint(cfg.Balance.SolanaRPC, "balance.solana"); err != nil {
		return err
	}
	if err := validateEndpoint(cfg.Balance.EthereumRPC, "balance.ethereum"); err != nil {
		return err
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	return nil
}

// validateEndpoint accepts an empty value (lookup disabled) or an absolute
// http(s) URL.
func validateEndpoint(raw, field string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	return nil
}
