package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key. A mnemonic key is refused so
// phrases never end up in a plain-text file.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value
	case "chain":
		cfg.Chain = strings.ToLower(value)

	// Mnemonic
	case "mnemonic.words":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mnemonic.Words = n
	case "mnemonic", "mnemonic.phrase", "seed":
		return fmt.Errorf("secrets are not read from the config file")

	// Index
	case "index.enabled", "index":
		cfg.Index.Enabled = parseBool(value)
	case "index.path":
		cfg.Index.Path = value

	// Balance
	case "balance.solana":
		cfg.Balance.SolanaRPC = value
	case "balance.ethereum":
		cfg.Balance.EthereumRPC = value
	case "balance.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Balance.Timeout = d

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	content := `# Klingkeys Configuration
#
# This file never holds secrets. Mnemonics are typed at a hidden prompt or
# piped on stdin, and are never written to disk.

# Data directory (default: ~/.klingkeys)
# datadir = ~/.klingkeys

# Default chain: solana or ethereum
chain = solana

# ============================================================================
# Mnemonic
# ============================================================================

# Words in generated phrases: 12 or 24
mnemonic.words = 12

# ============================================================================
# Wallet Index
# ============================================================================

# Remember which wallets were listed (derivation index and public key only)
# so they can be restored after a restart.
index.enabled = false
# index.path = ~/.klingkeys/index

# ============================================================================
# Balance Lookup
# ============================================================================

balance.solana = ` + DefaultSolanaRPC + `
# balance.ethereum = https://<your-ethereum-endpoint>
balance.timeout = ` + DefaultBalanceTimeout.String() + `

# ============================================================================
# Logging
# ============================================================================

log.level = warn
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
