// Package config handles klingkeys configuration.
//
// Settings come from three layers, later ones winning:
//   - Built-in defaults
//   - The config file (<datadir>/klingkeys.conf)
//   - Environment endpoints and command-line flags
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds runtime settings. Nothing secret is ever stored here; the
// mnemonic is entered interactively or piped on stdin.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`
	Chain   string `conf:"chain"`

	// Mnemonic generation
	Mnemonic MnemonicConfig

	// Wallet index (public data only)
	Index IndexConfig

	// Balance lookup endpoints
	Balance BalanceConfig

	// Logging
	Log LogConfig
}

// MnemonicConfig holds phrase generation settings.
type MnemonicConfig struct {
	Words int `conf:"mnemonic.words"` // 12 or 24
}

// IndexConfig holds wallet index settings.
type IndexConfig struct {
	Enabled bool   `conf:"index.enabled"`
	Path    string `conf:"index.path"` // Empty means <datadir>/index
}

// BalanceConfig holds JSON-RPC endpoints for balance lookups.
type BalanceConfig struct {
	SolanaRPC   string        `conf:"balance.solana"`
	EthereumRPC string        `conf:"balance.ethereum"`
	Timeout     time.Duration `conf:"balance.timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingkeys
//	macOS:   ~/Library/Application Support/Klingkeys
//	Windows: %APPDATA%\Klingkeys
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingkeys"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Klingkeys")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Klingkeys")
		}
		return filepath.Join(home, "AppData", "Roaming", "Klingkeys")
	default:
		return filepath.Join(home, ".klingkeys")
	}
}

// IndexDir returns the wallet index database directory.
func (c *Config) IndexDir() string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	return filepath.Join(c.DataDir, "index")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingkeys.conf")
}
