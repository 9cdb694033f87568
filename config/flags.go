package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

// Version is the klingkeys release.
const Version = "0.1.0"

// Flags holds parsed global command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string
	Chain   string

	// Mnemonic
	Words int

	// Index
	Index     bool
	IndexPath string

	// Balance
	SolanaRPC   string
	EthereumRPC string
	RPCTimeout  time.Duration

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args: the subcommand and its own flags.
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetIndex   bool
	SetLogJSON bool
}

// ParseFlags parses the global flags in args (without the program name).
// Parsing stops at the first non-flag argument, which starts the subcommand.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("klingkeys", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.Chain, "chain", "", "Default chain (solana or ethereum)")

	// Mnemonic
	fs.IntVar(&f.Words, "words", 0, "Words in generated phrases (12 or 24)")

	// Index
	fs.BoolVar(&f.Index, "index", false, "Remember listed wallets (public data only)")
	fs.StringVar(&f.IndexPath, "index-path", "", "Wallet index directory")

	// Balance
	fs.StringVar(&f.SolanaRPC, "solana-rpc", "", "Solana JSON-RPC endpoint")
	fs.StringVar(&f.EthereumRPC, "ethereum-rpc", "", "Ethereum JSON-RPC endpoint")
	fs.DurationVar(&f.RPCTimeout, "rpc-timeout", 0, "Balance request timeout")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.SetIndex = isFlagSet(fs, "index")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Chain != "" {
		cfg.Chain = f.Chain
	}

	// Mnemonic
	if f.Words != 0 {
		cfg.Mnemonic.Words = f.Words
	}

	// Index
	if f.SetIndex {
		cfg.Index.Enabled = f.Index
	}
	if f.IndexPath != "" {
		cfg.Index.Path = f.IndexPath
	}

	// Balance
	if f.SolanaRPC != "" {
		cfg.Balance.SolanaRPC = f.SolanaRPC
	}
	if f.EthereumRPC != "" {
		cfg.Balance.EthereumRPC = f.EthereumRPC
	}
	if f.RPCTimeout != 0 {
		cfg.Balance.Timeout = f.RPCTimeout
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// ApplyEnv applies the RPC endpoint environment variables
// SOLANA_RPC_URL and ETHEREUM_RPC_URL.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("SOLANA_RPC_URL"); v != "" {
		cfg.Balance.SolanaRPC = v
	}
	if v := getenv("ETHEREUM_RPC_URL"); v != "" {
		cfg.Balance.EthereumRPC = v
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the global help text to w.
func PrintUsage(w io.Writer) {
	usage := `Klingkeys - HD key derivation for Solana and Ethereum

Usage:
  klingkeys [options] <command> [command options]
  klingkeys --help

Commands:
  chains                          List supported chains
  mnemonic new                    Generate a new mnemonic
  mnemonic check                  Validate a mnemonic read from stdin
  derive [--index N] [--count N]  Derive wallets from a mnemonic on stdin
  balance --address ADDR          Look up a native-coin balance
  shell                           Interactive session

Core Options:
  --datadir       Data directory (default: ~/.klingkeys)
  --config, -c    Config file path (default: <datadir>/klingkeys.conf)
  --chain         Default chain: solana (default) or ethereum
  --words         Words in generated phrases: 12 (default) or 24

Index Options:
  --index         Remember listed wallets (indices and public keys only)
  --index-path    Index directory (default: <datadir>/index)

Balance Options:
  --solana-rpc    Solana JSON-RPC endpoint (env SOLANA_RPC_URL)
  --ethereum-rpc  Ethereum JSON-RPC endpoint (env ETHEREUM_RPC_URL)
  --rpc-timeout   Request timeout (default: 10s)

Logging Options:
  --log-level     Log level: debug, info, warn (default), error, disabled
  --log-file      Log file path (default: stderr)
  --log-json      Output logs as JSON

Examples:
  # Generate a 24-word phrase
  klingkeys --words=24 mnemonic new

  # Derive the first five Ethereum wallets of a phrase
  klingkeys --chain=ethereum derive --count 5 < phrase.txt

  # Interactive session that remembers listed wallets
  klingkeys --index shell

Note:
  Mnemonics and private keys are never written to disk or logs.
`
	fmt.Fprint(w, usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Environment endpoints
// 5. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := FromFlags(flags)
	if err != nil {
		return nil, nil, err
	}
	return cfg, flags, nil
}

// FromFlags builds the configuration for already-parsed flags.
func FromFlags(flags *Flags) (*Config, error) {
	cfg := Default()

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyEnv(cfg, os.Getenv)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. It is idempotent.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
