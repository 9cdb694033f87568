package config

import "time"

// DefaultSolanaRPC is the public Solana mainnet endpoint.
const DefaultSolanaRPC = "https://api.mainnet-beta.solana.com"

// DefaultBalanceTimeout bounds a single balance request.
const DefaultBalanceTimeout = 10 * time.Second

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Chain:   "solana",
		Mnemonic: MnemonicConfig{
			Words: 12,
		},
		Index: IndexConfig{
			Enabled: false,
		},
		Balance: BalanceConfig{
			SolanaRPC: DefaultSolanaRPC,
			// There is no canonical public Ethereum endpoint; set
			// balance.ethereum or ETHEREUM_RPC_URL.
			Timeout: DefaultBalanceTimeout,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}
