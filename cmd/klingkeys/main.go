// klingkeys derives Solana and Ethereum wallets from a BIP-39 mnemonic.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Klingon-tech/klingnet-keys/config"
	"github.com/Klingon-tech/klingnet-keys/internal/balance"
	"github.com/Klingon-tech/klingnet-keys/internal/log"
	"github.com/Klingon-tech/klingnet-keys/internal/storage"
	"github.com/Klingon-tech/klingnet-keys/internal/wallet"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
	"github.com/Klingon-tech/klingnet-keys/pkg/crypto"
	"golang.org/x/term"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
	if flags.Help {
		config.PrintUsage(os.Stdout)
		return
	}
	if flags.Version {
		fmt.Println("klingkeys version " + config.Version)
		return
	}
	if len(flags.Args) == 0 {
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.FromFlags(flags)
	if err != nil {
		fatal("%v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := flags.Args[0]
	cmdArgs := flags.Args[1:]

	switch cmd {
	case "chains":
		cmdChains()
	case "mnemonic":
		cmdMnemonic(cfg, cmdArgs)
	case "derive":
		cmdDerive(ctx, cfg, cmdArgs)
	case "balance":
		cmdBalance(ctx, cfg, cmdArgs)
	case "shell":
		cmdShell(ctx, cfg, cmdArgs)
	case "help":
		config.PrintUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
}

// ── chains ──────────────────────────────────────────────────────────────

func cmdChains() {
	fmt.Printf("%-10s %-6s %-5s %-16s %s\n", "CHAIN", "SYMBOL", "COIN", "CURVE", "PATH")
	for _, s := range chain.All() {
		fmt.Printf("%-10s %-6s %-5d %-16s m/%d'/%d'/<index>'/%d'\n",
			s.Name, s.Symbol, s.CoinType, s.Curve, chain.PurposeBIP44, s.CoinType, chain.ChangeExternal)
	}
}

// ── mnemonic ────────────────────────────────────────────────────────────

func cmdMnemonic(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: klingkeys mnemonic <new|check> [flags]")
	}

	switch args[0] {
	case "new":
		fs := flag.NewFlagSet("mnemonic new", flag.ExitOnError)
		words := fs.Int("words", cfg.Mnemonic.Words, "Number of words (12 or 24)")
		fs.Parse(args[1:])

		phrase, err := wallet.GenerateMnemonic(*words)
		if err != nil {
			fatal("generate mnemonic: %v", err)
		}
		fmt.Fprintln(os.Stderr, "Mnemonic (write this down, it is shown only once):")
		fmt.Println(phrase)

	case "check":
		phrase, err := readMnemonic("Enter mnemonic: ")
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
		ms := wallet.NewMnemonicSession("")
		if _, err := ms.Adopt(phrase); err != nil {
			fatal("%v", err)
		}
		fp, err := ms.Fingerprint()
		ms.Wipe()
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Valid %d-word mnemonic (fingerprint %s)\n", len(strings.Fields(phrase)), fp)

	default:
		fatal("Unknown mnemonic command: %s\nUsage: klingkeys mnemonic <new|check>", args[0])
	}
}

// ── derive ──────────────────────────────────────────────────────────────

// derivedWallet is the JSON form of a derived wallet.
type derivedWallet struct {
	Chain      string `json:"chain"`
	Index      uint32 `json:"index"`
	Path       string `json:"path"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"`
}

func cmdDerive(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	chainName := fs.String("chain", cfg.Chain, "Chain (solana or ethereum)")
	start := fs.Uint("index", 0, "First derivation index")
	count := fs.Int("count", 1, "Number of wallets")
	reveal := fs.Bool("reveal", false, "Print private keys")
	usePass := fs.Bool("passphrase", false, "Prompt for a BIP-39 passphrase")
	asJSON := fs.Bool("json", false, "Output JSON")
	fs.Parse(args)

	id, err := chain.Parse(*chainName)
	if err != nil {
		fatal("%v", err)
	}
	if err := checkDeriveRange(*start, *count); err != nil {
		fatal("%v", err)
	}

	ms := openMnemonic(*usePass)
	defer ms.Wipe()

	indices := make([]uint32, *count)
	for i := range indices {
		indices[i] = uint32(*start) + uint32(i)
	}
	ws, err := wallet.NewEngine(ms).DeriveBatch(ctx, id, indices)
	if err != nil {
		fatal("derive: %v", err)
	}

	if *asJSON {
		out := make([]derivedWallet, len(ws))
		for i, w := range ws {
			out[i] = derivedWallet{Chain: id.String(), Index: w.Index, Path: w.Path, PublicKey: w.PublicKey}
			if *reveal {
				out[i].PrivateKey = w.PrivateKey()
			}
		}
		printJSON(out)
		return
	}

	for _, w := range ws {
		fmt.Printf("#%-4d %-20s %s\n", w.Index, w.Path, w.PublicKey)
		if *reveal {
			fmt.Printf("      private key: %s\n", w.PrivateKey())
		}
	}
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	chainName := fs.String("chain", cfg.Chain, "Chain (solana or ethereum)")
	address := fs.String("address", "", "Address to look up")
	fs.Parse(args)

	if *address == "" && fs.NArg() > 0 {
		*address = fs.Arg(0)
	}
	if *address == "" {
		fatal("Usage: klingkeys balance [--chain <chain>] --address <address>")
	}
	id, err := chain.Parse(*chainName)
	if err != nil {
		fatal("%v", err)
	}

	client, err := newBalanceClient(cfg)
	if err != nil {
		fatal("%v", err)
	}
	b, err := client.Fetch(ctx, id, *address)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Address: %s\n", b.Address)
	fmt.Printf("Balance: %s\n", b)
}

func newBalanceClient(cfg *config.Config) (*balance.Client, error) {
	return balance.New(map[chain.ID]string{
		chain.Solana:   cfg.Balance.SolanaRPC,
		chain.Ethereum: cfg.Balance.EthereumRPC,
	}, cfg.Balance.Timeout)
}

// ── shell ───────────────────────────────────────────────────────────────

func cmdShell(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	adopt := fs.Bool("adopt", false, "Start from an existing mnemonic instead of a new one")
	usePass := fs.Bool("passphrase", false, "Prompt for a BIP-39 passphrase")
	fs.Parse(args)

	id, err := chain.Parse(cfg.Chain)
	if err != nil {
		fatal("%v", err)
	}
	opts := wallet.Options{Chain: id, Words: cfg.Mnemonic.Words}
	if *usePass {
		opts.Passphrase = readPassphrase()
	}
	if *adopt {
		phrase, err := readMnemonic("Enter mnemonic: ")
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
		opts.Mnemonic = phrase
	}

	if cfg.Index.Enabled {
		db, err := storage.NewBadger(cfg.IndexDir())
		if err != nil {
			fatal("open wallet index: %v", err)
		}
		defer db.Close()
		opts.Index = wallet.NewIndex(db)
	}

	sess, err := wallet.NewSession(opts)
	if err != nil {
		fatal("%v", err)
	}
	defer sess.Close()

	client, err := newBalanceClient(cfg)
	if err != nil {
		fatal("%v", err)
	}

	sh := newShell(sess, client, stdinLines, os.Stdout)
	sh.readSecret = readSecret
	if err := sh.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fatal("%v", err)
	}
}

// ── input helpers ───────────────────────────────────────────────────────

// stdinLines is shared so piped input is consumed line by line across
// prompts.
var stdinLines = bufio.NewReader(os.Stdin)

// readSecret prompts on stderr and reads one line without echo when stdin
// is a terminal, or plainly when it is piped.
func readSecret(prompt string) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr) // newline after hidden input
		if err != nil {
			return "", err
		}
		s := string(b)
		crypto.Zero(b)
		return s, nil
	}
	line, err := stdinLines.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readMnemonic(prompt string) (string, error) {
	phrase, err := readSecret(prompt)
	if err != nil {
		return "", err
	}
	return wallet.NormalizeMnemonic(phrase), nil
}

func readPassphrase() string {
	pass, err := readSecret("Enter BIP-39 passphrase: ")
	if err != nil {
		fatal("read passphrase: %v", err)
	}
	return pass
}

// openMnemonic reads a phrase (and optionally a passphrase) into a fresh
// mnemonic session.
func openMnemonic(usePass bool) *wallet.MnemonicSession {
	pass := ""
	if usePass {
		pass = readPassphrase()
	}
	phrase, err := readMnemonic("Enter mnemonic: ")
	if err != nil {
		fatal("read mnemonic: %v", err)
	}
	ms := wallet.NewMnemonicSession(pass)
	if _, err := ms.Adopt(phrase); err != nil {
		fatal("%v", err)
	}
	return ms
}

// ── output helpers ──────────────────────────────────────────────────────

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("encode output: %v", err)
	}
	fmt.Println(string(data))
}

// ── Error helper ────────────────────────────────────────────────────────

// checkDeriveRange validates the --index/--count pair of the derive command.
func checkDeriveRange(start uint, count int) error {
	switch {
	case count < 1:
		return fmt.Errorf("--count must be at least 1")
	case count > wallet.MaxBatch:
		return fmt.Errorf("--count must be at most %d: %w", wallet.MaxBatch, wallet.ErrBatchTooLarge)
	case uint64(start)+uint64(count) > uint64(chain.HardenedKeyStart):
		return fmt.Errorf("indices must stay below %d", chain.HardenedKeyStart)
	}
	return nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
