package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-keys/internal/balance"
	"github.com/Klingon-tech/klingnet-keys/internal/log"
	"github.com/Klingon-tech/klingnet-keys/internal/wallet"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
)

// balanceTimeout bounds a single balance lookup started from the shell.
const balanceTimeout = 30 * time.Second

var errQuit = errors.New("quit")

// shell is the interactive front end over one wallet session.
type shell struct {
	sess    *wallet.Session
	balance balance.Fetcher
	in      *bufio.Reader
	out     io.Writer

	// readSecret reads a phrase without echoing it.
	readSecret func(prompt string) (string, error)
}

func newShell(sess *wallet.Session, bal balance.Fetcher, in io.Reader, out io.Writer) *shell {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	sh := &shell{sess: sess, balance: bal, in: br, out: out}
	sh.readSecret = func(prompt string) (string, error) {
		fmt.Fprint(sh.out, prompt)
		line, err := sh.in.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	return sh
}

// run reads commands until quit, EOF or ctx cancellation.
func (sh *shell) run(ctx context.Context) error {
	sh.printf("klingkeys shell on %s. Type 'help' for commands.\n", sh.sess.Chain())
	if pending := sh.sess.Pending(); len(pending) > 0 {
		sh.printf("%d remembered wallet(s); 'restore' lists them again.\n", len(pending))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		sh.printf("%s> ", sh.sess.Chain())
		line, err := sh.in.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				sh.printf("\n")
				return nil
			}
			return err
		}
		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			sh.printf("error: %v\n", err)
		}
	}
}

// exec runs one command line.
func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	log.CLI.Debug().Str("command", cmd).Msg("Shell command")

	switch cmd {
	case "help", "?":
		sh.help()
	case "quit", "exit":
		return errQuit

	case "new":
		phrase, err := sh.sess.NewMnemonic()
		if err != nil {
			return err
		}
		sh.printf("New mnemonic (write this down):\n  %s\n", phrase)
	case "adopt":
		phrase, err := sh.readSecret("Enter mnemonic: ")
		if err != nil {
			return err
		}
		if err := sh.sess.AdoptMnemonic(phrase); err != nil {
			return err
		}
		fp, _ := sh.sess.Fingerprint()
		sh.printf("Mnemonic adopted (fingerprint %s). Wallet list cleared.\n", fp)
	case "mnemonic":
		reveal := len(args) > 0 && args[0] == "show"
		sh.printf("%s\n", sh.sess.Mnemonic(reveal))
	case "fingerprint":
		fp, err := sh.sess.Fingerprint()
		if err != nil {
			return err
		}
		sh.printf("%s\n", fp)

	case "chain":
		if len(args) == 0 {
			sh.printf("%s\n", sh.sess.Chain())
			return nil
		}
		id, err := chain.Parse(args[0])
		if err != nil {
			return err
		}
		if err := sh.sess.SelectChain(id); err != nil {
			return err
		}
		sh.printf("Chain %s selected.\n", id)
	case "chains":
		for _, s := range chain.All() {
			sh.printf("  %-10s %s\n", s.Name, s.Symbol)
		}

	case "gen":
		v, err := sh.sess.GenerateNext(ctx)
		if err != nil {
			return err
		}
		sh.printView(v)
	case "genn":
		n, err := sh.intArg(args, "genn <count>")
		if err != nil {
			return err
		}
		vs, err := sh.sess.GenerateN(ctx, n)
		if err != nil {
			return err
		}
		for _, v := range vs {
			sh.printView(v)
		}
	case "at":
		if len(args) != 1 {
			return fmt.Errorf("usage: at <derivation index>")
		}
		idx, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("bad index %q", args[0])
		}
		v, err := sh.sess.DeriveAt(ctx, uint32(idx))
		if err != nil {
			return err
		}
		sh.printView(v)

	case "list", "ls":
		views := sh.sess.Wallets()
		if len(views) == 0 {
			sh.printf("No wallets.\n")
		}
		for _, v := range views {
			sh.printView(v)
		}
	case "reveal":
		pos, err := sh.intArg(args, "reveal <position>")
		if err != nil {
			return err
		}
		if _, err := sh.sess.ToggleReveal(pos); err != nil {
			return err
		}
		v, err := sh.sess.Wallet(pos)
		if err != nil {
			return err
		}
		sh.printView(v)
	case "delete", "rm":
		pos, err := sh.intArg(args, "delete <position>")
		if err != nil {
			return err
		}
		idx, err := sh.sess.Delete(pos)
		if err != nil {
			return err
		}
		sh.printf("Deleted wallet at position %d (index %d).\n", pos, idx)

	case "pending":
		sh.printf("%v\n", sh.sess.Pending())
	case "restore":
		n, err := sh.sess.Restore(ctx)
		if err != nil {
			return err
		}
		sh.printf("Restored %d wallet(s).\n", n)
	case "forget":
		if err := sh.sess.Forget(); err != nil {
			return err
		}
		sh.printf("Forgot the remembered wallets of this mnemonic.\n")

	case "balance":
		pos, err := sh.intArg(args, "balance <position>")
		if err != nil {
			return err
		}
		v, err := sh.sess.Wallet(pos)
		if err != nil {
			return err
		}
		if sh.balance == nil {
			return balance.ErrNoEndpoint
		}
		bctx, cancel := context.WithTimeout(ctx, balanceTimeout)
		defer cancel()
		b, err := sh.balance.Fetch(bctx, v.Chain, v.PublicKey)
		if err != nil {
			return err
		}
		sh.printf("%s %s\n", v.PublicKey, b)

	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return nil
}

func (sh *shell) intArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("bad number %q", args[0])
	}
	return n, nil
}

func (sh *shell) printView(v wallet.WalletView) {
	sh.printf("[%d] #%-4d %-20s %s\n", v.Position, v.Index, v.Path, v.PublicKey)
	sh.printf("     private key: %s\n", v.PrivateKey)
}

func (sh *shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *shell) help() {
	sh.printf(`Commands:
  new               Generate a new mnemonic (clears the list)
  adopt             Enter an existing mnemonic (clears the list)
  mnemonic [show]   Print the mnemonic, masked unless 'show'
  fingerprint       Print the seed fingerprint
  chain [name]      Show or switch the chain (switching clears the list)
  chains            List supported chains
  gen               Derive the next wallet
  genn <n>          Derive the next n wallets
  at <index>        Derive the wallet at a derivation index
  list              List wallets
  reveal <pos>      Show or hide a private key
  delete <pos>      Remove a wallet from the list
  pending           Remembered indices not yet listed
  restore           Re-derive remembered wallets
  forget            Erase remembered wallets of this mnemonic
  balance <pos>     Look up the balance of a wallet
  quit              Leave the shell
`)
}
