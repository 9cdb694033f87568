// Package balance looks up native-coin balances of derived addresses over
// the public JSON-RPC endpoints of each chain.
package balance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Klingon-tech/klingnet-keys/internal/log"
	"github.com/Klingon-tech/klingnet-keys/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-keys/pkg/chain"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

var (
	// ErrNoEndpoint is returned when no RPC endpoint is configured for a chain.
	ErrNoEndpoint = errors.New("no rpc endpoint configured")
	// ErrInvalidAddress is returned for an address the chain cannot encode.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrUnavailable is returned while an endpoint's circuit breaker is open.
	ErrUnavailable = errors.New("endpoint temporarily unavailable")
)

// tripAfter is the number of consecutive failures that opens a breaker.
const tripAfter = 3

// Balance is the native-coin balance of one address.
type Balance struct {
	Chain   chain.ID
	Address string
	// Raw is the balance in the chain's smallest unit (lamports, wei).
	Raw *big.Int
	// Amount is Raw scaled by the chain's decimals.
	Amount decimal.Decimal
}

// String formats the balance with the chain symbol, e.g. "1.5 SOL".
func (b *Balance) String() string {
	spec, err := chain.Resolve(b.Chain)
	if err != nil {
		return b.Amount.String()
	}
	return b.Amount.String() + " " + spec.Symbol
}

// Fetcher looks up balances.
type Fetcher interface {
	Fetch(ctx context.Context, id chain.ID, address string) (*Balance, error)
}

type endpoint struct {
	rpc *rpcclient.Client
	cb  *gobreaker.CircuitBreaker
}

// Client fetches balances from one endpoint per chain. Each endpoint sits
// behind its own circuit breaker.
type Client struct {
	endpoints map[chain.ID]*endpoint
}

// New creates a client for the given per-chain endpoint URLs. Empty URLs are
// skipped.
func New(urls map[chain.ID]string, timeout time.Duration) (*Client, error) {
	c := &Client{endpoints: make(map[chain.ID]*endpoint, len(urls))}
	for id, url := range urls {
		if url == "" {
			continue
		}
		if _, err := chain.Resolve(id); err != nil {
			return nil, err
		}
		c.endpoints[id] = &endpoint{
			rpc: rpcclient.NewWithTimeout(url, timeout),
			cb:  newCircuitBreaker(id.String()),
		}
	}
	return c, nil
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Balance.Warn().Str("chain", name).Msg("RPC endpoint seems down, pausing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Balance.Info().Str("chain", name).Msg("Checking RPC endpoint status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				log.Balance.Info().Str("chain", name).Msg("RPC endpoint seems ok, resuming requests")
			}
		},
	})
}

// Configured reports whether an endpoint is set for id.
func (c *Client) Configured(id chain.ID) bool {
	_, ok := c.endpoints[id]
	return ok
}

// Fetch returns the balance of address on chain id.
func (c *Client) Fetch(ctx context.Context, id chain.ID, address string) (*Balance, error) {
	spec, err := chain.Resolve(id)
	if err != nil {
		return nil, err
	}
	if err := spec.Encoder.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	ep, ok := c.endpoints[id]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoEndpoint, spec.Name)
	}

	res, err := ep.cb.Execute(func() (interface{}, error) {
		switch id {
		case chain.Solana:
			return solanaBalance(ctx, ep.rpc, address)
		case chain.Ethereum:
			return ethereumBalance(ctx, ep.rpc, address)
		}
		return nil, fmt.Errorf("%w: %s", chain.ErrUnsupportedChain, spec.Name)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, spec.Name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s balance: %w", spec.Name, err)
	}

	raw := res.(*big.Int)
	b := &Balance{
		Chain:   id,
		Address: address,
		Raw:     raw,
		Amount:  decimal.NewFromBigInt(raw, -spec.Decimals),
	}
	log.Balance.Debug().
		Str("chain", spec.Name).
		Str("address", address).
		Str("amount", b.Amount.String()).
		Msg("Fetched balance")
	return b, nil
}

// solanaBalance calls getBalance, which answers {"context":..., "value": lamports}.
func solanaBalance(ctx context.Context, rpc *rpcclient.Client, address string) (*big.Int, error) {
	var out struct {
		Value json.Number `json:"value"`
	}
	if err := rpc.CallContext(ctx, "getBalance", []interface{}{address}, &out); err != nil {
		return nil, err
	}
	raw, ok := new(big.Int).SetString(out.Value.String(), 10)
	if !ok || raw.Sign() < 0 {
		return nil, fmt.Errorf("malformed lamport amount %q", out.Value)
	}
	return raw, nil
}

// ethereumBalance calls eth_getBalance, which answers a hex quantity in wei.
func ethereumBalance(ctx context.Context, rpc *rpcclient.Client, address string) (*big.Int, error) {
	var out hexutil.Big
	if err := rpc.CallContext(ctx, "eth_getBalance", []interface{}{address, "latest"}, &out); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}
