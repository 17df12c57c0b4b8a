package sol

import (
	"context"
	"fmt"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/gtdvccc/raylp/pkg"
)

// Client wraps the JSON-RPC client. Reads are retried with exponential backoff;
// transaction submission is attempted exactly once.
type Client struct {
	RpcClient *rpc.Client

	commitment     rpc.CommitmentType
	maxRetries     int
	retryBackoff   time.Duration
	requestTimeout time.Duration
	pollInterval   time.Duration
}

// Option configures a Client.
type Option func(*Client)

func WithCommitment(c rpc.CommitmentType) Option {
	return func(cl *Client) { cl.commitment = c }
}

func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(cl *Client) {
		cl.maxRetries = maxRetries
		cl.retryBackoff = backoff
	}
}

// WithRequestTimeout bounds every RPC round trip.
func WithRequestTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.requestTimeout = d }
}

// WithPollInterval sets how often confirmation status is polled.
func WithPollInterval(d time.Duration) Option {
	return func(cl *Client) { cl.pollInterval = d }
}

// NewClient creates a new Solana client for endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errorsmod.Wrap(pkg.ErrConfig, "rpc endpoint is required")
	}
	c := &Client{
		RpcClient:      rpc.New(endpoint),
		commitment:     rpc.CommitmentConfirmed,
		maxRetries:     5,
		retryBackoff:   500 * time.Millisecond,
		requestTimeout: 30 * time.Second,
		pollInterval:   700 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close terminates all client connections
func (c *Client) Close() error {
	return c.RpcClient.Close()
}

func (c *Client) read(ctx context.Context, fn func(context.Context) error) error {
	return withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
		return fn(ctx)
	})
}

// GetMultipleAccounts fetches keys in a single request so the returned states
// share one slot. Missing accounts come back as nil entries.
func (c *Client) GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([]*rpc.Account, error) {
	var out []*rpc.Account
	err := c.read(ctx, func(ctx context.Context) error {
		res, err := c.RpcClient.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
			Commitment: c.commitment,
		})
		if err != nil {
			return err
		}
		out = res.Value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch request failed: %w", err)
	}
	if len(out) != len(keys) {
		return nil, fmt.Errorf("batch request returned %d accounts for %d keys", len(out), len(keys))
	}
	return out, nil
}

// Blockhash is a recent blockhash and the last block height it is valid for.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

func (c *Client) LatestBlockhash(ctx context.Context) (Blockhash, error) {
	var out Blockhash
	err := c.read(ctx, func(ctx context.Context) error {
		res, err := c.RpcClient.GetLatestBlockhash(ctx, c.commitment)
		if err != nil {
			return err
		}
		out = Blockhash{Hash: res.Value.Blockhash, LastValidBlockHeight: res.Value.LastValidBlockHeight}
		return nil
	})
	if err != nil {
		return Blockhash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return out, nil
}

func (c *Client) BlockHeight(ctx context.Context) (uint64, error) {
	var out uint64
	err := c.read(ctx, func(ctx context.Context) error {
		h, err := c.RpcClient.GetBlockHeight(ctx, c.commitment)
		out = h
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get block height: %w", err)
	}
	return out, nil
}

// SignatureStatus returns the status of sig, or nil if the cluster has not seen it.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	var out *rpc.SignatureStatusesResult
	err := c.read(ctx, func(ctx context.Context) error {
		res, err := c.RpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if len(res.Value) > 0 {
			out = res.Value[0]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	return out, nil
}

// ProgramAccounts lists up to limit account addresses owned by program.
func (c *Client) ProgramAccounts(ctx context.Context, program solana.PublicKey, limit int) ([]solana.PublicKey, error) {
	var out []solana.PublicKey
	zero := uint64(0)
	err := c.read(ctx, func(ctx context.Context) error {
		res, err := c.RpcClient.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
			Commitment: c.commitment,
			DataSlice:  &rpc.DataSlice{Offset: &zero, Length: &zero},
		})
		if err != nil {
			return err
		}
		out = out[:0]
		for _, acc := range res {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, acc.Pubkey)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list program accounts: %w", err)
	}
	return out, nil
}

// RecentSignatures returns the latest limit signatures touching addr.
func (c *Client) RecentSignatures(ctx context.Context, addr solana.PublicKey, limit int) ([]*rpc.TransactionSignature, error) {
	var out []*rpc.TransactionSignature
	err := c.read(ctx, func(ctx context.Context) error {
		res, err := c.RpcClient.GetSignaturesForAddressWithOpts(ctx, addr, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: c.commitment,
		})
		out = res
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures for %s: %w", addr, err)
	}
	return out, nil
}
