package sol

import (
	"context"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/gtdvccc/raylp/pkg"
)

// Signer produces signatures over arbitrary bytes. solana.PrivateKey satisfies it.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(payload []byte) (solana.Signature, error)
}

// SignTransaction creates and signs a new transaction with the given
// instructions. The first signer pays the fees.
func SignTransaction(blockhash solana.Hash, signers []Signer, instrs ...solana.Instruction) (*solana.Transaction, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("at least one signer is required")
	}

	tx, err := solana.NewTransaction(
		instrs,
		blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	required := tx.Message.AccountKeys[:tx.Message.Header.NumRequiredSignatures]
	tx.Signatures = make([]solana.Signature, 0, len(required))
	for _, key := range required {
		signer := findSigner(signers, key)
		if signer == nil {
			return nil, fmt.Errorf("missing signer for %s", key)
		}
		sig, err := signer.Sign(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return tx, nil
}

func findSigner(signers []Signer, key solana.PublicKey) Signer {
	for _, s := range signers {
		if s.PublicKey().Equals(key) {
			return s
		}
	}
	return nil
}

// SendTransaction submits tx once. The caller must not resubmit on error
// without first checking the signature status.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	sig, err := c.RpcClient.SendTransactionWithOpts(
		ctx, tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: c.commitment,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", pkg.ErrSubmission, err)
	}
	return sig, nil
}

// Rejected reports whether err is the node refusing a transaction, in which
// case it cannot land. Transport errors leave the outcome unknown.
func Rejected(err error) bool {
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr)
}

// SimulationResult carries the outcome of a simulated transaction.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed uint64
}

// SimulateTransaction runs tx against current state without landing it.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	var out *SimulationResult
	err := c.read(ctx, func(ctx context.Context) error {
		res, err := c.RpcClient.SimulateTransaction(ctx, tx)
		if err != nil {
			return err
		}
		out = &SimulationResult{Err: res.Value.Err, Logs: res.Value.Logs}
		if res.Value.UnitsConsumed != nil {
			out.UnitsConsumed = *res.Value.UnitsConsumed
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to simulate transaction: %w", err)
	}
	if out.Err != nil {
		return out, errorsmod.Wrapf(pkg.ErrSubmission, "simulation failed: %v", out.Err)
	}
	return out, nil
}
