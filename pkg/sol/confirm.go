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

// ConfirmationStatus is the terminal outcome of a submitted transaction.
type ConfirmationStatus string

const (
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFailed    ConfirmationStatus = "failed"
	StatusExpired   ConfirmationStatus = "expired"
)

// WaitForConfirmation polls sig until it is confirmed, fails on chain, or the
// cluster passes lastValidBlockHeight without having seen it. An expired
// transaction can never land, so only then is resubmission safe.
func (c *Client) WaitForConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (ConfirmationStatus, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.SignatureStatus(ctx, sig)
		if err != nil {
			return "", err
		}
		if status != nil {
			if status.Err != nil {
				return StatusFailed, fmt.Errorf("%w: transaction %s failed: %v", pkg.ErrSubmission, sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return StatusConfirmed, nil
			}
		} else {
			height, err := c.BlockHeight(ctx)
			if err != nil {
				return "", err
			}
			if height > lastValidBlockHeight {
				return StatusExpired, errorsmod.Wrapf(pkg.ErrTransactionExpired, "%s not seen by block height %d", sig, lastValidBlockHeight)
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
