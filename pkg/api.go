package pkg

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProtocolName represents the string name of AMM protocol
type ProtocolName string

const (
	ProtocolNameRaydiumClmm ProtocolName = "raydium_clmm"
	ProtocolNameRaydiumCpmm ProtocolName = "raydium_cpmm"
)

// ProtocolType represents the numeric type of AMM protocol (matches contract enum)
type ProtocolType uint8

const (
	ProtocolTypeRaydiumAmm ProtocolType = iota
	ProtocolTypeRaydiumClmm
	ProtocolTypeRaydiumCpmm
)

// OperationKind names the liquidity action an Operation performs.
type OperationKind string

const (
	OperationCreatePool          OperationKind = "create_pool"
	OperationDeposit             OperationKind = "deposit"
	OperationWithdraw            OperationKind = "withdraw"
	OperationDepositThenWithdraw OperationKind = "deposit_then_withdraw"
)

// Operation is a single liquidity action against one pool. The executor
// fetches StateAccounts in one batched read and hands the snapshot, in the
// same order, to BuildInstructions. A nil entry means the account does not exist.
type Operation interface {
	ProtocolName() ProtocolName
	ProtocolType() ProtocolType
	Kind() OperationKind
	GetProgramID() solana.PublicKey
	// GetID returns the pool address the operation targets.
	GetID() string
	StateAccounts() []solana.PublicKey
	BuildInstructions(ctx context.Context, owner solana.PublicKey, accounts []*rpc.Account) ([]solana.Instruction, error)
}
