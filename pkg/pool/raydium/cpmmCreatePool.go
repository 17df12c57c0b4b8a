package raydium

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/pda"
	"github.com/gtdvccc/raylp/pkg/sol"
)

// CpmmCreatePool creates a constant-product pool and deposits the initial
// liquidity in one instruction.
type CpmmCreatePool struct {
	Programs Programs
	Mint0    solana.PublicKey
	Mint1    solana.PublicKey
	Amount0  uint64
	Amount1  uint64
	OpenTime uint64
	// WrapSol funds the creator's WSOL account when one side is WSOL.
	WrapSol bool

	addrs PoolAddresses
}

// NewCpmmCreatePool sorts the mint pair, swapping the amounts with it, and
// derives the pool accounts for fee tier configIndex.
func NewCpmmCreatePool(programs Programs, configIndex uint16, mintA, mintB solana.PublicKey, amountA, amountB, openTime uint64, wrapSol bool) (*CpmmCreatePool, error) {
	if amountA == 0 || amountB == 0 {
		return nil, errorsmod.Wrap(pkg.ErrConfig, "initial amounts must be positive")
	}
	mint0, mint1, amount0, amount1 := SortMints(mintA, mintB, amountA, amountB)
	addrs, err := DeriveCpmmAddresses(programs.Cpmm, configIndex, mint0, mint1)
	if err != nil {
		return nil, err
	}
	return &CpmmCreatePool{
		Programs: programs,
		Mint0:    mint0,
		Mint1:    mint1,
		Amount0:  amount0,
		Amount1:  amount1,
		OpenTime: openTime,
		WrapSol:  wrapSol,
		addrs:    addrs,
	}, nil
}

func (op *CpmmCreatePool) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameRaydiumCpmm
}

func (op *CpmmCreatePool) ProtocolType() pkg.ProtocolType {
	return pkg.ProtocolTypeRaydiumCpmm
}

func (op *CpmmCreatePool) Kind() pkg.OperationKind {
	return pkg.OperationCreatePool
}

func (op *CpmmCreatePool) GetProgramID() solana.PublicKey {
	return op.Programs.Cpmm
}

func (op *CpmmCreatePool) GetID() string {
	return op.addrs.PoolState.String()
}

func (op *CpmmCreatePool) Addresses() PoolAddresses {
	return op.addrs
}

func (op *CpmmCreatePool) StateAccounts() []solana.PublicKey {
	return []solana.PublicKey{op.Mint0, op.Mint1, op.addrs.PoolState}
}

func (op *CpmmCreatePool) BuildInstructions(ctx context.Context, owner solana.PublicKey, accounts []*rpc.Account) ([]solana.Instruction, error) {
	if len(accounts) != 3 {
		return nil, errorsmod.Wrapf(pkg.ErrInvalidAccountData, "expected 3 accounts, got %d", len(accounts))
	}
	mint0, err := decodeMint(op.Mint0, accounts[0])
	if err != nil {
		return nil, err
	}
	mint1, err := decodeMint(op.Mint1, accounts[1])
	if err != nil {
		return nil, err
	}
	if accounts[2] != nil {
		return nil, errorsmod.Wrapf(pkg.ErrConfig, "pool %s already exists", op.addrs.PoolState)
	}

	creator0, err := pda.AssociatedTokenAddress(owner, mint0.TokenProgram, op.Mint0)
	if err != nil {
		return nil, err
	}
	creator1, err := pda.AssociatedTokenAddress(owner, mint1.TokenProgram, op.Mint1)
	if err != nil {
		return nil, err
	}
	creatorLp, err := pda.AssociatedTokenAddress(owner, solana.TokenProgramID, op.addrs.LpMint)
	if err != nil {
		return nil, err
	}

	instrs := make([]solana.Instruction, 0, 4)
	if op.WrapSol {
		wrap, err := wrapSolFor(owner, op.Mint0, op.Mint1, op.Amount0, op.Amount1)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, wrap...)
	}

	instrs = append(instrs, NewCpmmInitializeInstruction(op.Programs.Cpmm, CpmmInitializeAccounts{
		Creator:       owner,
		Pool:          op.addrs,
		Mint0:         op.Mint0,
		Mint1:         op.Mint1,
		CreatorToken0: creator0,
		CreatorToken1: creator1,
		CreatorLp:     creatorLp,
		CreatePoolFee: op.Programs.CreatePoolFee,
		Token0Program: mint0.TokenProgram,
		Token1Program: mint1.TokenProgram,
	}, op.Amount0, op.Amount1, op.OpenTime))
	return instrs, nil
}

// wrapSolFor returns the WSOL funding instructions when either mint is WSOL.
func wrapSolFor(owner, mint0, mint1 solana.PublicKey, amount0, amount1 uint64) ([]solana.Instruction, error) {
	switch {
	case mint0.Equals(sol.WSOL):
		return sol.WrapSolInstructions(owner, amount0)
	case mint1.Equals(sol.WSOL):
		return sol.WrapSolInstructions(owner, amount1)
	}
	return nil, nil
}
