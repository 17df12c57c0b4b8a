package raydium

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/curve"
)

// ClmmCreatePool creates a concentrated-liquidity pool for an ordered mint pair.
type ClmmCreatePool struct {
	ProgramID solana.PublicKey
	Mint0     solana.PublicKey
	Mint1     solana.PublicKey
	// Either SqrtPriceX64 is set, or Price (token1 per token0, UI units) is
	// converted once the mint decimals are known.
	SqrtPriceX64 uint128.Uint128
	Price        string
	OpenTime     uint64

	addrs PoolAddresses
}

// NewClmmCreatePool derives every pool address up front. Mints must already be
// in ascending order; the program rejects anything else.
func NewClmmCreatePool(programID, ammConfig, mint0, mint1 solana.PublicKey, sqrtPriceX64 uint128.Uint128, price string, openTime uint64) (*ClmmCreatePool, error) {
	if sqrtPriceX64.IsZero() && price == "" {
		return nil, errorsmod.Wrap(pkg.ErrConfig, "either an initial price or sqrt price is required")
	}
	addrs, err := DeriveClmmAddresses(programID, ammConfig, mint0, mint1)
	if err != nil {
		return nil, err
	}
	return &ClmmCreatePool{
		ProgramID:    programID,
		Mint0:        mint0,
		Mint1:        mint1,
		SqrtPriceX64: sqrtPriceX64,
		Price:        price,
		OpenTime:     openTime,
		addrs:        addrs,
	}, nil
}

func (op *ClmmCreatePool) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameRaydiumClmm
}

func (op *ClmmCreatePool) ProtocolType() pkg.ProtocolType {
	return pkg.ProtocolTypeRaydiumClmm
}

func (op *ClmmCreatePool) Kind() pkg.OperationKind {
	return pkg.OperationCreatePool
}

func (op *ClmmCreatePool) GetProgramID() solana.PublicKey {
	return op.ProgramID
}

func (op *ClmmCreatePool) GetID() string {
	return op.addrs.PoolState.String()
}

func (op *ClmmCreatePool) Addresses() PoolAddresses {
	return op.addrs
}

func (op *ClmmCreatePool) StateAccounts() []solana.PublicKey {
	return []solana.PublicKey{op.Mint0, op.Mint1, op.addrs.PoolState}
}

func (op *ClmmCreatePool) BuildInstructions(ctx context.Context, owner solana.PublicKey, accounts []*rpc.Account) ([]solana.Instruction, error) {
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

	sqrtPrice := op.SqrtPriceX64
	if sqrtPrice.IsZero() {
		sqrtPrice, err = curve.SqrtPriceX64FromPrice(op.Price, mint0.Decimals, mint1.Decimals)
		if err != nil {
			return nil, err
		}
	}
	if !ValidSqrtPriceX64(sqrtPrice) {
		return nil, errorsmod.Wrapf(pkg.ErrConfig, "sqrt price %s outside [%s, %s)", sqrtPrice, MIN_SQRT_PRICE_X64, MAX_SQRT_PRICE_X64)
	}

	inst := NewClmmCreatePoolInstruction(op.ProgramID, ClmmCreatePoolAccounts{
		Creator:       owner,
		Pool:          op.addrs,
		Mint0:         op.Mint0,
		Mint1:         op.Mint1,
		Token0Program: mint0.TokenProgram,
		Token1Program: mint1.TokenProgram,
	}, sqrtPrice, op.OpenTime)
	return []solana.Instruction{inst}, nil
}
