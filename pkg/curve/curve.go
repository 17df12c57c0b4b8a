// Package curve implements the constant-product liquidity conversions used to
// size deposits and withdrawals against a CPMM pool.
package curve

import (
	errorsmod "cosmossdk.io/errors"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/raylp/pkg"
)

// RoundDirection selects how a fractional token amount is resolved.
type RoundDirection uint8

const (
	// Floor truncates. Used for the minimum a withdrawer receives.
	Floor RoundDirection = iota
	// Ceiling rounds a nonzero result up when the division leaves a remainder.
	// Used for the maximum a depositor must supply.
	Ceiling
)

func (d RoundDirection) String() string {
	switch d {
	case Floor:
		return "floor"
	case Ceiling:
		return "ceiling"
	default:
		return "unknown"
	}
}

var (
	ErrZeroSupply = errorsmod.Wrap(pkg.ErrArithmetic, "lp supply is zero")
	ErrOverflow   = errorsmod.Wrap(pkg.ErrArithmetic, "overflow")
	ErrUnderflow  = errorsmod.Wrap(pkg.ErrArithmetic, "underflow")
)

// TradingTokenResult is the amount of each pool token matching an LP amount.
type TradingTokenResult struct {
	Token0Amount uint64
	Token1Amount uint64
}

// LpTokensToTradingTokens converts lpAmount into token amounts proportional to
// the pool reserves. Each side is computed as lpAmount*reserve/lpSupply in
// 128-bit precision and rounded independently.
func LpTokensToTradingTokens(lpAmount, lpSupply, reserve0, reserve1 uint64, dir RoundDirection) (TradingTokenResult, error) {
	if lpSupply == 0 {
		return TradingTokenResult{}, ErrZeroSupply
	}

	token0, err := proportion(lpAmount, reserve0, lpSupply, dir)
	if err != nil {
		return TradingTokenResult{}, errorsmod.Wrap(err, "token 0")
	}
	token1, err := proportion(lpAmount, reserve1, lpSupply, dir)
	if err != nil {
		return TradingTokenResult{}, errorsmod.Wrap(err, "token 1")
	}
	return TradingTokenResult{Token0Amount: token0, Token1Amount: token1}, nil
}

func proportion(amount, reserve, supply uint64, dir RoundDirection) (uint64, error) {
	product := uint128.From64(amount).Mul64(reserve)
	q, rem := product.QuoRem64(supply)
	if q.Hi != 0 {
		return 0, ErrOverflow
	}
	out := q.Lo
	if dir == Ceiling && rem != 0 && out != 0 {
		if out == ^uint64(0) {
			return 0, ErrOverflow
		}
		out++
	}
	return out, nil
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrUnderflow.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// VaultAmountWithoutFee removes accrued protocol and fund fees from a raw vault
// balance. Fees larger than the balance mean the snapshot is stale or corrupt.
func VaultAmountWithoutFee(vault, protocolFee, fundFee uint64) (uint64, error) {
	fees, err := CheckedAdd(protocolFee, fundFee)
	if err != nil {
		return 0, errorsmod.Wrap(err, "accrued fees")
	}
	amount, err := CheckedSub(vault, fees)
	if err != nil {
		return 0, errorsmod.Wrapf(err, "vault balance %d below accrued fees %d", vault, fees)
	}
	return amount, nil
}
