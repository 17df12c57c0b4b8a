package curve

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/raylp/pkg"
)

const BpsDenominator = 10000

// DefaultSlippageBps is 1%.
const DefaultSlippageBps = 100

// MaxWithSlippage inflates amount by bps basis points, truncating. Used for the
// maximum_token_i_amount guard on deposits.
func MaxWithSlippage(amount uint64, bps uint32) (uint64, error) {
	out := math.NewIntFromUint64(amount).
		Mul(math.NewInt(BpsDenominator + int64(bps))).
		Quo(math.NewInt(BpsDenominator))
	if !out.IsUint64() {
		return 0, errorsmod.Wrapf(ErrOverflow, "%d plus %d bps", amount, bps)
	}
	return out.Uint64(), nil
}

// MinWithSlippage deflates amount by bps basis points, truncating. Used for the
// minimum_token_i_amount guard on withdrawals.
func MinWithSlippage(amount uint64, bps uint32) (uint64, error) {
	if bps > BpsDenominator {
		return 0, errorsmod.Wrapf(pkg.ErrConfig, "slippage %d bps exceeds %d", bps, BpsDenominator)
	}
	out := math.NewIntFromUint64(amount).
		Mul(math.NewInt(BpsDenominator - int64(bps))).
		Quo(math.NewInt(BpsDenominator))
	return out.Uint64(), nil
}

// DepositGuard returns the maximum token amounts a depositor accepts for lpAmount.
func DepositGuard(lpAmount, lpSupply, reserve0, reserve1 uint64, bps uint32) (TradingTokenResult, error) {
	need, err := LpTokensToTradingTokens(lpAmount, lpSupply, reserve0, reserve1, Ceiling)
	if err != nil {
		return TradingTokenResult{}, err
	}
	max0, err := MaxWithSlippage(need.Token0Amount, bps)
	if err != nil {
		return TradingTokenResult{}, err
	}
	max1, err := MaxWithSlippage(need.Token1Amount, bps)
	if err != nil {
		return TradingTokenResult{}, err
	}
	return TradingTokenResult{Token0Amount: max0, Token1Amount: max1}, nil
}

// WithdrawGuard returns the minimum token amounts a withdrawer accepts for lpAmount.
func WithdrawGuard(lpAmount, lpSupply, reserve0, reserve1 uint64, bps uint32) (TradingTokenResult, error) {
	expect, err := LpTokensToTradingTokens(lpAmount, lpSupply, reserve0, reserve1, Floor)
	if err != nil {
		return TradingTokenResult{}, err
	}
	min0, err := MinWithSlippage(expect.Token0Amount, bps)
	if err != nil {
		return TradingTokenResult{}, err
	}
	min1, err := MinWithSlippage(expect.Token1Amount, bps)
	if err != nil {
		return TradingTokenResult{}, err
	}
	return TradingTokenResult{Token0Amount: min0, Token1Amount: min1}, nil
}

// SqrtPriceX64FromPrice converts a human price of token1 per token0 into the
// Q64.64 square root price a CLMM pool is initialised with.
func SqrtPriceX64FromPrice(price string, decimals0, decimals1 uint8) (uint128.Uint128, error) {
	p, err := math.LegacyNewDecFromStr(price)
	if err != nil {
		return uint128.Zero, errorsmod.Wrapf(pkg.ErrConfig, "price %q: %v", price, err)
	}
	if !p.IsPositive() {
		return uint128.Zero, errorsmod.Wrapf(pkg.ErrConfig, "price %q must be positive", price)
	}

	// raw price is expressed in base units of each mint
	if decimals1 >= decimals0 {
		p = p.Mul(math.LegacyNewDec(10).Power(uint64(decimals1 - decimals0)))
	} else {
		p = p.Quo(math.LegacyNewDec(10).Power(uint64(decimals0 - decimals1)))
	}

	root, err := p.ApproxSqrt()
	if err != nil {
		return uint128.Zero, errorsmod.Wrapf(pkg.ErrArithmetic, "sqrt of %s: %v", p, err)
	}

	q64 := math.LegacyNewDecFromBigInt(new(big.Int).Lsh(big.NewInt(1), 64))
	x64 := root.Mul(q64).TruncateInt().BigInt()
	if x64.BitLen() > 128 {
		return uint128.Zero, errorsmod.Wrapf(ErrOverflow, "sqrt price of %s", price)
	}
	return uint128.FromBig(x64), nil
}
