package curve

import (
	"math/big"
	"testing"

	fuzz "github.com/gagliardetto/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/raylp/pkg"
)

func TestMaxWithSlippage(t *testing.T) {
	got, err := MaxWithSlippage(10_000, DefaultSlippageBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_100), got)

	got, err = MaxWithSlippage(1001, DefaultSlippageBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(1011), got)

	_, err = MaxWithSlippage(^uint64(0), 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMinWithSlippage(t *testing.T) {
	got, err := MinWithSlippage(20_000, DefaultSlippageBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(19_800), got)

	got, err = MinWithSlippage(1001, DefaultSlippageBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), got)

	got, err = MinWithSlippage(500, BpsDenominator)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = MinWithSlippage(500, BpsDenominator+1)
	require.ErrorIs(t, err, pkg.ErrConfig)
}

func TestGuardsBracketRawAmounts(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 1000; i++ {
		var lp, supply, r0, r1 uint32
		f.Fuzz(&lp)
		f.Fuzz(&supply)
		f.Fuzz(&r0)
		f.Fuzz(&r1)
		if supply == 0 {
			supply = 1
		}

		ceil, err := LpTokensToTradingTokens(uint64(lp), uint64(supply), uint64(r0), uint64(r1), Ceiling)
		require.NoError(t, err)
		maxGuard, err := DepositGuard(uint64(lp), uint64(supply), uint64(r0), uint64(r1), DefaultSlippageBps)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, maxGuard.Token0Amount, ceil.Token0Amount)
		assert.GreaterOrEqual(t, maxGuard.Token1Amount, ceil.Token1Amount)

		floor, err := LpTokensToTradingTokens(uint64(lp), uint64(supply), uint64(r0), uint64(r1), Floor)
		require.NoError(t, err)
		minGuard, err := WithdrawGuard(uint64(lp), uint64(supply), uint64(r0), uint64(r1), DefaultSlippageBps)
		require.NoError(t, err)
		assert.LessOrEqual(t, minGuard.Token0Amount, floor.Token0Amount)
		assert.LessOrEqual(t, minGuard.Token1Amount, floor.Token1Amount)
	}
}

func TestSqrtPriceX64FromPrice(t *testing.T) {
	one := uint128.From64(1).Lsh(64)

	got, err := SqrtPriceX64FromPrice("1", 6, 6)
	require.NoError(t, err)
	assertClose(t, one, got)

	// price 4 -> sqrt 2
	got, err = SqrtPriceX64FromPrice("4", 9, 9)
	require.NoError(t, err)
	assertClose(t, one.Mul64(2), got)

	// 1 token0 (9 decimals) = 100 token1 (6 decimals) -> raw price 0.1
	got, err = SqrtPriceX64FromPrice("100", 9, 6)
	require.NoError(t, err)
	assertClose(t, mustUint128(t, "5833372668713515884"), got)

	_, err = SqrtPriceX64FromPrice("-1", 6, 6)
	require.ErrorIs(t, err, pkg.ErrConfig)
	_, err = SqrtPriceX64FromPrice("abc", 6, 6)
	require.ErrorIs(t, err, pkg.ErrConfig)
}

func mustUint128(t *testing.T, s string) uint128.Uint128 {
	t.Helper()
	v, err := uint128.FromString(s)
	require.NoError(t, err)
	return v
}

// assertClose allows for the 18-decimal precision of the square root.
func assertClose(t *testing.T, want, got uint128.Uint128) {
	t.Helper()
	diff := got.Big()
	diff.Sub(diff, want.Big())
	assert.LessOrEqual(t, diff.CmpAbs(big.NewInt(1_000_000)), 0, "want %s got %s", want, got)
}
