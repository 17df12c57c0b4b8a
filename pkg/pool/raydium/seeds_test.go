package raydium

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtdvccc/raylp/pkg"
)

func TestGetPdaAmmConfig_IndexEncoding(t *testing.T) {
	cases := []struct {
		index uint16
		seed  []byte
	}{
		{0, []byte{0, 0}},
		{1, []byte{1, 0}},
		{258, []byte{2, 1}},
	}
	for _, tc := range cases {
		got, err := GetPdaAmmConfig(RAYDIUM_CPMM_PROGRAM_ID, tc.index)
		require.NoError(t, err)

		want, bump, err := solana.FindProgramAddress([][]byte{[]byte(AMM_CONFIG_SEED), tc.seed}, RAYDIUM_CPMM_PROGRAM_ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Address, "index %d", tc.index)
		assert.Equal(t, bump, got.Bump)
	}
}

func TestDeriveCpmmAddresses_ConfigIndexFeedsPool(t *testing.T) {
	seed := []byte{1, 0}
	config, _, err := solana.FindProgramAddress([][]byte{[]byte(AMM_CONFIG_SEED), seed}, RAYDIUM_CPMM_PROGRAM_ID)
	require.NoError(t, err)
	pool, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(POOL_SEED), config[:], wsolMint[:], usdcMint[:]},
		RAYDIUM_CPMM_PROGRAM_ID,
	)
	require.NoError(t, err)

	addrs, err := DeriveCpmmAddresses(RAYDIUM_CPMM_PROGRAM_ID, 1, wsolMint, usdcMint)
	require.NoError(t, err)
	assert.Equal(t, config, addrs.AmmConfig)
	assert.Equal(t, pool, addrs.PoolState)

	tier0, err := DeriveCpmmAddresses(RAYDIUM_CPMM_PROGRAM_ID, 0, wsolMint, usdcMint)
	require.NoError(t, err)
	assert.NotEqual(t, tier0.PoolState, addrs.PoolState)
}

func TestGetPdaPoolId_MintOrderMatters(t *testing.T) {
	config, err := GetPdaAmmConfig(RAYDIUM_CPMM_PROGRAM_ID, 0)
	require.NoError(t, err)

	ordered, err := GetPdaPoolId(RAYDIUM_CPMM_PROGRAM_ID, config.Address, wsolMint, usdcMint)
	require.NoError(t, err)
	swapped, err := GetPdaPoolId(RAYDIUM_CPMM_PROGRAM_ID, config.Address, usdcMint, wsolMint)
	require.NoError(t, err)
	assert.NotEqual(t, ordered.Address, swapped.Address)

	want, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(POOL_SEED), config.Address[:], wsolMint[:], usdcMint[:]},
		RAYDIUM_CPMM_PROGRAM_ID,
	)
	require.NoError(t, err)
	assert.Equal(t, want, ordered.Address)
}

func TestCheckMintOrder(t *testing.T) {
	require.NoError(t, CheckMintOrder(wsolMint, usdcMint))
	require.ErrorIs(t, CheckMintOrder(usdcMint, wsolMint), pkg.ErrConfig)
	require.ErrorIs(t, CheckMintOrder(usdcMint, usdcMint), pkg.ErrConfig)
}

func TestSortMints(t *testing.T) {
	m0, m1, a0, a1 := SortMints(usdcMint, wsolMint, 5, 7)
	assert.Equal(t, wsolMint, m0)
	assert.Equal(t, usdcMint, m1)
	assert.Equal(t, uint64(7), a0)
	assert.Equal(t, uint64(5), a1)

	m0, m1, a0, a1 = SortMints(wsolMint, usdcMint, 5, 7)
	assert.Equal(t, wsolMint, m0)
	assert.Equal(t, usdcMint, m1)
	assert.Equal(t, uint64(5), a0)
	assert.Equal(t, uint64(7), a1)
}

func TestDeriveCpmmAddresses(t *testing.T) {
	addrs, err := DeriveCpmmAddresses(RAYDIUM_CPMM_PROGRAM_ID, 0, wsolMint, usdcMint)
	require.NoError(t, err)

	vault0, _, err := solana.FindProgramAddress([][]byte{[]byte(POOL_VAULT_SEED), addrs.PoolState[:], wsolMint[:]}, RAYDIUM_CPMM_PROGRAM_ID)
	require.NoError(t, err)
	lp, _, err := solana.FindProgramAddress([][]byte{[]byte(POOL_LP_MINT_SEED), addrs.PoolState[:]}, RAYDIUM_CPMM_PROGRAM_ID)
	require.NoError(t, err)
	auth, _, err := solana.FindProgramAddress([][]byte{[]byte(AUTH_SEED)}, RAYDIUM_CPMM_PROGRAM_ID)
	require.NoError(t, err)

	assert.Equal(t, vault0, addrs.Vault0)
	assert.Equal(t, lp, addrs.LpMint)
	assert.Equal(t, auth, addrs.Authority)
	assert.True(t, addrs.TickArrayExt.IsZero())

	_, err = DeriveCpmmAddresses(RAYDIUM_CPMM_PROGRAM_ID, 0, usdcMint, wsolMint)
	require.ErrorIs(t, err, pkg.ErrConfig)
}

func TestDeriveClmmAddresses(t *testing.T) {
	config := solana.MustPublicKeyFromBase58("9iFER3bpjf1PTTCQCfTRu17EJgvsxo9pVyA9QWwEuX4x")
	addrs, err := DeriveClmmAddresses(RAYDIUM_CLMM_PROGRAM_ID, config, wsolMint, usdcMint)
	require.NoError(t, err)

	ext, _, err := solana.FindProgramAddress([][]byte{[]byte(POOL_TICK_ARRAY_BITMAP_SEED), addrs.PoolState[:]}, RAYDIUM_CLMM_PROGRAM_ID)
	require.NoError(t, err)
	assert.Equal(t, ext, addrs.TickArrayExt)
	assert.Equal(t, config, addrs.AmmConfig)
	assert.True(t, addrs.LpMint.IsZero())
}

func TestProgramsForCluster(t *testing.T) {
	p, err := ProgramsForCluster("devnet")
	require.NoError(t, err)
	assert.Equal(t, RAYDIUM_CPMM_DEVNET_PROGRAM_ID, p.Cpmm)
	assert.Equal(t, RAYDIUM_CLMM_DEVNET_PROGRAM_ID, p.Clmm)

	p, err = ProgramsForCluster("mainnet-beta")
	require.NoError(t, err)
	assert.Equal(t, MainnetPrograms(), p)

	_, err = ProgramsForCluster("localnet")
	require.Error(t, err)
}
