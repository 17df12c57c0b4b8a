package raydium

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtdvccc/raylp/pkg"
)

func TestCPMMPool_EncodeDecode(t *testing.T) {
	f := newCpmmFixture(t)
	f.pool.ProtocolFeesToken0 = 60
	f.pool.FundFeesToken1 = 40
	f.pool.Status = 2
	f.pool.OpenTime = 1_700_000_000

	data := encodePool(t, f.pool)
	require.Len(t, data, CpmmPoolStateSize)
	assert.Equal(t, PoolStateDiscriminator[:], data[:8])

	var got CPMMPool
	require.NoError(t, got.Decode(data))
	assert.Equal(t, f.pool, got)
	assert.True(t, got.IsDepositEnabled())
	assert.False(t, got.IsWithdrawEnabled())
}

func TestCPMMPool_DecodeRejects(t *testing.T) {
	f := newCpmmFixture(t)
	data := encodePool(t, f.pool)

	var pool CPMMPool
	require.ErrorIs(t, pool.Decode(data[:100]), pkg.ErrInvalidAccountData)

	data[0] ^= 0xff
	require.ErrorIs(t, pool.Decode(data), pkg.ErrInvalidAccountData)
}

func TestCPMMPool_VaultAmountWithoutFee(t *testing.T) {
	pool := CPMMPool{ProtocolFeesToken0: 60, FundFeesToken0: 40, ProtocolFeesToken1: 1}
	r0, r1, err := pool.VaultAmountWithoutFee(1_000_100, 2_000_001)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), r0)
	assert.Equal(t, uint64(2_000_000), r1)

	_, _, err = pool.VaultAmountWithoutFee(99, 2_000_001)
	require.ErrorIs(t, err, pkg.ErrArithmetic)
}

func TestTokenAmount(t *testing.T) {
	acc := tokenAccount(usdcMint, owner, 123_456)
	amount, err := TokenAmount(accountData(acc))
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456), amount)

	_, err = TokenAmount([]byte{1, 2, 3})
	require.ErrorIs(t, err, pkg.ErrInvalidAccountData)
}

func TestCLMMPool_Decode(t *testing.T) {
	data := make([]byte, ClmmPoolStateSize)
	data[8] = 254
	copy(data[73:105], wsolMint[:])
	copy(data[105:137], usdcMint[:])
	data[233] = 9
	data[234] = 6
	binary.LittleEndian.PutUint16(data[235:], 60)
	// sqrt price 1.0 in Q64.64
	binary.LittleEndian.PutUint64(data[261:], 1)

	var pool CLMMPool
	require.NoError(t, pool.Decode(data))
	assert.Equal(t, uint8(254), pool.Bump)
	assert.Equal(t, wsolMint, pool.TokenMint0)
	assert.Equal(t, usdcMint, pool.TokenMint1)
	assert.Equal(t, uint16(60), pool.TickSpacing)
	assert.Equal(t, uint64(1), pool.SqrtPriceX64.Hi)
	assert.InDelta(t, 1.0, pool.CurrentPrice(), 1e-12)
	assert.InDelta(t, 1000.0, pool.UiPrice(), 1e-9)
	assert.True(t, pool.IsSwapEnabled())

	require.ErrorIs(t, pool.Decode(data[:200]), pkg.ErrInvalidAccountData)
}

func TestDecodeMint(t *testing.T) {
	info, err := decodeMint(usdcMint, mintAccount(TOKEN_2022_PROGRAM_ID, 6))
	require.NoError(t, err)
	assert.Equal(t, uint8(6), info.Decimals)
	assert.Equal(t, TOKEN_2022_PROGRAM_ID, info.TokenProgram)

	_, err = decodeMint(usdcMint, nil)
	require.ErrorIs(t, err, pkg.ErrAccountNotFound)

	_, err = decodeMint(usdcMint, mintAccount(solana.SystemProgramID, 6))
	require.ErrorIs(t, err, pkg.ErrInvalidAccountData)
}

func TestParsePublicKey(t *testing.T) {
	key, err := ParsePublicKey("mint", usdcMint.String())
	require.NoError(t, err)
	assert.Equal(t, usdcMint, key)

	_, err = ParsePublicKey("mint", "not-a-key")
	require.ErrorIs(t, err, pkg.ErrInvalidAddress)
}
