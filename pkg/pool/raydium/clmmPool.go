package raydium

import (
	"encoding/binary"
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/raylp/pkg"
)

// ClmmPoolStateSize is the on-chain account size including the 8-byte tag.
const ClmmPoolStateSize = 1544

type CLMMPool struct {
	// Core states
	Bump           uint8
	AmmConfig      solana.PublicKey
	Owner          solana.PublicKey
	TokenMint0     solana.PublicKey
	TokenMint1     solana.PublicKey
	TokenVault0    solana.PublicKey
	TokenVault1    solana.PublicKey
	ObservationKey solana.PublicKey
	MintDecimals0  uint8
	MintDecimals1  uint8
	TickSpacing    uint16
	// Liquidity states
	Liquidity                 uint128.Uint128
	SqrtPriceX64              uint128.Uint128
	TickCurrent               int32
	ObservationIndex          uint16
	ObservationUpdateDuration uint16
	FeeGrowthGlobal0X64       uint128.Uint128
	FeeGrowthGlobal1X64       uint128.Uint128
	ProtocolFeesToken0        uint64
	ProtocolFeesToken1        uint64
	SwapInAmountToken0        uint128.Uint128
	SwapOutAmountToken1       uint128.Uint128
	SwapInAmountToken1        uint128.Uint128
	SwapOutAmountToken0       uint128.Uint128
	Status                    uint8
	// Reward states
	RewardInfos [3]RewardInfo
	// Tick array states
	TickArrayBitmap [16]uint64
	// Fee states
	TotalFeesToken0        uint64
	TotalFeesClaimedToken0 uint64
	TotalFeesToken1        uint64
	TotalFeesClaimedToken1 uint64
	FundFeesToken0         uint64
	FundFeesToken1         uint64
	// Other states
	OpenTime    uint64
	RecentEpoch uint64

	PoolId solana.PublicKey
}

type RewardInfo struct {
	RewardState           uint8
	OpenTime              uint64
	EndTime               uint64
	LastUpdateTime        uint64
	EmissionsPerSecondX64 uint128.Uint128
	RewardTotalEmissioned uint64
	RewardClaimed         uint64
	TokenMint             solana.PublicKey
	TokenVault            solana.PublicKey
	Authority             solana.PublicKey
	RewardGrowthGlobalX64 uint128.Uint128
}

// reader walks a byte slice front to back. Bounds are checked once in Decode.
type reader struct {
	data   []byte
	offset int
}

func (r *reader) u8() uint8 {
	v := r.data[r.offset]
	r.offset++
	return v
}

func (r *reader) u16() uint16 {
	v := binary.LittleEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return v
}

func (r *reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v
}

func (r *reader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return v
}

func (r *reader) u128() uint128.Uint128 {
	v := uint128.FromBytes(r.data[r.offset : r.offset+16])
	r.offset += 16
	return v
}

func (r *reader) key() solana.PublicKey {
	v := solana.PublicKeyFromBytes(r.data[r.offset : r.offset+32])
	r.offset += 32
	return v
}

func (r *reader) skip(n int) {
	r.offset += n
}

func (l *CLMMPool) Decode(data []byte) error {
	if len(data) < ClmmPoolStateSize {
		return errorsmod.Wrapf(pkg.ErrInvalidAccountData, "clmm pool state is %d bytes, want %d", len(data), ClmmPoolStateSize)
	}
	// 8 bytes account tag
	r := &reader{data: data, offset: 8}

	l.Bump = r.u8()
	l.AmmConfig = r.key()
	l.Owner = r.key()
	l.TokenMint0 = r.key()
	l.TokenMint1 = r.key()
	l.TokenVault0 = r.key()
	l.TokenVault1 = r.key()
	l.ObservationKey = r.key()
	l.MintDecimals0 = r.u8()
	l.MintDecimals1 = r.u8()
	l.TickSpacing = r.u16()

	l.Liquidity = r.u128()
	l.SqrtPriceX64 = r.u128()
	l.TickCurrent = int32(r.u32())
	l.ObservationIndex = r.u16()
	l.ObservationUpdateDuration = r.u16()
	l.FeeGrowthGlobal0X64 = r.u128()
	l.FeeGrowthGlobal1X64 = r.u128()
	l.ProtocolFeesToken0 = r.u64()
	l.ProtocolFeesToken1 = r.u64()
	l.SwapInAmountToken0 = r.u128()
	l.SwapOutAmountToken1 = r.u128()
	l.SwapInAmountToken1 = r.u128()
	l.SwapOutAmountToken0 = r.u128()
	l.Status = r.u8()
	r.skip(7)

	for i := range l.RewardInfos {
		ri := &l.RewardInfos[i]
		ri.RewardState = r.u8()
		ri.OpenTime = r.u64()
		ri.EndTime = r.u64()
		ri.LastUpdateTime = r.u64()
		ri.EmissionsPerSecondX64 = r.u128()
		ri.RewardTotalEmissioned = r.u64()
		ri.RewardClaimed = r.u64()
		ri.TokenMint = r.key()
		ri.TokenVault = r.key()
		ri.Authority = r.key()
		ri.RewardGrowthGlobalX64 = r.u128()
	}

	for i := range l.TickArrayBitmap {
		l.TickArrayBitmap[i] = r.u64()
	}

	l.TotalFeesToken0 = r.u64()
	l.TotalFeesClaimedToken0 = r.u64()
	l.TotalFeesToken1 = r.u64()
	l.TotalFeesClaimedToken1 = r.u64()
	l.FundFeesToken0 = r.u64()
	l.FundFeesToken1 = r.u64()

	l.OpenTime = r.u64()
	l.RecentEpoch = r.u64()
	// remaining bytes are padding
	return nil
}

func (pool *CLMMPool) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameRaydiumClmm
}

func (pool *CLMMPool) ProtocolType() pkg.ProtocolType {
	return pkg.ProtocolTypeRaydiumClmm
}

// GetID returns the pool ID
func (pool *CLMMPool) GetID() string {
	return pool.PoolId.String()
}

// CurrentPrice returns token1 per token0 in base units.
func (l *CLMMPool) CurrentPrice() float64 {
	sqrtPrice, _ := l.SqrtPriceX64.Big().Float64()
	// Q64.64 format conversion
	sqrtPrice = sqrtPrice / math.Pow(2, 64)
	return sqrtPrice * sqrtPrice
}

// UiPrice returns token1 per token0 adjusted by the mint decimals.
func (l *CLMMPool) UiPrice() float64 {
	return l.CurrentPrice() * math.Pow(10, float64(int(l.MintDecimals0)-int(l.MintDecimals1)))
}

// IsSwapEnabled checks if swap functionality is enabled for this pool
func (l *CLMMPool) IsSwapEnabled() bool {
	// Bit 4 corresponds to Swap functionality
	// If bit is 0, swap is enabled; if bit is 1, swap is disabled
	swapBit := (l.Status >> 4) & 1
	return swapBit == 0
}
