package raydium

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/curve"
)

// CpmmPoolStateSize is the on-chain account size including the 8-byte tag.
const CpmmPoolStateSize = 8 + 10*32 + 5 + 7*8 + 31*8

// PoolStateDiscriminator is the Anchor account tag for PoolState.
var PoolStateDiscriminator = anchorAccountDiscriminator("PoolState")

func anchorAccountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// CPMMPool is the decoded state of a constant-product pool.
type CPMMPool struct {
	AmmConfig      solana.PublicKey
	PoolCreator    solana.PublicKey
	Token0Vault    solana.PublicKey
	Token1Vault    solana.PublicKey
	LpMint         solana.PublicKey
	Token0Mint     solana.PublicKey
	Token1Mint     solana.PublicKey
	Token0Program  solana.PublicKey
	Token1Program  solana.PublicKey
	ObservationKey solana.PublicKey

	AuthBump       uint8
	Status         uint8
	LpMintDecimals uint8
	Mint0Decimals  uint8
	Mint1Decimals  uint8

	LpSupply           uint64
	ProtocolFeesToken0 uint64
	ProtocolFeesToken1 uint64
	FundFeesToken0     uint64
	FundFeesToken1     uint64
	OpenTime           uint64
	RecentEpoch        uint64
	Padding            [31]uint64

	PoolId solana.PublicKey `bin:"-"`
}

func (pool *CPMMPool) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadNBytes(8)
	if err != nil {
		return fmt.Errorf("read account tag: %w", err)
	}
	if !bytes.Equal(tag, PoolStateDiscriminator[:]) {
		return errorsmod.Wrapf(pkg.ErrInvalidAccountData, "account tag %x is not PoolState", tag)
	}

	keys := []*solana.PublicKey{
		&pool.AmmConfig, &pool.PoolCreator, &pool.Token0Vault, &pool.Token1Vault, &pool.LpMint,
		&pool.Token0Mint, &pool.Token1Mint, &pool.Token0Program, &pool.Token1Program, &pool.ObservationKey,
	}
	for _, k := range keys {
		b, err := decoder.ReadNBytes(32)
		if err != nil {
			return fmt.Errorf("decode pubkey: %w", err)
		}
		*k = solana.PublicKeyFromBytes(b)
	}

	small := []*uint8{&pool.AuthBump, &pool.Status, &pool.LpMintDecimals, &pool.Mint0Decimals, &pool.Mint1Decimals}
	for _, v := range small {
		if *v, err = decoder.ReadUint8(); err != nil {
			return fmt.Errorf("decode u8: %w", err)
		}
	}

	wide := []*uint64{
		&pool.LpSupply, &pool.ProtocolFeesToken0, &pool.ProtocolFeesToken1,
		&pool.FundFeesToken0, &pool.FundFeesToken1, &pool.OpenTime, &pool.RecentEpoch,
	}
	for _, v := range wide {
		if *v, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
			return fmt.Errorf("decode u64: %w", err)
		}
	}
	for i := range pool.Padding {
		if pool.Padding[i], err = decoder.ReadUint64(binary.LittleEndian); err != nil {
			return fmt.Errorf("decode padding: %w", err)
		}
	}
	return nil
}

func (pool CPMMPool) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(PoolStateDiscriminator[:], false); err != nil {
		return err
	}
	for _, k := range []solana.PublicKey{
		pool.AmmConfig, pool.PoolCreator, pool.Token0Vault, pool.Token1Vault, pool.LpMint,
		pool.Token0Mint, pool.Token1Mint, pool.Token0Program, pool.Token1Program, pool.ObservationKey,
	} {
		if err := encoder.WriteBytes(k[:], false); err != nil {
			return err
		}
	}
	for _, v := range []uint8{pool.AuthBump, pool.Status, pool.LpMintDecimals, pool.Mint0Decimals, pool.Mint1Decimals} {
		if err := encoder.WriteUint8(v); err != nil {
			return err
		}
	}
	for _, v := range []uint64{
		pool.LpSupply, pool.ProtocolFeesToken0, pool.ProtocolFeesToken1,
		pool.FundFeesToken0, pool.FundFeesToken1, pool.OpenTime, pool.RecentEpoch,
	} {
		if err := encoder.WriteUint64(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	for _, v := range pool.Padding {
		if err := encoder.WriteUint64(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	return nil
}

// Decode parses a raw PoolState account.
func (pool *CPMMPool) Decode(data []byte) error {
	if len(data) < CpmmPoolStateSize {
		return errorsmod.Wrapf(pkg.ErrInvalidAccountData, "pool state is %d bytes, want %d", len(data), CpmmPoolStateSize)
	}
	return pool.UnmarshalWithDecoder(bin.NewBinDecoder(data))
}

func (pool *CPMMPool) GetID() string {
	return pool.PoolId.String()
}

// VaultAmountWithoutFee returns the reserves backing LP tokens: raw vault
// balances minus the protocol and fund fees still held in the vaults.
func (pool *CPMMPool) VaultAmountWithoutFee(vault0, vault1 uint64) (uint64, uint64, error) {
	r0, err := curve.VaultAmountWithoutFee(vault0, pool.ProtocolFeesToken0, pool.FundFeesToken0)
	if err != nil {
		return 0, 0, errorsmod.Wrap(err, "token 0 vault")
	}
	r1, err := curve.VaultAmountWithoutFee(vault1, pool.ProtocolFeesToken1, pool.FundFeesToken1)
	if err != nil {
		return 0, 0, errorsmod.Wrap(err, "token 1 vault")
	}
	return r0, r1, nil
}

// IsDepositEnabled checks status bit 0; a set bit disables deposits.
func (pool *CPMMPool) IsDepositEnabled() bool {
	return pool.Status&1 == 0
}

// IsWithdrawEnabled checks status bit 1; a set bit disables withdrawals.
func (pool *CPMMPool) IsWithdrawEnabled() bool {
	return (pool.Status>>1)&1 == 0
}

// TokenAmount decodes the balance of an SPL or Token-2022 token account.
func TokenAmount(data []byte) (uint64, error) {
	var acc token.Account
	if err := acc.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return 0, errorsmod.Wrapf(pkg.ErrInvalidAccountData, "token account: %v", err)
	}
	return acc.Amount, nil
}
