package raydium

import (
	"bytes"
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/pda"
)

// Pool-identifying derivations take mints as given. Passing them out of order
// yields a different address than the program expects; see CheckMintOrder.

func GetPdaPoolId(programID, ammConfig, mint0, mint1 solana.PublicKey) (pda.Derived, error) {
	return pda.FindProgramAddress([][]byte{[]byte(POOL_SEED), ammConfig[:], mint0[:], mint1[:]}, programID)
}

func GetPdaPoolVault(programID, poolState, mint solana.PublicKey) (pda.Derived, error) {
	return pda.FindProgramAddress([][]byte{[]byte(POOL_VAULT_SEED), poolState[:], mint[:]}, programID)
}

func GetPdaObservation(programID, poolState solana.PublicKey) (pda.Derived, error) {
	return pda.FindProgramAddress([][]byte{[]byte(OBSERVATION_SEED), poolState[:]}, programID)
}

func GetPdaExBitmapAccount(programID, poolState solana.PublicKey) (pda.Derived, error) {
	return pda.FindProgramAddress([][]byte{[]byte(POOL_TICK_ARRAY_BITMAP_SEED), poolState[:]}, programID)
}

func GetPdaAuthority(programID solana.PublicKey) (pda.Derived, error) {
	return pda.FindProgramAddress([][]byte{[]byte(AUTH_SEED)}, programID)
}

func GetPdaLpMint(programID, poolState solana.PublicKey) (pda.Derived, error) {
	return pda.FindProgramAddress([][]byte{[]byte(POOL_LP_MINT_SEED), poolState[:]}, programID)
}

// GetPdaAmmConfig derives the fee tier config at index, seeded with the index
// as two little-endian bytes.
func GetPdaAmmConfig(programID solana.PublicKey, index uint16) (pda.Derived, error) {
	idx := make([]byte, 2)
	binary.LittleEndian.PutUint16(idx, index)
	return pda.FindProgramAddress([][]byte{[]byte(AMM_CONFIG_SEED), idx}, programID)
}

// CheckMintOrder fails unless mint0 sorts strictly before mint1 byte-wise.
func CheckMintOrder(mint0, mint1 solana.PublicKey) error {
	if bytes.Compare(mint0[:], mint1[:]) >= 0 {
		return errorsmod.Wrapf(pkg.ErrConfig, "mints out of order: %s must sort before %s", mint0, mint1)
	}
	return nil
}

// SortMints orders a mint pair ascending and swaps the paired amounts with it.
func SortMints(mintA, mintB solana.PublicKey, amountA, amountB uint64) (mint0, mint1 solana.PublicKey, amount0, amount1 uint64) {
	if bytes.Compare(mintA[:], mintB[:]) > 0 {
		return mintB, mintA, amountB, amountA
	}
	return mintA, mintB, amountA, amountB
}

// PoolAddresses holds every account derived for one pool.
type PoolAddresses struct {
	AmmConfig    solana.PublicKey
	PoolState    solana.PublicKey
	Vault0       solana.PublicKey
	Vault1       solana.PublicKey
	Observation  solana.PublicKey
	Authority    solana.PublicKey // CPMM only
	LpMint       solana.PublicKey // CPMM only
	TickArrayExt solana.PublicKey // CLMM only
}

// DeriveCpmmAddresses derives the CPMM pool accounts for an ordered mint pair.
func DeriveCpmmAddresses(programID solana.PublicKey, configIndex uint16, mint0, mint1 solana.PublicKey) (PoolAddresses, error) {
	if err := CheckMintOrder(mint0, mint1); err != nil {
		return PoolAddresses{}, err
	}
	config, err := GetPdaAmmConfig(programID, configIndex)
	if err != nil {
		return PoolAddresses{}, err
	}
	out, err := derivePoolCommon(programID, config.Address, mint0, mint1)
	if err != nil {
		return PoolAddresses{}, err
	}
	auth, err := GetPdaAuthority(programID)
	if err != nil {
		return PoolAddresses{}, err
	}
	lp, err := GetPdaLpMint(programID, out.PoolState)
	if err != nil {
		return PoolAddresses{}, err
	}
	out.Authority = auth.Address
	out.LpMint = lp.Address
	return out, nil
}

// DeriveClmmAddresses derives the CLMM pool accounts for an ordered mint pair.
func DeriveClmmAddresses(programID, ammConfig, mint0, mint1 solana.PublicKey) (PoolAddresses, error) {
	if err := CheckMintOrder(mint0, mint1); err != nil {
		return PoolAddresses{}, err
	}
	out, err := derivePoolCommon(programID, ammConfig, mint0, mint1)
	if err != nil {
		return PoolAddresses{}, err
	}
	ext, err := GetPdaExBitmapAccount(programID, out.PoolState)
	if err != nil {
		return PoolAddresses{}, err
	}
	out.TickArrayExt = ext.Address
	return out, nil
}

func derivePoolCommon(programID, ammConfig, mint0, mint1 solana.PublicKey) (PoolAddresses, error) {
	pool, err := GetPdaPoolId(programID, ammConfig, mint0, mint1)
	if err != nil {
		return PoolAddresses{}, err
	}
	vault0, err := GetPdaPoolVault(programID, pool.Address, mint0)
	if err != nil {
		return PoolAddresses{}, err
	}
	vault1, err := GetPdaPoolVault(programID, pool.Address, mint1)
	if err != nil {
		return PoolAddresses{}, err
	}
	obs, err := GetPdaObservation(programID, pool.Address)
	if err != nil {
		return PoolAddresses{}, err
	}
	return PoolAddresses{
		AmmConfig:   ammConfig,
		PoolState:   pool.Address,
		Vault0:      vault0.Address,
		Vault1:      vault1.Address,
		Observation: obs.Address,
	}, nil
}
