package raydium

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// ClmmCreatePoolInstruction initialises a concentrated-liquidity pool at an
// initial square root price.
type ClmmCreatePoolInstruction struct {
	bin.BaseVariant
	SqrtPriceX64            uint128.Uint128
	OpenTime                uint64
	Program                 solana.PublicKey `bin:"-" borsh_skip:"true"`
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// ClmmCreatePoolAccounts are the accounts of the create_pool instruction.
type ClmmCreatePoolAccounts struct {
	Creator       solana.PublicKey
	Pool          PoolAddresses
	Mint0         solana.PublicKey
	Mint1         solana.PublicKey
	Token0Program solana.PublicKey
	Token1Program solana.PublicKey
}

func NewClmmCreatePoolInstruction(programID solana.PublicKey, accs ClmmCreatePoolAccounts, sqrtPriceX64 uint128.Uint128, openTime uint64) *ClmmCreatePoolInstruction {
	inst := &ClmmCreatePoolInstruction{
		SqrtPriceX64:     sqrtPriceX64,
		OpenTime:         openTime,
		Program:          programID,
		AccountMetaSlice: make(solana.AccountMetaSlice, 0, 13),
	}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}
	inst.AccountMetaSlice = append(inst.AccountMetaSlice,
		solana.NewAccountMeta(accs.Creator, true, true),              // pool_creator
		solana.NewAccountMeta(accs.Pool.AmmConfig, false, false),     // amm_config
		solana.NewAccountMeta(accs.Pool.PoolState, true, false),      // pool_state
		solana.NewAccountMeta(accs.Mint0, false, false),              // token_mint_0
		solana.NewAccountMeta(accs.Mint1, false, false),              // token_mint_1
		solana.NewAccountMeta(accs.Pool.Vault0, true, false),         // token_vault_0
		solana.NewAccountMeta(accs.Pool.Vault1, true, false),         // token_vault_1
		solana.NewAccountMeta(accs.Pool.Observation, true, false),    // observation_state
		solana.NewAccountMeta(accs.Pool.TickArrayExt, true, false),   // tick_array_bitmap
		solana.NewAccountMeta(accs.Token0Program, false, false),      // token_program_0
		solana.NewAccountMeta(accs.Token1Program, false, false),      // token_program_1
		solana.NewAccountMeta(solana.SystemProgramID, false, false),  // system_program
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false), // rent
	)
	return inst
}

func (inst *ClmmCreatePoolInstruction) ProgramID() solana.PublicKey {
	return inst.Program
}

func (inst *ClmmCreatePoolInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *ClmmCreatePoolInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)

	if _, err := buf.Write(ClmmCreatePoolDiscriminator); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}

	// u128 little-endian: low word first
	if err := bin.NewBorshEncoder(buf).WriteUint64(inst.SqrtPriceX64.Lo, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode sqrt price lo: %w", err)
	}
	if err := bin.NewBorshEncoder(buf).WriteUint64(inst.SqrtPriceX64.Hi, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode sqrt price hi: %w", err)
	}

	if err := bin.NewBorshEncoder(buf).WriteUint64(inst.OpenTime, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode open time: %w", err)
	}

	return buf.Bytes(), nil
}
