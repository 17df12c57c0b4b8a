package raydium

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// encodeU64Args writes discriminator followed by each value as u64 LE.
func encodeU64Args(discriminator []byte, names []string, values ...uint64) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.Write(discriminator); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}
	enc := bin.NewBorshEncoder(buf)
	for i, v := range values {
		if err := enc.WriteUint64(v, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", names[i], err)
		}
	}
	return buf.Bytes(), nil
}

// CpmmInitializeInstruction creates a CPMM pool and seeds it with both tokens.
type CpmmInitializeInstruction struct {
	bin.BaseVariant
	InitAmount0             uint64
	InitAmount1             uint64
	OpenTime                uint64
	Program                 solana.PublicKey `bin:"-" borsh_skip:"true"`
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// CpmmInitializeAccounts are the accounts of the initialize instruction.
type CpmmInitializeAccounts struct {
	Creator       solana.PublicKey
	Pool          PoolAddresses
	Mint0         solana.PublicKey
	Mint1         solana.PublicKey
	CreatorToken0 solana.PublicKey
	CreatorToken1 solana.PublicKey
	CreatorLp     solana.PublicKey
	CreatePoolFee solana.PublicKey
	Token0Program solana.PublicKey
	Token1Program solana.PublicKey
}

func NewCpmmInitializeInstruction(programID solana.PublicKey, accs CpmmInitializeAccounts, amount0, amount1, openTime uint64) *CpmmInitializeInstruction {
	inst := &CpmmInitializeInstruction{
		InitAmount0:      amount0,
		InitAmount1:      amount1,
		OpenTime:         openTime,
		Program:          programID,
		AccountMetaSlice: make(solana.AccountMetaSlice, 0, 20),
	}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}
	inst.AccountMetaSlice = append(inst.AccountMetaSlice,
		solana.NewAccountMeta(accs.Creator, true, true),                                // creator
		solana.NewAccountMeta(accs.Pool.AmmConfig, false, false),                       // amm_config
		solana.NewAccountMeta(accs.Pool.Authority, false, false),                       // authority
		solana.NewAccountMeta(accs.Pool.PoolState, true, false),                        // pool_state
		solana.NewAccountMeta(accs.Mint0, false, false),                                // token_0_mint
		solana.NewAccountMeta(accs.Mint1, false, false),                                // token_1_mint
		solana.NewAccountMeta(accs.Pool.LpMint, true, false),                           // lp_mint
		solana.NewAccountMeta(accs.CreatorToken0, true, false),                         // creator_token_0
		solana.NewAccountMeta(accs.CreatorToken1, true, false),                         // creator_token_1
		solana.NewAccountMeta(accs.CreatorLp, true, false),                             // creator_lp_token
		solana.NewAccountMeta(accs.Pool.Vault0, true, false),                           // token_0_vault
		solana.NewAccountMeta(accs.Pool.Vault1, true, false),                           // token_1_vault
		solana.NewAccountMeta(accs.CreatePoolFee, true, false),                         // create_pool_fee
		solana.NewAccountMeta(accs.Pool.Observation, true, false),                      // observation_state
		solana.NewAccountMeta(solana.TokenProgramID, false, false),                     // token_program
		solana.NewAccountMeta(accs.Token0Program, false, false),                        // token_0_program
		solana.NewAccountMeta(accs.Token1Program, false, false),                        // token_1_program
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false), // associated_token_program
		solana.NewAccountMeta(solana.SystemProgramID, false, false),                    // system_program
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),                   // rent
	)
	return inst
}

func (inst *CpmmInitializeInstruction) ProgramID() solana.PublicKey {
	return inst.Program
}

func (inst *CpmmInitializeInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *CpmmInitializeInstruction) Data() ([]byte, error) {
	return encodeU64Args(CpmmInitializeDiscriminator,
		[]string{"init amount 0", "init amount 1", "open time"},
		inst.InitAmount0, inst.InitAmount1, inst.OpenTime)
}

// CpmmLiquidityAccounts are shared by the deposit and withdraw instructions.
type CpmmLiquidityAccounts struct {
	Owner       solana.PublicKey
	Authority   solana.PublicKey
	PoolState   solana.PublicKey
	OwnerLp     solana.PublicKey
	OwnerToken0 solana.PublicKey
	OwnerToken1 solana.PublicKey
	Vault0      solana.PublicKey
	Vault1      solana.PublicKey
	Mint0       solana.PublicKey
	Mint1       solana.PublicKey
	LpMint      solana.PublicKey
}

func (a CpmmLiquidityAccounts) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Owner, false, true),                // owner
		solana.NewAccountMeta(a.Authority, false, false),           // authority
		solana.NewAccountMeta(a.PoolState, true, false),            // pool_state
		solana.NewAccountMeta(a.OwnerLp, true, false),              // owner_lp_token
		solana.NewAccountMeta(a.OwnerToken0, true, false),          // token_0_account
		solana.NewAccountMeta(a.OwnerToken1, true, false),          // token_1_account
		solana.NewAccountMeta(a.Vault0, true, false),               // token_0_vault
		solana.NewAccountMeta(a.Vault1, true, false),               // token_1_vault
		solana.NewAccountMeta(solana.TokenProgramID, false, false), // token_program
		solana.NewAccountMeta(TOKEN_2022_PROGRAM_ID, false, false), // token_program_2022
		solana.NewAccountMeta(a.Mint0, false, false),               // vault_0_mint
		solana.NewAccountMeta(a.Mint1, false, false),               // vault_1_mint
		solana.NewAccountMeta(a.LpMint, true, false),               // lp_mint
	}
}

// CpmmDepositInstruction mints LpTokenAmount to the owner, taking at most the
// given amount of each token.
type CpmmDepositInstruction struct {
	bin.BaseVariant
	LpTokenAmount           uint64
	MaximumToken0Amount     uint64
	MaximumToken1Amount     uint64
	Program                 solana.PublicKey `bin:"-" borsh_skip:"true"`
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func NewCpmmDepositInstruction(programID solana.PublicKey, accs CpmmLiquidityAccounts, lpAmount, max0, max1 uint64) *CpmmDepositInstruction {
	inst := &CpmmDepositInstruction{
		LpTokenAmount:       lpAmount,
		MaximumToken0Amount: max0,
		MaximumToken1Amount: max1,
		Program:             programID,
		AccountMetaSlice:    accs.metas(),
	}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}
	return inst
}

func (inst *CpmmDepositInstruction) ProgramID() solana.PublicKey {
	return inst.Program
}

func (inst *CpmmDepositInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *CpmmDepositInstruction) Data() ([]byte, error) {
	return encodeU64Args(CpmmDepositDiscriminator,
		[]string{"lp token amount", "maximum token 0 amount", "maximum token 1 amount"},
		inst.LpTokenAmount, inst.MaximumToken0Amount, inst.MaximumToken1Amount)
}

// CpmmWithdrawInstruction burns LpTokenAmount, paying out at least the given
// amount of each token.
type CpmmWithdrawInstruction struct {
	bin.BaseVariant
	LpTokenAmount           uint64
	MinimumToken0Amount     uint64
	MinimumToken1Amount     uint64
	Program                 solana.PublicKey `bin:"-" borsh_skip:"true"`
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func NewCpmmWithdrawInstruction(programID solana.PublicKey, accs CpmmLiquidityAccounts, lpAmount, min0, min1 uint64) *CpmmWithdrawInstruction {
	inst := &CpmmWithdrawInstruction{
		LpTokenAmount:       lpAmount,
		MinimumToken0Amount: min0,
		MinimumToken1Amount: min1,
		Program:             programID,
		AccountMetaSlice:    accs.metas(),
	}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}
	inst.AccountMetaSlice = append(inst.AccountMetaSlice,
		solana.NewAccountMeta(MEMO_PROGRAM_ID, false, false), // memo_program
	)
	return inst
}

func (inst *CpmmWithdrawInstruction) ProgramID() solana.PublicKey {
	return inst.Program
}

func (inst *CpmmWithdrawInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *CpmmWithdrawInstruction) Data() ([]byte, error) {
	return encodeU64Args(CpmmWithdrawDiscriminator,
		[]string{"lp token amount", "minimum token 0 amount", "minimum token 1 amount"},
		inst.LpTokenAmount, inst.MinimumToken0Amount, inst.MinimumToken1Amount)
}
