package sol

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/gtdvccc/raylp/pkg/pda"
)

// CreateAtaIdempotentInstruction creates owner's associated token account for
// mint unless it already exists. Works for both SPL Token and Token-2022.
type CreateAtaIdempotentInstruction struct {
	bin.BaseVariant
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func NewCreateAtaIdempotentInstruction(payer, owner, mint, tokenProgram solana.PublicKey) (*CreateAtaIdempotentInstruction, solana.PublicKey, error) {
	ata, err := pda.AssociatedTokenAddress(owner, tokenProgram, mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}
	inst := &CreateAtaIdempotentInstruction{}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}
	inst.AccountMetaSlice = solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),                    // funding account
		solana.NewAccountMeta(ata, true, false),                     // associated token account
		solana.NewAccountMeta(owner, false, false),                  // wallet
		solana.NewAccountMeta(mint, false, false),                   // mint
		solana.NewAccountMeta(solana.SystemProgramID, false, false), // system program
		solana.NewAccountMeta(tokenProgram, false, false),           // token program
	}
	return inst, ata, nil
}

func (inst *CreateAtaIdempotentInstruction) ProgramID() solana.PublicKey {
	return solana.SPLAssociatedTokenAccountProgramID
}

func (inst *CreateAtaIdempotentInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *CreateAtaIdempotentInstruction) Data() ([]byte, error) {
	return []byte{ataCreateIdempotent}, nil
}

// WrapSolInstructions moves lamports into owner's WSOL account, creating it if
// needed, and syncs the token balance.
func WrapSolInstructions(owner solana.PublicKey, lamports uint64) ([]solana.Instruction, error) {
	createAta, wsolAccount, err := NewCreateAtaIdempotentInstruction(owner, owner, WSOL, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}

	transferInst, err := system.NewTransferInstruction(
		lamports,
		owner,
		wsolAccount,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("build transfer: %w", err)
	}

	syncNativeInst, err := token.NewSyncNativeInstruction(
		wsolAccount,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("build sync native: %w", err)
	}

	return []solana.Instruction{createAta, transferInst, syncNativeInst}, nil
}

// UnwrapSolInstruction closes owner's WSOL account, returning its lamports.
func UnwrapSolInstruction(owner solana.PublicKey) (solana.Instruction, error) {
	wsolAccount, err := pda.AssociatedTokenAddress(owner, solana.TokenProgramID, WSOL)
	if err != nil {
		return nil, fmt.Errorf("derive wsol account: %w", err)
	}
	closeInst, err := token.NewCloseAccountInstruction(
		wsolAccount,
		owner,
		owner,
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("build close account: %w", err)
	}
	return closeInst, nil
}
