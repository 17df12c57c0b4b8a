package sol

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAtaIdempotentInstruction(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	inst, ata, err := NewCreateAtaIdempotentInstruction(owner, owner, mint, solana.TokenProgramID)
	require.NoError(t, err)

	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, want, ata)

	data, err := inst.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, inst.ProgramID())

	metas := inst.Accounts()
	require.Len(t, metas, 6)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, ata, metas[1].PublicKey)
	assert.True(t, metas[1].IsWritable)
	assert.Equal(t, solana.TokenProgramID, metas[5].PublicKey)
}

func TestWrapSolInstructions(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	instrs, err := WrapSolInstructions(owner, 5_000)
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, instrs[0].ProgramID())
	assert.Equal(t, solana.SystemProgramID, instrs[1].ProgramID())
	assert.Equal(t, solana.TokenProgramID, instrs[2].ProgramID())

	wsolAccount, _, err := solana.FindAssociatedTokenAddress(owner, WSOL)
	require.NoError(t, err)
	assert.Equal(t, wsolAccount, instrs[1].Accounts()[1].PublicKey)

	closeInst, err := UnwrapSolInstruction(owner)
	require.NoError(t, err)
	assert.Equal(t, wsolAccount, closeInst.Accounts()[0].PublicKey)
}
