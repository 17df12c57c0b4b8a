package raydium

import (
	"bytes"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/gtdvccc/raylp/pkg/sol"
)

var (
	wsolMint = sol.WSOL
	usdcMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	owner    = solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")
)

func newAccount(programOwner solana.PublicKey, data []byte) *rpc.Account {
	return &rpc.Account{
		Lamports: 1_000_000,
		Owner:    programOwner,
		Data:     rpc.DataBytesOrJSONFromBytes(data),
	}
}

// mintAccount lays out an 82-byte SPL mint with no authorities.
func mintAccount(tokenProgram solana.PublicKey, decimals uint8) *rpc.Account {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint64(data[36:], 1_000_000_000)
	data[44] = decimals
	data[45] = 1
	return newAccount(tokenProgram, data)
}

// tokenAccount lays out a 165-byte SPL token account holding amount.
func tokenAccount(mint, holder solana.PublicKey, amount uint64) *rpc.Account {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], holder[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return newAccount(solana.TokenProgramID, data)
}

func encodePool(t *testing.T, pool CPMMPool) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, pool.MarshalWithEncoder(bin.NewBinEncoder(buf)))
	return buf.Bytes()
}

// cpmmFixture is a pool with lp supply 1000 over 1_000_000 / 2_000_000
// fee-free reserves.
type cpmmFixture struct {
	addrs  PoolAddresses
	pool   CPMMPool
	vault0 uint64
	vault1 uint64
}

func newCpmmFixture(t *testing.T) *cpmmFixture {
	t.Helper()
	addrs, err := DeriveCpmmAddresses(RAYDIUM_CPMM_PROGRAM_ID, 0, wsolMint, usdcMint)
	require.NoError(t, err)
	return &cpmmFixture{
		addrs: addrs,
		pool: CPMMPool{
			AmmConfig:      addrs.AmmConfig,
			Token0Vault:    addrs.Vault0,
			Token1Vault:    addrs.Vault1,
			LpMint:         addrs.LpMint,
			Token0Mint:     wsolMint,
			Token1Mint:     usdcMint,
			Token0Program:  solana.TokenProgramID,
			Token1Program:  solana.TokenProgramID,
			ObservationKey: addrs.Observation,
			LpMintDecimals: 9,
			Mint0Decimals:  9,
			Mint1Decimals:  6,
			LpSupply:       1000,
		},
		vault0: 1_000_000,
		vault1: 2_000_000,
	}
}

func (f *cpmmFixture) accounts(t *testing.T) []*rpc.Account {
	return []*rpc.Account{
		newAccount(RAYDIUM_CPMM_PROGRAM_ID, encodePool(t, f.pool)),
		tokenAccount(wsolMint, f.addrs.Authority, f.vault0),
		tokenAccount(usdcMint, f.addrs.Authority, f.vault1),
	}
}

func (f *cpmmFixture) position(lp uint64, bps uint32) CpmmPosition {
	return CpmmPosition{
		ProgramID:   RAYDIUM_CPMM_PROGRAM_ID,
		ConfigIndex: 0,
		Mint0:       wsolMint,
		Mint1:       usdcMint,
		LpAmount:    lp,
		SlippageBps: bps,
	}
}

// u64Args splits instruction data into its discriminator and u64 arguments.
func u64Args(t *testing.T, inst solana.Instruction) ([]byte, []uint64) {
	t.Helper()
	data, err := inst.Data()
	require.NoError(t, err)
	require.Equal(t, 0, (len(data)-8)%8)
	args := make([]uint64, 0, (len(data)-8)/8)
	for off := 8; off < len(data); off += 8 {
		args = append(args, binary.LittleEndian.Uint64(data[off:]))
	}
	return data[:8], args
}
