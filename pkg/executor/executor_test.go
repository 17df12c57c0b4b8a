package executor

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/events"
	"github.com/gtdvccc/raylp/pkg/journal"
	"github.com/gtdvccc/raylp/pkg/journal/memory"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
	"github.com/gtdvccc/raylp/pkg/sol"
)

var usdcMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

type fakeTransport struct {
	mu sync.Mutex

	accounts   map[solana.PublicKey]*rpc.Account
	fetches    int
	hashes     byte
	sent       []*solana.Transaction
	sendErr    error
	simulated  int
	confirm    sol.ConfirmationStatus
	confirmErr error
	waits      int
}

func (f *fakeTransport) GetMultipleAccounts(_ context.Context, keys []solana.PublicKey) ([]*rpc.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	out := make([]*rpc.Account, len(keys))
	for i, k := range keys {
		out[i] = f.accounts[k]
	}
	return out, nil
}

func (f *fakeTransport) LatestBlockhash(context.Context) (sol.Blockhash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hashes++
	return sol.Blockhash{Hash: solana.Hash{42, f.hashes}, LastValidBlockHeight: 1_000}, nil
}

func (f *fakeTransport) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return tx.Signatures[0], nil
}

func (f *fakeTransport) SimulateTransaction(context.Context, *solana.Transaction) (*sol.SimulationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simulated++
	return &sol.SimulationResult{Logs: []string{"Program log: ok"}, UnitsConsumed: 52_000}, nil
}

func (f *fakeTransport) WaitForConfirmation(context.Context, solana.Signature, uint64) (sol.ConfirmationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	return f.confirm, f.confirmErr
}

func account(owner solana.PublicKey, data []byte) *rpc.Account {
	return &rpc.Account{Lamports: 1, Owner: owner, Data: rpc.DataBytesOrJSONFromBytes(data)}
}

func tokenAccount(mint, holder solana.PublicKey, amount uint64) *rpc.Account {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], holder[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return account(solana.TokenProgramID, data)
}

// newPoolTransport serves a CPMM pool with supply 1000 over 1_000_000 / 2_000_000.
func newPoolTransport(t *testing.T) (*fakeTransport, raydium.CpmmPosition) {
	t.Helper()
	pos := raydium.CpmmPosition{
		ProgramID:   raydium.RAYDIUM_CPMM_PROGRAM_ID,
		Mint0:       sol.WSOL,
		Mint1:       usdcMint,
		LpAmount:    10,
		SlippageBps: 100,
	}
	addrs, err := raydium.DeriveCpmmAddresses(pos.ProgramID, 0, pos.Mint0, pos.Mint1)
	require.NoError(t, err)

	state := raydium.CPMMPool{
		AmmConfig:     addrs.AmmConfig,
		Token0Vault:   addrs.Vault0,
		Token1Vault:   addrs.Vault1,
		LpMint:        addrs.LpMint,
		Token0Mint:    pos.Mint0,
		Token1Mint:    pos.Mint1,
		Token0Program: solana.TokenProgramID,
		Token1Program: solana.TokenProgramID,
		LpSupply:      1000,
	}
	buf := new(bytes.Buffer)
	require.NoError(t, state.MarshalWithEncoder(bin.NewBinEncoder(buf)))

	return &fakeTransport{
		accounts: map[solana.PublicKey]*rpc.Account{
			addrs.PoolState: account(pos.ProgramID, buf.Bytes()),
			addrs.Vault0:    tokenAccount(pos.Mint0, addrs.Authority, 1_000_000),
			addrs.Vault1:    tokenAccount(pos.Mint1, addrs.Authority, 2_000_000),
		},
		confirm: sol.StatusConfirmed,
	}, pos
}

func TestExecute_DepositThenWithdrawIsOneTransaction(t *testing.T) {
	transport, pos := newPoolTransport(t)
	payer := solana.NewWallet().PrivateKey
	rec := &events.Recorder{}
	store := memory.NewStore()
	exec := New(transport, payer, WithSink(rec), WithJournal(store))

	op, err := raydium.NewCpmmDepositThenWithdraw(pos)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusConfirmed, res.Status)
	assert.Equal(t, 3, res.Instructions)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, 1, transport.fetches)
	tx := transport.sent[0]
	require.Len(t, tx.Message.Instructions, 3)

	var discs [][]byte
	for _, ci := range tx.Message.Instructions[1:] {
		program, err := tx.Message.ResolveProgramIDIndex(ci.ProgramIDIndex)
		require.NoError(t, err)
		assert.Equal(t, raydium.RAYDIUM_CPMM_PROGRAM_ID, program)
		discs = append(discs, []byte(ci.Data[:8]))
	}
	assert.Equal(t, [][]byte{raydium.CpmmDepositDiscriminator, raydium.CpmmWithdrawDiscriminator}, discs)

	sub, err := store.Get(context.Background(), res.Signature.String())
	require.NoError(t, err)
	assert.Equal(t, journal.StatusConfirmed, sub.Status)
	assert.Equal(t, uint64(1_000), sub.LastValidBlockHeight)

	assert.Equal(t, []events.Kind{
		events.KindFetched, events.KindBuilt, events.KindSubmitted, events.KindConfirmed,
	}, rec.Kinds())
}

func TestExecute_PendingBlocksResubmission(t *testing.T) {
	transport, pos := newPoolTransport(t)
	transport.confirm = ""
	transport.confirmErr = context.DeadlineExceeded
	exec := New(transport, solana.NewWallet().PrivateKey)

	op, err := raydium.NewCpmmDeposit(pos)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background(), op)
	require.Error(t, err)
	assert.Equal(t, journal.StatusPending, res.Status)

	_, err = exec.Execute(context.Background(), op)
	require.ErrorIs(t, err, pkg.ErrPendingSubmission)
	assert.Len(t, transport.sent, 1)
	assert.Equal(t, 1, transport.fetches)

	// a different operation on the same pool is not blocked
	withdraw, err := raydium.NewCpmmWithdraw(pos)
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), withdraw)
	require.Error(t, err)
	assert.Len(t, transport.sent, 2)

	transport.confirm = sol.StatusConfirmed
	transport.confirmErr = nil
	resolved, err := exec.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, journal.StatusConfirmed, resolved[0].Status)

	res, err = exec.Execute(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusConfirmed, res.Status)
	assert.Len(t, transport.sent, 3)
}

func TestExecute_SendFailures(t *testing.T) {
	t.Run("rejected by node", func(t *testing.T) {
		transport, pos := newPoolTransport(t)
		transport.sendErr = fmt.Errorf("%w: %w", pkg.ErrSubmission, &jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed"})
		store := memory.NewStore()
		exec := New(transport, solana.NewWallet().PrivateKey, WithJournal(store))

		op, err := raydium.NewCpmmWithdraw(pos)
		require.NoError(t, err)
		res, err := exec.Execute(context.Background(), op)
		require.ErrorIs(t, err, pkg.ErrSubmission)
		assert.Equal(t, journal.StatusFailed, res.Status)
		assert.Equal(t, 0, transport.waits)

		sub, err := store.Get(context.Background(), res.Signature.String())
		require.NoError(t, err)
		assert.Equal(t, journal.StatusFailed, sub.Status)
		assert.Contains(t, sub.Error, "Transaction simulation failed")

		// nothing is pending, so a retry by the caller is allowed
		_, err = exec.Execute(context.Background(), op)
		require.ErrorIs(t, err, pkg.ErrSubmission)
		assert.Len(t, transport.sent, 2)
	})

	t.Run("outcome unknown", func(t *testing.T) {
		transport, pos := newPoolTransport(t)
		transport.sendErr = fmt.Errorf("%w: %w", pkg.ErrSubmission, context.DeadlineExceeded)
		exec := New(transport, solana.NewWallet().PrivateKey)

		op, err := raydium.NewCpmmWithdraw(pos)
		require.NoError(t, err)
		res, err := exec.Execute(context.Background(), op)
		require.Error(t, err)
		assert.Equal(t, journal.StatusPending, res.Status)

		_, err = exec.Execute(context.Background(), op)
		require.ErrorIs(t, err, pkg.ErrPendingSubmission)
		assert.Len(t, transport.sent, 1)
	})
}

func TestExecute_FailedAndExpired(t *testing.T) {
	cases := []struct {
		name    string
		status  sol.ConfirmationStatus
		err     error
		want    journal.Status
		wantErr error
		kind    events.Kind
	}{
		{"failed", sol.StatusFailed, fmt.Errorf("%w: custom program error", pkg.ErrSubmission), journal.StatusFailed, pkg.ErrSubmission, events.KindFailed},
		{"expired", sol.StatusExpired, pkg.ErrTransactionExpired, journal.StatusExpired, pkg.ErrTransactionExpired, events.KindExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport, pos := newPoolTransport(t)
			transport.confirm = tc.status
			transport.confirmErr = tc.err
			rec := &events.Recorder{}
			exec := New(transport, solana.NewWallet().PrivateKey, WithSink(rec))

			op, err := raydium.NewCpmmDeposit(pos)
			require.NoError(t, err)
			res, err := exec.Execute(context.Background(), op)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.want, res.Status)

			evs := rec.Events()
			last := evs[len(evs)-1]
			assert.Equal(t, tc.kind, last.Kind)
			assert.Error(t, last.Err)
		})
	}
}

func TestExecute_Simulate(t *testing.T) {
	transport, pos := newPoolTransport(t)
	store := memory.NewStore()
	exec := New(transport, solana.NewWallet().PrivateKey, WithSimulate(true), WithJournal(store))

	op, err := raydium.NewCpmmDepositThenWithdraw(pos)
	require.NoError(t, err)
	res, err := exec.Execute(context.Background(), op)
	require.NoError(t, err)
	require.NotNil(t, res.Simulation)
	assert.Equal(t, uint64(52_000), res.Simulation.UnitsConsumed)
	assert.Equal(t, 1, transport.simulated)
	assert.Empty(t, transport.sent)

	pending, err := store.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExecute_BuildErrorSendsNothing(t *testing.T) {
	transport, pos := newPoolTransport(t)
	pos.Mint1 = solana.MustPublicKeyFromBase58("USDCoctVLVnvTXBEuP9s8hntucdJokbo17RwHuNXemT")
	exec := New(transport, solana.NewWallet().PrivateKey)

	op, err := raydium.NewCpmmDeposit(pos)
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), op)
	require.ErrorIs(t, err, pkg.ErrAccountNotFound)
	assert.Empty(t, transport.sent)
}
