package raydium

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/curve"
	"github.com/gtdvccc/raylp/pkg/pda"
	"github.com/gtdvccc/raylp/pkg/sol"
)

// CpmmPosition identifies an existing CPMM pool and the LP amount to move.
type CpmmPosition struct {
	ProgramID   solana.PublicKey
	ConfigIndex uint16
	Mint0       solana.PublicKey
	Mint1       solana.PublicKey
	LpAmount    uint64
	SlippageBps uint32
	// WrapSol funds or closes the owner's WSOL account when one side is WSOL.
	WrapSol bool
}

// CpmmSnapshot is the pool state and fee-adjusted reserves read in one batch.
type CpmmSnapshot struct {
	Pool     CPMMPool
	Vault0   uint64
	Vault1   uint64
	Reserve0 uint64
	Reserve1 uint64
}

// cpmmLiquidity carries what deposit, withdraw and the atomic pair share.
type cpmmLiquidity struct {
	CpmmPosition
	addrs PoolAddresses
}

func newCpmmLiquidity(pos CpmmPosition) (cpmmLiquidity, error) {
	if pos.LpAmount == 0 {
		return cpmmLiquidity{}, errorsmod.Wrap(pkg.ErrConfig, "lp amount must be positive")
	}
	if pos.SlippageBps > curve.BpsDenominator {
		return cpmmLiquidity{}, errorsmod.Wrapf(pkg.ErrConfig, "slippage %d bps exceeds %d", pos.SlippageBps, curve.BpsDenominator)
	}
	addrs, err := DeriveCpmmAddresses(pos.ProgramID, pos.ConfigIndex, pos.Mint0, pos.Mint1)
	if err != nil {
		return cpmmLiquidity{}, err
	}
	return cpmmLiquidity{CpmmPosition: pos, addrs: addrs}, nil
}

func (l *cpmmLiquidity) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameRaydiumCpmm
}

func (l *cpmmLiquidity) ProtocolType() pkg.ProtocolType {
	return pkg.ProtocolTypeRaydiumCpmm
}

func (l *cpmmLiquidity) GetProgramID() solana.PublicKey {
	return l.ProgramID
}

func (l *cpmmLiquidity) GetID() string {
	return l.addrs.PoolState.String()
}

func (l *cpmmLiquidity) Addresses() PoolAddresses {
	return l.addrs
}

func (l *cpmmLiquidity) StateAccounts() []solana.PublicKey {
	return CpmmStateAccounts(l.addrs)
}

// Snapshot decodes the batched read and removes accrued fees from the vaults.
func (l *cpmmLiquidity) Snapshot(accounts []*rpc.Account) (CpmmSnapshot, error) {
	return DecodeCpmmSnapshot(l.ProgramID, l.addrs, accounts)
}

// CpmmStateAccounts is the pool followed by both vaults, read as one snapshot.
func CpmmStateAccounts(addrs PoolAddresses) []solana.PublicKey {
	return []solana.PublicKey{addrs.PoolState, addrs.Vault0, addrs.Vault1}
}

// DecodeCpmmSnapshot decodes accounts read for CpmmStateAccounts(addrs). The
// pool must be owned by programID and point at the derived vaults.
func DecodeCpmmSnapshot(programID solana.PublicKey, addrs PoolAddresses, accounts []*rpc.Account) (CpmmSnapshot, error) {
	keys := CpmmStateAccounts(addrs)
	if err := expectAccounts(accounts, keys); err != nil {
		return CpmmSnapshot{}, err
	}

	var snap CpmmSnapshot
	if !accounts[0].Owner.Equals(programID) {
		return CpmmSnapshot{}, errorsmod.Wrapf(pkg.ErrInvalidAccountData, "pool %s is owned by %s", keys[0], accounts[0].Owner)
	}
	if err := snap.Pool.Decode(accountData(accounts[0])); err != nil {
		return CpmmSnapshot{}, errorsmod.Wrapf(err, "pool %s", keys[0])
	}
	snap.Pool.PoolId = addrs.PoolState
	if !snap.Pool.Token0Vault.Equals(addrs.Vault0) || !snap.Pool.Token1Vault.Equals(addrs.Vault1) {
		return CpmmSnapshot{}, errorsmod.Wrapf(pkg.ErrInvalidAccountData, "pool %s vaults do not match derived addresses", keys[0])
	}

	var err error
	if snap.Vault0, err = TokenAmount(accountData(accounts[1])); err != nil {
		return CpmmSnapshot{}, errorsmod.Wrap(err, "vault 0")
	}
	if snap.Vault1, err = TokenAmount(accountData(accounts[2])); err != nil {
		return CpmmSnapshot{}, errorsmod.Wrap(err, "vault 1")
	}
	snap.Reserve0, snap.Reserve1, err = snap.Pool.VaultAmountWithoutFee(snap.Vault0, snap.Vault1)
	if err != nil {
		return CpmmSnapshot{}, err
	}
	return snap, nil
}

func (l *cpmmLiquidity) liquidityAccounts(owner solana.PublicKey, pool *CPMMPool) (CpmmLiquidityAccounts, error) {
	ownerLp, err := pda.AssociatedTokenAddress(owner, solana.TokenProgramID, l.addrs.LpMint)
	if err != nil {
		return CpmmLiquidityAccounts{}, err
	}
	owner0, err := pda.AssociatedTokenAddress(owner, pool.Token0Program, l.Mint0)
	if err != nil {
		return CpmmLiquidityAccounts{}, err
	}
	owner1, err := pda.AssociatedTokenAddress(owner, pool.Token1Program, l.Mint1)
	if err != nil {
		return CpmmLiquidityAccounts{}, err
	}
	return CpmmLiquidityAccounts{
		Owner:       owner,
		Authority:   l.addrs.Authority,
		PoolState:   l.addrs.PoolState,
		OwnerLp:     ownerLp,
		OwnerToken0: owner0,
		OwnerToken1: owner1,
		Vault0:      l.addrs.Vault0,
		Vault1:      l.addrs.Vault1,
		Mint0:       l.Mint0,
		Mint1:       l.Mint1,
		LpMint:      l.addrs.LpMint,
	}, nil
}

func (l *cpmmLiquidity) depositPrelude(owner solana.PublicKey, guard curve.TradingTokenResult) ([]solana.Instruction, error) {
	createLp, _, err := sol.NewCreateAtaIdempotentInstruction(owner, owner, l.addrs.LpMint, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	instrs := []solana.Instruction{createLp}
	if l.WrapSol {
		wrap, err := wrapSolFor(owner, l.Mint0, l.Mint1, guard.Token0Amount, guard.Token1Amount)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, wrap...)
	}
	return instrs, nil
}

func (l *cpmmLiquidity) withdrawPrelude(owner solana.PublicKey, pool *CPMMPool) ([]solana.Instruction, error) {
	create0, _, err := sol.NewCreateAtaIdempotentInstruction(owner, owner, l.Mint0, pool.Token0Program)
	if err != nil {
		return nil, err
	}
	create1, _, err := sol.NewCreateAtaIdempotentInstruction(owner, owner, l.Mint1, pool.Token1Program)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{create0, create1}, nil
}

func (l *cpmmLiquidity) unwrapSol(owner solana.PublicKey) ([]solana.Instruction, error) {
	if !l.WrapSol || !(l.Mint0.Equals(sol.WSOL) || l.Mint1.Equals(sol.WSOL)) {
		return nil, nil
	}
	closeInst, err := sol.UnwrapSolInstruction(owner)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{closeInst}, nil
}

// CpmmDeposit adds liquidity, minting exactly LpAmount LP tokens.
type CpmmDeposit struct {
	cpmmLiquidity
}

func NewCpmmDeposit(pos CpmmPosition) (*CpmmDeposit, error) {
	l, err := newCpmmLiquidity(pos)
	if err != nil {
		return nil, err
	}
	return &CpmmDeposit{l}, nil
}

func (op *CpmmDeposit) Kind() pkg.OperationKind {
	return pkg.OperationDeposit
}

func (op *CpmmDeposit) BuildInstructions(ctx context.Context, owner solana.PublicKey, accounts []*rpc.Account) ([]solana.Instruction, error) {
	snap, err := op.Snapshot(accounts)
	if err != nil {
		return nil, err
	}
	if !snap.Pool.IsDepositEnabled() {
		return nil, errorsmod.Wrapf(pkg.ErrConfig, "pool %s has deposits disabled (status %d)", op.addrs.PoolState, snap.Pool.Status)
	}
	guard, err := curve.DepositGuard(op.LpAmount, snap.Pool.LpSupply, snap.Reserve0, snap.Reserve1, op.SlippageBps)
	if err != nil {
		return nil, err
	}
	accs, err := op.liquidityAccounts(owner, &snap.Pool)
	if err != nil {
		return nil, err
	}
	instrs, err := op.depositPrelude(owner, guard)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, NewCpmmDepositInstruction(op.ProgramID, accs, op.LpAmount, guard.Token0Amount, guard.Token1Amount))
	// the wrap covers the slippage maximum; closing returns what the deposit left
	unwrap, err := op.unwrapSol(owner)
	if err != nil {
		return nil, err
	}
	return append(instrs, unwrap...), nil
}

// CpmmWithdraw removes liquidity, burning exactly LpAmount LP tokens.
type CpmmWithdraw struct {
	cpmmLiquidity
}

func NewCpmmWithdraw(pos CpmmPosition) (*CpmmWithdraw, error) {
	l, err := newCpmmLiquidity(pos)
	if err != nil {
		return nil, err
	}
	return &CpmmWithdraw{l}, nil
}

func (op *CpmmWithdraw) Kind() pkg.OperationKind {
	return pkg.OperationWithdraw
}

func (op *CpmmWithdraw) BuildInstructions(ctx context.Context, owner solana.PublicKey, accounts []*rpc.Account) ([]solana.Instruction, error) {
	snap, err := op.Snapshot(accounts)
	if err != nil {
		return nil, err
	}
	if !snap.Pool.IsWithdrawEnabled() {
		return nil, errorsmod.Wrapf(pkg.ErrConfig, "pool %s has withdrawals disabled (status %d)", op.addrs.PoolState, snap.Pool.Status)
	}
	guard, err := curve.WithdrawGuard(op.LpAmount, snap.Pool.LpSupply, snap.Reserve0, snap.Reserve1, op.SlippageBps)
	if err != nil {
		return nil, err
	}
	accs, err := op.liquidityAccounts(owner, &snap.Pool)
	if err != nil {
		return nil, err
	}
	instrs, err := op.withdrawPrelude(owner, &snap.Pool)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, NewCpmmWithdrawInstruction(op.ProgramID, accs, op.LpAmount, guard.Token0Amount, guard.Token1Amount))
	unwrap, err := op.unwrapSol(owner)
	if err != nil {
		return nil, err
	}
	return append(instrs, unwrap...), nil
}

// CpmmDepositThenWithdraw deposits and withdraws the same LP amount in one
// transaction, so either both land or neither does.
//
// The withdraw guard is computed against the projected supply lpSupply+LpAmount
// with the pre-deposit reserves. This assumes the deposit mints exactly
// LpAmount and ignores the tokens it adds to the vaults, so it approximates the
// program's own accounting; the minimum it yields is below the true payout.
type CpmmDepositThenWithdraw struct {
	cpmmLiquidity
}

func NewCpmmDepositThenWithdraw(pos CpmmPosition) (*CpmmDepositThenWithdraw, error) {
	l, err := newCpmmLiquidity(pos)
	if err != nil {
		return nil, err
	}
	return &CpmmDepositThenWithdraw{l}, nil
}

func (op *CpmmDepositThenWithdraw) Kind() pkg.OperationKind {
	return pkg.OperationDepositThenWithdraw
}

// Guards returns the deposit maximums and withdraw minimums for snap.
func (op *CpmmDepositThenWithdraw) Guards(snap CpmmSnapshot) (deposit, withdraw curve.TradingTokenResult, err error) {
	deposit, err = curve.DepositGuard(op.LpAmount, snap.Pool.LpSupply, snap.Reserve0, snap.Reserve1, op.SlippageBps)
	if err != nil {
		return deposit, withdraw, err
	}
	projected, err := curve.CheckedAdd(snap.Pool.LpSupply, op.LpAmount)
	if err != nil {
		return deposit, withdraw, errorsmod.Wrap(err, "projected lp supply")
	}
	withdraw, err = curve.WithdrawGuard(op.LpAmount, projected, snap.Reserve0, snap.Reserve1, op.SlippageBps)
	return deposit, withdraw, err
}

func (op *CpmmDepositThenWithdraw) BuildInstructions(ctx context.Context, owner solana.PublicKey, accounts []*rpc.Account) ([]solana.Instruction, error) {
	snap, err := op.Snapshot(accounts)
	if err != nil {
		return nil, err
	}
	if !snap.Pool.IsDepositEnabled() || !snap.Pool.IsWithdrawEnabled() {
		return nil, errorsmod.Wrapf(pkg.ErrConfig, "pool %s status %d disallows deposit or withdraw", op.addrs.PoolState, snap.Pool.Status)
	}
	depositGuard, withdrawGuard, err := op.Guards(snap)
	if err != nil {
		return nil, err
	}
	accs, err := op.liquidityAccounts(owner, &snap.Pool)
	if err != nil {
		return nil, err
	}
	instrs, err := op.depositPrelude(owner, depositGuard)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs,
		NewCpmmDepositInstruction(op.ProgramID, accs, op.LpAmount, depositGuard.Token0Amount, depositGuard.Token1Amount),
		NewCpmmWithdrawInstruction(op.ProgramID, accs, op.LpAmount, withdrawGuard.Token0Amount, withdrawGuard.Token1Amount),
	)
	unwrap, err := op.unwrapSol(owner)
	if err != nil {
		return nil, err
	}
	return append(instrs, unwrap...), nil
}
