package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/curve"
	"github.com/gtdvccc/raylp/pkg/events"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
)

func newCpmmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpmm",
		Short: "Raydium constant-product pools",
	}

	createCmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create a CPMM pool with its initial liquidity",
		RunE:  runE(runCpmmCreatePool),
	}
	createCmd.Flags().String("mint-a", "", "first mint (any order)")
	createCmd.Flags().String("mint-b", "", "second mint (any order)")
	createCmd.Flags().Uint64("amount-a", 0, "initial amount of mint-a in base units")
	createCmd.Flags().Uint64("amount-b", 0, "initial amount of mint-b in base units")
	createCmd.Flags().Uint16("config-index", 0, "AMM config index (fee tier)")
	createCmd.Flags().Uint64("open-time", 0, "unix time the pool opens (now when 0)")
	createCmd.Flags().Bool("wrap-sol", true, "fund the WSOL account when one mint is WSOL")
	cmd.AddCommand(createCmd)

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Show a CPMM pool's reserves and quote an LP amount",
		RunE:  runE(runCpmmPool),
	}
	positionFlags(poolCmd)
	cmd.AddCommand(poolCmd)

	for _, c := range []struct {
		use   string
		short string
		kind  pkg.OperationKind
	}{
		{"deposit", "Deposit liquidity for an exact LP amount", pkg.OperationDeposit},
		{"withdraw", "Withdraw liquidity by burning an exact LP amount", pkg.OperationWithdraw},
		{"deposit-withdraw", "Deposit and withdraw the same LP amount in one transaction", pkg.OperationDepositThenWithdraw},
	} {
		kind := c.kind
		liquidityCmd := &cobra.Command{
			Use:   c.use,
			Short: c.short,
			RunE: runE(func(ctx context.Context, a *app, cmd *cobra.Command) error {
				return runCpmmLiquidity(ctx, a, cmd, kind)
			}),
		}
		positionFlags(liquidityCmd)
		liquidityCmd.Flags().Bool("wrap-sol", true, "wrap or unwrap SOL when one mint is WSOL")
		cmd.AddCommand(liquidityCmd)
	}

	return cmd
}

func positionFlags(cmd *cobra.Command) {
	cmd.Flags().String("mint0", "", "token 0 mint")
	cmd.Flags().String("mint1", "", "token 1 mint")
	cmd.Flags().Uint16("config-index", 0, "AMM config index (fee tier)")
	cmd.Flags().Uint64("lp-amount", 0, "LP amount in base units")
}

func runCpmmCreatePool(ctx context.Context, a *app, cmd *cobra.Command) error {
	mintA, mintB, err := mintPair(cmd, "mint-a", "mint-b")
	if err != nil {
		return err
	}
	amountA, _ := cmd.Flags().GetUint64("amount-a")
	amountB, _ := cmd.Flags().GetUint64("amount-b")
	configIndex, _ := cmd.Flags().GetUint16("config-index")
	wrapSol, _ := cmd.Flags().GetBool("wrap-sol")

	op, err := raydium.NewCpmmCreatePool(a.programs, configIndex, mintA, mintB, amountA, amountB, openTimeFlag(cmd), wrapSol)
	if err != nil {
		return err
	}
	a.sink.Emit(events.Event{
		Kind:      events.KindDerived,
		Operation: string(op.Kind()),
		Pool:      op.GetID(),
		Fields:    addressMap(op.Addresses()),
	})

	res, err := a.execute(ctx, op)
	if err != nil {
		return err
	}
	announcePool(a, res, op.Addresses())
	return nil
}

func cpmmPosition(a *app, cmd *cobra.Command) (raydium.CpmmPosition, error) {
	mint0, mint1, err := mintPair(cmd, "mint0", "mint1")
	if err != nil {
		return raydium.CpmmPosition{}, err
	}
	if err := raydium.CheckMintOrder(mint0, mint1); err != nil {
		return raydium.CpmmPosition{}, err
	}
	configIndex, _ := cmd.Flags().GetUint16("config-index")
	lpAmount, _ := cmd.Flags().GetUint64("lp-amount")
	// absent on `cpmm pool`, which then reads false
	wrapSol, _ := cmd.Flags().GetBool("wrap-sol")
	return raydium.CpmmPosition{
		ProgramID:   a.programs.Cpmm,
		ConfigIndex: configIndex,
		Mint0:       mint0,
		Mint1:       mint1,
		LpAmount:    lpAmount,
		SlippageBps: a.cfg.SlippageBps,
		WrapSol:     wrapSol,
	}, nil
}

func runCpmmLiquidity(ctx context.Context, a *app, cmd *cobra.Command, kind pkg.OperationKind) error {
	pos, err := cpmmPosition(a, cmd)
	if err != nil {
		return err
	}
	if err := requirePositive("lp-amount", pos.LpAmount); err != nil {
		return err
	}

	var op pkg.Operation
	switch kind {
	case pkg.OperationDeposit:
		op, err = raydium.NewCpmmDeposit(pos)
	case pkg.OperationWithdraw:
		op, err = raydium.NewCpmmWithdraw(pos)
	default:
		op, err = raydium.NewCpmmDepositThenWithdraw(pos)
	}
	if err != nil {
		return err
	}
	_, err = a.execute(ctx, op)
	return err
}

func runCpmmPool(ctx context.Context, a *app, cmd *cobra.Command) error {
	pos, err := cpmmPosition(a, cmd)
	if err != nil {
		return err
	}
	addrs, err := raydium.DeriveCpmmAddresses(pos.ProgramID, pos.ConfigIndex, pos.Mint0, pos.Mint1)
	if err != nil {
		return err
	}
	client, err := a.solClient()
	if err != nil {
		return err
	}
	accounts, err := client.GetMultipleAccounts(ctx, raydium.CpmmStateAccounts(addrs))
	if err != nil {
		return err
	}
	snap, err := raydium.DecodeCpmmSnapshot(pos.ProgramID, addrs, accounts)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Stringer("pool", addrs.PoolState),
		zap.Stringer("lp_mint", snap.Pool.LpMint),
		zap.Uint64("lp_supply", snap.Pool.LpSupply),
		zap.Uint64("vault_0", snap.Vault0),
		zap.Uint64("vault_1", snap.Vault1),
		zap.Uint64("reserve_0", snap.Reserve0),
		zap.Uint64("reserve_1", snap.Reserve1),
		zap.Bool("deposit_enabled", snap.Pool.IsDepositEnabled()),
		zap.Bool("withdraw_enabled", snap.Pool.IsWithdrawEnabled()),
		zap.Uint64("open_time", snap.Pool.OpenTime),
	}
	if pos.LpAmount > 0 {
		deposit, err := curve.DepositGuard(pos.LpAmount, snap.Pool.LpSupply, snap.Reserve0, snap.Reserve1, pos.SlippageBps)
		if err != nil {
			return err
		}
		withdraw, err := curve.WithdrawGuard(pos.LpAmount, snap.Pool.LpSupply, snap.Reserve0, snap.Reserve1, pos.SlippageBps)
		if err != nil {
			return err
		}
		fields = append(fields,
			zap.Uint64("lp_amount", pos.LpAmount),
			zap.Uint32("slippage_bps", pos.SlippageBps),
			zap.Uint64("deposit_max_0", deposit.Token0Amount),
			zap.Uint64("deposit_max_1", deposit.Token1Amount),
			zap.Uint64("withdraw_min_0", withdraw.Token0Amount),
			zap.Uint64("withdraw_min_1", withdraw.Token1Amount),
		)
	}
	a.logger.Info("cpmm pool", fields...)
	return nil
}
