package main

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/events"
	"github.com/gtdvccc/raylp/pkg/executor"
	"github.com/gtdvccc/raylp/pkg/journal"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
)

func newClmmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clmm",
		Short: "Raydium concentrated-liquidity pools",
	}

	createCmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create a CLMM pool for an ordered mint pair",
		RunE:  runE(runClmmCreatePool),
	}
	createCmd.Flags().String("mint0", "", "token 0 mint (must sort before mint1)")
	createCmd.Flags().String("mint1", "", "token 1 mint")
	createCmd.Flags().Uint16("config-index", 0, "AMM config index")
	createCmd.Flags().String("amm-config", "", "AMM config address (derived from --config-index when empty)")
	createCmd.Flags().String("price", "", "initial price as token1 per token0 in UI units")
	createCmd.Flags().String("sqrt-price-x64", "", "initial sqrt price in Q64.64, overrides --price")
	createCmd.Flags().Uint64("open-time", 0, "unix time the pool opens (now when 0)")
	cmd.AddCommand(createCmd)

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Show a CLMM pool's decoded state",
		RunE:  runE(runClmmPool),
	}
	poolCmd.Flags().String("pool", "", "pool state address")
	cmd.AddCommand(poolCmd)

	return cmd
}

func runClmmCreatePool(ctx context.Context, a *app, cmd *cobra.Command) error {
	mint0, mint1, err := mintPair(cmd, "mint0", "mint1")
	if err != nil {
		return err
	}
	ammConfig, err := clmmAmmConfig(cmd, a.programs.Clmm)
	if err != nil {
		return err
	}
	price, _ := cmd.Flags().GetString("price")
	var sqrtPrice uint128.Uint128
	if s, _ := cmd.Flags().GetString("sqrt-price-x64"); s != "" {
		if sqrtPrice, err = uint128.FromString(s); err != nil {
			return errorsmod.Wrapf(pkg.ErrConfig, "sqrt-price-x64 %q: %v", s, err)
		}
	}

	op, err := raydium.NewClmmCreatePool(a.programs.Clmm, ammConfig, mint0, mint1, sqrtPrice, price, openTimeFlag(cmd))
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

func runClmmPool(ctx context.Context, a *app, cmd *cobra.Command) error {
	poolID, err := publicKeyFlag(cmd, "pool")
	if err != nil {
		return err
	}
	client, err := a.solClient()
	if err != nil {
		return err
	}
	accounts, err := client.GetMultipleAccounts(ctx, []solana.PublicKey{poolID})
	if err != nil {
		return err
	}
	if accounts[0] == nil {
		return notFound("pool", poolID)
	}
	if !accounts[0].Owner.Equals(a.programs.Clmm) {
		return errorsmod.Wrapf(pkg.ErrInvalidAccountData, "pool %s is owned by %s", poolID, accounts[0].Owner)
	}

	var pool raydium.CLMMPool
	if err := pool.Decode(accounts[0].Data.GetBinary()); err != nil {
		return errorsmod.Wrapf(err, "pool %s", poolID)
	}
	pool.PoolId = poolID

	a.logger.Info("clmm pool",
		zap.String("pool", pool.GetID()),
		zap.Stringer("amm_config", pool.AmmConfig),
		zap.Stringer("mint_0", pool.TokenMint0),
		zap.Stringer("mint_1", pool.TokenMint1),
		zap.Stringer("vault_0", pool.TokenVault0),
		zap.Stringer("vault_1", pool.TokenVault1),
		zap.Uint8("decimals_0", pool.MintDecimals0),
		zap.Uint8("decimals_1", pool.MintDecimals1),
		zap.Uint16("tick_spacing", pool.TickSpacing),
		zap.Int32("tick_current", pool.TickCurrent),
		zap.Stringer("liquidity", pool.Liquidity),
		zap.Stringer("sqrt_price_x64", pool.SqrtPriceX64),
		zap.Float64("price", pool.UiPrice()),
		zap.Bool("swap_enabled", pool.IsSwapEnabled()),
		zap.Uint64("open_time", pool.OpenTime),
	)
	return nil
}

// announcePool reports a newly created pool once its transaction confirmed.
func announcePool(a *app, res *executor.Result, addrs raydium.PoolAddresses) {
	if res == nil || res.Status != journal.StatusConfirmed {
		return
	}
	a.sink.Emit(events.Event{
		Kind:      events.KindPoolCreated,
		Operation: string(res.Kind),
		Pool:      res.Pool,
		Signature: res.Signature.String(),
		Fields:    addressMap(addrs),
	})
}
