package main

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
)

func newDeriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print every address derived for a pool without touching the network",
		RunE:  runE(runDerive),
	}
	cmd.Flags().String("protocol", "cpmm", "pool program (cpmm, clmm)")
	cmd.Flags().String("mint0", "", "first mint")
	cmd.Flags().String("mint1", "", "second mint")
	cmd.Flags().Uint16("config-index", 0, "AMM config index")
	cmd.Flags().String("amm-config", "", "CLMM AMM config address (derived from --config-index when empty)")
	return cmd
}

func runDerive(_ context.Context, a *app, cmd *cobra.Command) error {
	protocol, _ := cmd.Flags().GetString("protocol")
	mint0, mint1, err := mintPair(cmd, "mint0", "mint1")
	if err != nil {
		return err
	}
	configIndex, _ := cmd.Flags().GetUint16("config-index")

	var (
		programID solana.PublicKey
		addrs     raydium.PoolAddresses
	)
	switch protocol {
	case "cpmm":
		programID = a.programs.Cpmm
		mint0, mint1, _, _ = raydium.SortMints(mint0, mint1, 0, 0)
		addrs, err = raydium.DeriveCpmmAddresses(programID, configIndex, mint0, mint1)
	case "clmm":
		programID = a.programs.Clmm
		var ammConfig solana.PublicKey
		if ammConfig, err = clmmAmmConfig(cmd, programID); err != nil {
			return err
		}
		addrs, err = raydium.DeriveClmmAddresses(programID, ammConfig, mint0, mint1)
	default:
		return errorsmod.Wrapf(pkg.ErrConfig, "unknown protocol %q", protocol)
	}
	if err != nil {
		return err
	}

	a.logger.Info("derived pool addresses", append([]zap.Field{
		zap.String("protocol", protocol),
		zap.Stringer("program", programID),
		zap.Stringer("mint_0", mint0),
		zap.Stringer("mint_1", mint1),
	}, addressFields(addrs)...)...)
	return nil
}

func mintPair(cmd *cobra.Command, name0, name1 string) (solana.PublicKey, solana.PublicKey, error) {
	mint0, err := publicKeyFlag(cmd, name0)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	mint1, err := publicKeyFlag(cmd, name1)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	if mint0.Equals(mint1) {
		return solana.PublicKey{}, solana.PublicKey{}, errorsmod.Wrap(pkg.ErrConfig, "mints must differ")
	}
	return mint0, mint1, nil
}

// clmmAmmConfig returns --amm-config, or the config PDA for --config-index.
func clmmAmmConfig(cmd *cobra.Command, programID solana.PublicKey) (solana.PublicKey, error) {
	if s, _ := cmd.Flags().GetString("amm-config"); s != "" {
		return raydium.ParsePublicKey("amm-config", s)
	}
	configIndex, _ := cmd.Flags().GetUint16("config-index")
	derived, err := raydium.GetPdaAmmConfig(programID, configIndex)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return derived.Address, nil
}
