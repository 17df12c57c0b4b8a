package main

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/executor"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List a program's accounts and their latest signatures",
		RunE:  runE(runInspect),
	}
	cmd.Flags().String("program", "cpmm", "cpmm, clmm, or a program address")
	cmd.Flags().Int("limit", 10, "maximum number of accounts to list")
	cmd.Flags().Int("signatures", 1, "signatures to show per account")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Resolve pending journal submissions by polling their signatures",
		RunE:  runE(runReconcile),
	}
}

func runInspect(ctx context.Context, a *app, cmd *cobra.Command) error {
	program, _ := cmd.Flags().GetString("program")
	limit, _ := cmd.Flags().GetInt("limit")
	perAccount, _ := cmd.Flags().GetInt("signatures")

	var (
		programID solana.PublicKey
		err       error
	)
	switch program {
	case "cpmm":
		programID = a.programs.Cpmm
	case "clmm":
		programID = a.programs.Clmm
	default:
		if programID, err = raydium.ParsePublicKey("program", program); err != nil {
			return err
		}
	}

	client, err := a.solClient()
	if err != nil {
		return err
	}
	accounts, err := client.ProgramAccounts(ctx, programID, limit)
	if err != nil {
		return err
	}
	a.logger.Info("program accounts", zap.Stringer("program", programID), zap.Int("count", len(accounts)))

	for _, account := range accounts {
		sigs, err := client.RecentSignatures(ctx, account, perAccount)
		if err != nil {
			return err
		}
		signatures := make([]string, 0, len(sigs))
		var lastSlot uint64
		for _, sig := range sigs {
			signatures = append(signatures, sig.Signature.String())
			if sig.Slot > lastSlot {
				lastSlot = sig.Slot
			}
		}
		a.logger.Info("account",
			zap.Stringer("account", account),
			zap.Strings("signatures", signatures),
			zap.Uint64("last_slot", lastSlot),
		)
	}
	return nil
}

func runReconcile(ctx context.Context, a *app, _ *cobra.Command) error {
	if a.cfg.JournalDSN == "" {
		return errorsmod.Wrap(pkg.ErrConfig, "reconcile reads the persistent journal: set journal-dsn")
	}
	client, err := a.solClient()
	if err != nil {
		return err
	}
	store, err := a.openJournal(ctx)
	if err != nil {
		return err
	}

	exec := executor.New(client, nil,
		executor.WithJournal(store),
		executor.WithSink(a.sink),
		executor.WithConfirmTimeout(a.cfg.ConfirmTimeout),
	)
	resolved, err := exec.Reconcile(ctx)
	for _, sub := range resolved {
		a.logger.Info("submission resolved",
			zap.String("signature", sub.Signature),
			zap.String("operation", sub.Kind),
			zap.String("pool", sub.Pool),
			zap.String("status", string(sub.Status)),
			zap.String("error", sub.Error),
		)
	}
	a.logger.Info("reconcile finished", zap.Int("resolved", len(resolved)))
	return err
}
