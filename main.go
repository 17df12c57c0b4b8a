package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/config"
	"github.com/gtdvccc/raylp/pkg/events"
	"github.com/gtdvccc/raylp/pkg/executor"
	"github.com/gtdvccc/raylp/pkg/journal"
	"github.com/gtdvccc/raylp/pkg/journal/memory"
	"github.com/gtdvccc/raylp/pkg/journal/postgres"
	"github.com/gtdvccc/raylp/pkg/keys"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
	"github.com/gtdvccc/raylp/pkg/sol"
	"github.com/gtdvccc/raylp/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "raylp",
		Short:        "Create Raydium pools and move CPMM liquidity",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("rpc-url", "", "Solana JSON-RPC URL (defaults to the cluster's public endpoint)")
	pf.String("cluster", "devnet", "program set to use (devnet, mainnet)")
	pf.String("keypair", "", "solana-keygen JSON keypair file; RAYLP_PRIVATE_KEY is used when empty")
	pf.Uint32("slippage-bps", 100, "slippage tolerance in basis points")
	pf.String("commitment", "confirmed", "commitment for reads and confirmation (processed, confirmed, finalized)")
	pf.Duration("request-timeout", 30*time.Second, "timeout for a single RPC request")
	pf.Int("max-retries", 5, "maximum retry attempts for reads")
	pf.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	pf.Duration("confirm-timeout", 90*time.Second, "how long to wait for confirmation before leaving a submission pending")
	pf.Duration("poll-interval", 700*time.Millisecond, "signature status polling interval")
	pf.Bool("simulate", false, "simulate the transaction instead of sending it")
	pf.String("journal-dsn", "", "Postgres DSN for the submission journal (in-memory when empty)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("cpmm-program", "", "override the CPMM program id")
	pf.String("clmm-program", "", "override the CLMM program id")
	pf.String("create-pool-fee", "", "override the CPMM create-pool fee receiver")

	root.AddCommand(
		newDeriveCmd(),
		newClmmCmd(),
		newCpmmCmd(),
		newInspectCmd(),
		newReconcileCmd(),
	)
	return root
}

// app is the per-command wiring: config, logger and lazily opened remote
// resources.
type app struct {
	cfg      config.Config
	programs raydium.Programs
	logger   *zap.Logger
	sink     events.Sink

	client  *sol.Client
	closers []func()
}

func setup(cmd *cobra.Command) (*app, error) {
	envFile, envErr := utils.LoadEnv()

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, errorsmod.Wrapf(pkg.ErrConfig, "log-level: %v", err)
	}
	if envErr != nil {
		logger.Warn("ignoring .env file", zap.Error(envErr))
	} else if envFile != "" {
		logger.Debug("loaded .env", zap.String("path", envFile))
	}

	programs, err := cfg.Programs()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		programs: programs,
		logger:   logger,
		sink:     events.NewZapSink(logger),
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) solClient() (*sol.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := sol.NewClient(a.cfg.Endpoint(),
		sol.WithCommitment(a.cfg.Commitment),
		sol.WithRetry(a.cfg.MaxRetries, a.cfg.RetryBackoff),
		sol.WithRequestTimeout(a.cfg.RequestTimeout),
		sol.WithPollInterval(a.cfg.PollInterval),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.closers = append(a.closers, func() { _ = client.Close() })
	return client, nil
}

func (a *app) openJournal(ctx context.Context) (journal.Store, error) {
	if a.cfg.JournalDSN == "" {
		a.logger.Warn("journal-dsn not set, pending submissions are only tracked for this run")
		return memory.NewStore(), nil
	}
	pool, err := postgres.NewPool(ctx, a.cfg.JournalDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)
	if err := pool.Migrate(ctx); err != nil {
		return nil, err
	}
	return postgres.NewStore(pool), nil
}

func (a *app) executor(ctx context.Context) (*executor.Executor, error) {
	signer, err := keys.Load(a.cfg.Keypair, a.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	client, err := a.solClient()
	if err != nil {
		return nil, err
	}
	store, err := a.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("signer loaded", zap.Stringer("public_key", signer.PublicKey()))

	exec := executor.New(client, signer,
		executor.WithJournal(store),
		executor.WithSink(a.sink),
		executor.WithSimulate(a.cfg.Simulate),
		executor.WithConfirmTimeout(a.cfg.ConfirmTimeout),
	)
	return exec, nil
}

// execute runs op and logs the outcome.
func (a *app) execute(ctx context.Context, op pkg.Operation) (*executor.Result, error) {
	exec, err := a.executor(ctx)
	if err != nil {
		return nil, err
	}
	res, err := exec.Execute(ctx, op)
	if res == nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("operation", string(res.Kind)),
		zap.String("pool", res.Pool),
		zap.Stringer("signature", res.Signature),
		zap.Int("instructions", res.Instructions),
	}
	if sim := res.Simulation; sim != nil {
		a.logger.Info("simulation finished", append(fields,
			zap.Uint64("units_consumed", sim.UnitsConsumed),
			zap.Strings("logs", sim.Logs),
			zap.Any("err", sim.Err),
		)...)
		if err == nil && sim.Err != nil {
			err = errorsmod.Wrapf(pkg.ErrSubmission, "simulation failed: %v", sim.Err)
		}
		return res, err
	}
	a.logger.Info("operation finished", append(fields, zap.String("status", string(res.Status)))...)
	return res, err
}

// runE wraps a command body with setup, signal handling and cleanup.
func runE(fn func(ctx context.Context, a *app, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := fn(ctx, a, cmd); err != nil {
			a.logger.Error("command failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
			return err
		}
		return nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func publicKeyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return solana.PublicKey{}, errorsmod.Wrapf(pkg.ErrConfig, "--%s is required", name)
	}
	return raydium.ParsePublicKey(name, s)
}

// openTimeFlag returns --open-time, defaulting to now.
func openTimeFlag(cmd *cobra.Command) uint64 {
	openTime, _ := cmd.Flags().GetUint64("open-time")
	if openTime == 0 {
		return uint64(time.Now().Unix())
	}
	return openTime
}

func requirePositive(name string, v uint64) error {
	if v == 0 {
		return errorsmod.Wrapf(pkg.ErrConfig, "--%s must be positive", name)
	}
	return nil
}

func addressFields(addrs raydium.PoolAddresses) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("amm_config", addrs.AmmConfig),
		zap.Stringer("pool_state", addrs.PoolState),
		zap.Stringer("vault_0", addrs.Vault0),
		zap.Stringer("vault_1", addrs.Vault1),
		zap.Stringer("observation", addrs.Observation),
	}
	if !addrs.Authority.IsZero() {
		fields = append(fields, zap.Stringer("authority", addrs.Authority), zap.Stringer("lp_mint", addrs.LpMint))
	}
	if !addrs.TickArrayExt.IsZero() {
		fields = append(fields, zap.Stringer("tick_array_bitmap", addrs.TickArrayExt))
	}
	return fields
}

func addressMap(addrs raydium.PoolAddresses) map[string]interface{} {
	return map[string]interface{}{
		"amm_config":  addrs.AmmConfig.String(),
		"pool_state":  addrs.PoolState.String(),
		"vault_0":     addrs.Vault0.String(),
		"vault_1":     addrs.Vault1.String(),
		"observation": addrs.Observation.String(),
	}
}

func notFound(what string, key solana.PublicKey) error {
	return errorsmod.Wrap(pkg.ErrAccountNotFound, fmt.Sprintf("%s %s", what, key))
}
