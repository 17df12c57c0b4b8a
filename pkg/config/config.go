package config

import (
	"fmt"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/curve"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g. RAYLP_RPC_URL.
const EnvPrefix = "RAYLP"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	Cluster        string
	Keypair        string
	PrivateKey     string
	SlippageBps    uint32
	Commitment     rpc.CommitmentType
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Simulate       bool
	JournalDSN     string
	LogLevel       string

	CpmmProgram   string
	ClmmProgram   string
	CreatePoolFee string
}

// Load merges config file, environment variables, and flags into Config.
// Flags win over env, env over the file, the file over defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("cluster", "devnet")
	v.SetDefault("slippage-bps", curve.DefaultSlippageBps)
	v.SetDefault("commitment", string(rpc.CommitmentConfirmed))
	v.SetDefault("request-timeout", 30*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("confirm-timeout", 90*time.Second)
	v.SetDefault("poll-interval", 700*time.Millisecond)
	v.SetDefault("simulate", false)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsmod.Wrapf(pkg.ErrConfig, "read config %s: %v", cfgFile, err)
		}
	} else {
		v.SetConfigName("raylp")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, errorsmod.Wrapf(pkg.ErrConfig, "read config: %v", err)
			}
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc-url"),
		Cluster:        strings.ToLower(v.GetString("cluster")),
		Keypair:        v.GetString("keypair"),
		PrivateKey:     v.GetString("private-key"),
		SlippageBps:    v.GetUint32("slippage-bps"),
		Commitment:     rpc.CommitmentType(v.GetString("commitment")),
		RequestTimeout: v.GetDuration("request-timeout"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		ConfirmTimeout: v.GetDuration("confirm-timeout"),
		PollInterval:   v.GetDuration("poll-interval"),
		Simulate:       v.GetBool("simulate"),
		JournalDSN:     v.GetString("journal-dsn"),
		LogLevel:       v.GetString("log-level"),
		CpmmProgram:    v.GetString("cpmm-program"),
		ClmmProgram:    v.GetString("clmm-program"),
		CreatePoolFee:  v.GetString("create-pool-fee"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that do not need the network.
func (c Config) Validate() error {
	if c.SlippageBps > curve.BpsDenominator {
		return errorsmod.Wrapf(pkg.ErrConfig, "slippage-bps %d exceeds %d", c.SlippageBps, curve.BpsDenominator)
	}
	switch c.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return errorsmod.Wrapf(pkg.ErrConfig, "commitment %q", c.Commitment)
	}
	if c.MaxRetries < 0 {
		return errorsmod.Wrapf(pkg.ErrConfig, "max-retries %d", c.MaxRetries)
	}
	if _, err := raydium.ProgramsForCluster(c.Cluster); err != nil {
		return errorsmod.Wrap(pkg.ErrConfig, err.Error())
	}
	return nil
}

// Endpoint returns rpc-url, falling back to the public endpoint of the cluster.
func (c Config) Endpoint() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	if c.Cluster == "devnet" {
		return rpc.DevNet_RPC
	}
	return rpc.MainNetBeta_RPC
}

// Programs resolves the Raydium program set for the cluster and applies any
// per-program overrides.
func (c Config) Programs() (raydium.Programs, error) {
	programs, err := raydium.ProgramsForCluster(c.Cluster)
	if err != nil {
		return raydium.Programs{}, errorsmod.Wrap(pkg.ErrConfig, err.Error())
	}
	if c.CpmmProgram != "" {
		if programs.Cpmm, err = raydium.ParsePublicKey("cpmm-program", c.CpmmProgram); err != nil {
			return raydium.Programs{}, err
		}
	}
	if c.ClmmProgram != "" {
		if programs.Clmm, err = raydium.ParsePublicKey("clmm-program", c.ClmmProgram); err != nil {
			return raydium.Programs{}, err
		}
	}
	if c.CreatePoolFee != "" {
		if programs.CreatePoolFee, err = raydium.ParsePublicKey("create-pool-fee", c.CreatePoolFee); err != nil {
			return raydium.Programs{}, err
		}
	}
	return programs, nil
}
