package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/pool/raydium"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("rpc-url", "", "")
	fs.String("cluster", "", "")
	fs.Uint32("slippage-bps", 0, "")
	fs.Bool("simulate", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raylp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "devnet", cfg.Cluster)
	assert.Equal(t, uint32(100), cfg.SlippageBps)
	assert.Equal(t, rpc.CommitmentConfirmed, cfg.Commitment)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 700*time.Millisecond, cfg.PollInterval)
	assert.False(t, cfg.Simulate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, rpc.DevNet_RPC, cfg.Endpoint())
}

func TestLoad_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
rpc-url: http://file:8899
cluster: mainnet
slippage-bps: 50
max-retries: 2
journal-dsn: postgres://file
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://file:8899", cfg.RPCURL)
		assert.Equal(t, "mainnet", cfg.Cluster)
		assert.Equal(t, uint32(50), cfg.SlippageBps)
		assert.Equal(t, 2, cfg.MaxRetries)
		assert.Equal(t, "postgres://file", cfg.JournalDSN)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("RAYLP_RPC_URL", "http://env:8899")
		t.Setenv("RAYLP_MAX_RETRIES", "7")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://env:8899", cfg.RPCURL)
		assert.Equal(t, 7, cfg.MaxRetries)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("RAYLP_RPC_URL", "http://env:8899")
		cfg, err := Load(path, newFlags(t, "--rpc-url", "http://flag:8899", "--simulate"))
		require.NoError(t, err)
		assert.Equal(t, "http://flag:8899", cfg.RPCURL)
		assert.True(t, cfg.Simulate)
		// unset flags keep the lower layers
		assert.Equal(t, uint32(50), cfg.SlippageBps)
	})
}

func TestLoad_PrivateKeyFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RAYLP_PRIVATE_KEY", "not-checked-here")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "not-checked-here", cfg.PrivateKey)
}

func TestLoad_Rejects(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"slippage above 100%", map[string]string{"RAYLP_SLIPPAGE_BPS": "10001"}},
		{"unknown cluster", map[string]string{"RAYLP_CLUSTER": "testnet"}},
		{"unknown commitment", map[string]string{"RAYLP_COMMITMENT": "max"}},
		{"negative retries", map[string]string{"RAYLP_MAX_RETRIES": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			require.ErrorIs(t, err, pkg.ErrConfig)
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.ErrorIs(t, err, pkg.ErrConfig)
	})
}

func TestPrograms(t *testing.T) {
	cfg := Config{Cluster: "mainnet"}
	programs, err := cfg.Programs()
	require.NoError(t, err)
	assert.Equal(t, raydium.MainnetPrograms(), programs)

	cfg = Config{Cluster: "devnet", CpmmProgram: raydium.RAYDIUM_CPMM_PROGRAM_ID.String()}
	programs, err = cfg.Programs()
	require.NoError(t, err)
	assert.Equal(t, raydium.RAYDIUM_CPMM_PROGRAM_ID, programs.Cpmm)
	assert.Equal(t, raydium.DevnetPrograms().Clmm, programs.Clmm)

	cfg.ClmmProgram = "bogus"
	_, err = cfg.Programs()
	require.ErrorIs(t, err, pkg.ErrInvalidAddress)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, rpc.MainNetBeta_RPC, Config{Cluster: "mainnet"}.Endpoint())
	assert.Equal(t, "http://localhost:8899", Config{Cluster: "mainnet", RPCURL: "http://localhost:8899"}.Endpoint())
}
