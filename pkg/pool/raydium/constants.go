package raydium

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Program IDs
var (
	// Token Program IDs
	TOKEN_2022_PROGRAM_ID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	MEMO_PROGRAM_ID       = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

	// Raydium Program IDs
	RAYDIUM_CPMM_PROGRAM_ID        = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	RAYDIUM_CLMM_PROGRAM_ID        = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	RAYDIUM_CPMM_DEVNET_PROGRAM_ID = solana.MustPublicKeyFromBase58("CPMDWBwJDtYax9qW7AyRuVC19Cc4L4Vcy4n2BHAbHkCW")
	RAYDIUM_CLMM_DEVNET_PROGRAM_ID = solana.MustPublicKeyFromBase58("devi51mZmdwUJGU9hjN27vEz64Gps7uUefqxg27EAtH")

	// CPMM create-pool fee receivers
	RAYDIUM_CPMM_CREATE_POOL_FEE        = solana.MustPublicKeyFromBase58("DNXgeM9EiiaAbaWvwjHj9fQQLAX5ZsfHyvmYUNRAdNC8")
	RAYDIUM_CPMM_DEVNET_CREATE_POOL_FEE = solana.MustPublicKeyFromBase58("G11FKBRaAkHAKuLCgLM6K6NUc9rTjPAznRCjZifrTQe2")
)

// Price Constants
var (
	MIN_SQRT_PRICE_X64    = math.NewIntFromBigInt(big.NewInt(4295048016))
	MAX_SQRT_PRICE_X64, _ = math.NewIntFromString("79226673521066979257578248091")
)

// Seeds
var (
	AUTH_SEED                   = "vault_and_lp_mint_auth_seed"
	AMM_CONFIG_SEED             = "amm_config"
	POOL_SEED                   = "pool"
	POOL_VAULT_SEED             = "pool_vault"
	POOL_LP_MINT_SEED           = "pool_lp_mint"
	OBSERVATION_SEED            = "observation"
	POOL_TICK_ARRAY_BITMAP_SEED = "pool_tick_array_bitmap_extension"
)

// Instruction discriminators
var (
	ClmmCreatePoolDiscriminator = []byte{0xe9, 0x92, 0xd1, 0x8e, 0xcf, 0x68, 0x40, 0xbc}
	CpmmInitializeDiscriminator = []byte{175, 175, 109, 31, 13, 152, 155, 237}
	CpmmDepositDiscriminator    = []byte{242, 35, 198, 137, 82, 225, 242, 182}
	CpmmWithdrawDiscriminator   = []byte{183, 18, 70, 156, 148, 109, 161, 34}
)

// Programs groups the program addresses an operation is built against.
type Programs struct {
	Cpmm          solana.PublicKey
	Clmm          solana.PublicKey
	CreatePoolFee solana.PublicKey
}

func MainnetPrograms() Programs {
	return Programs{
		Cpmm:          RAYDIUM_CPMM_PROGRAM_ID,
		Clmm:          RAYDIUM_CLMM_PROGRAM_ID,
		CreatePoolFee: RAYDIUM_CPMM_CREATE_POOL_FEE,
	}
}

func DevnetPrograms() Programs {
	return Programs{
		Cpmm:          RAYDIUM_CPMM_DEVNET_PROGRAM_ID,
		Clmm:          RAYDIUM_CLMM_DEVNET_PROGRAM_ID,
		CreatePoolFee: RAYDIUM_CPMM_DEVNET_CREATE_POOL_FEE,
	}
}

// ProgramsForCluster returns the program set for "mainnet" or "devnet".
func ProgramsForCluster(cluster string) (Programs, error) {
	switch cluster {
	case "mainnet", "mainnet-beta":
		return MainnetPrograms(), nil
	case "devnet":
		return DevnetPrograms(), nil
	default:
		return Programs{}, fmt.Errorf("unknown cluster %q", cluster)
	}
}

// ValidSqrtPriceX64 reports whether v lies inside the CLMM price range.
func ValidSqrtPriceX64(v uint128.Uint128) bool {
	x := math.NewIntFromBigInt(v.Big())
	return x.GTE(MIN_SQRT_PRICE_X64) && x.LT(MAX_SQRT_PRICE_X64)
}
