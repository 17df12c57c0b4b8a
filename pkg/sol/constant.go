package sol

import "github.com/gagliardetto/solana-go"

var (
	WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// associated token program instruction index for CreateIdempotent
const ataCreateIdempotent = 1
