package raydium

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/gtdvccc/raylp/pkg"
)

// ParsePublicKey parses a base58 address, tagging failures as address errors.
func ParsePublicKey(name, s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, errorsmod.Wrapf(pkg.ErrInvalidAddress, "%s %q: %v", name, s, err)
	}
	return key, nil
}

func accountData(acc *rpc.Account) []byte {
	if acc == nil || acc.Data == nil {
		return nil
	}
	return acc.Data.GetBinary()
}

// expectAccounts checks a batched read returned want entries, all present.
func expectAccounts(accounts []*rpc.Account, keys []solana.PublicKey) error {
	if len(accounts) != len(keys) {
		return fmt.Errorf("expected %d accounts, got %d", len(keys), len(accounts))
	}
	for i, acc := range accounts {
		if acc == nil {
			return errorsmod.Wrapf(pkg.ErrAccountNotFound, "%s", keys[i])
		}
	}
	return nil
}

// MintInfo is what pool creation needs to know about a mint.
type MintInfo struct {
	Decimals     uint8
	TokenProgram solana.PublicKey
}

func decodeMint(key solana.PublicKey, acc *rpc.Account) (MintInfo, error) {
	if acc == nil {
		return MintInfo{}, errorsmod.Wrapf(pkg.ErrAccountNotFound, "mint %s", key)
	}
	if !acc.Owner.Equals(solana.TokenProgramID) && !acc.Owner.Equals(TOKEN_2022_PROGRAM_ID) {
		return MintInfo{}, errorsmod.Wrapf(pkg.ErrInvalidAccountData, "mint %s is owned by %s, not a token program", key, acc.Owner)
	}
	var mint token.Mint
	if err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(accountData(acc))); err != nil {
		return MintInfo{}, errorsmod.Wrapf(pkg.ErrInvalidAccountData, "mint %s: %v", key, err)
	}
	return MintInfo{Decimals: mint.Decimals, TokenProgram: acc.Owner}, nil
}
