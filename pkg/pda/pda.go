// Package pda derives program addresses: deterministic account addresses that
// lie off the ed25519 curve, so no private key can sign for them.
package pda

import (
	"crypto/sha256"

	errorsmod "cosmossdk.io/errors"
	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"

	"github.com/gtdvccc/raylp/pkg"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// Derived is a program address together with the bump seed that produced it.
type Derived struct {
	Address solana.PublicKey
	Bump    uint8
}

// onCurve reports whether b decodes to a point on the ed25519 curve.
var onCurve = func(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return errorsmod.Wrapf(pkg.ErrInvalidSeeds, "%d seeds, max %d", len(seeds), MaxSeeds)
	}
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return errorsmod.Wrapf(pkg.ErrInvalidSeeds, "seed %d is %d bytes, max %d", i, len(seed), MaxSeedLength)
		}
	}
	return nil
}

func hashSeeds(seeds [][]byte, programID solana.PublicKey) [32]byte {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CreateProgramAddress hashes seeds and programID into an address. It fails when
// the result lands on the curve; callers normally want FindProgramAddress.
func CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	if err := validateSeeds(seeds); err != nil {
		return solana.PublicKey{}, err
	}
	hash := hashSeeds(seeds, programID)
	if onCurve(hash[:]) {
		return solana.PublicKey{}, errorsmod.Wrap(pkg.ErrInvalidSeeds, "derived address is on the ed25519 curve")
	}
	return solana.PublicKeyFromBytes(hash[:]), nil
}

// FindProgramAddress searches bump seeds from 255 down to 0 and returns the first
// off-curve address. All 256 candidates are tried before ErrExhaustedBumpSearch.
func FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (Derived, error) {
	// the bump occupies one of the seed slots
	if err := validateSeeds(append(seeds[:len(seeds):len(seeds)], []byte{0})); err != nil {
		return Derived{}, err
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for b := 255; b >= 0; b-- {
		bump[0] = byte(b)
		hash := hashSeeds(withBump, programID)
		if !onCurve(hash[:]) {
			return Derived{
				Address: solana.PublicKeyFromBytes(hash[:]),
				Bump:    byte(b),
			}, nil
		}
	}
	return Derived{}, errorsmod.Wrapf(pkg.ErrExhaustedBumpSearch, "program %s", programID)
}

// AssociatedTokenAddress derives the associated token account of owner for mint
// under the given token program (SPL Token or Token-2022).
func AssociatedTokenAddress(owner, tokenProgram, mint solana.PublicKey) (solana.PublicKey, error) {
	d, err := FindProgramAddress([][]byte{owner[:], tokenProgram[:], mint[:]}, solana.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return d.Address, nil
}
