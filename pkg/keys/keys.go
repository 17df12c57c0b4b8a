// Package keys loads the fee payer's signing key from injected configuration.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"os"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/gtdvccc/raylp/pkg"
)

// SolanaPrivateKeyEnv is read when neither a keypair file nor a private key is configured.
const SolanaPrivateKeyEnv = "SOLANA_PRIVATE_KEY"

// Load returns the signer from a solana-keygen JSON file when keypairPath is
// set, otherwise from a base58 encoded 64-byte secret key.
func Load(keypairPath, privateKey string) (solana.PrivateKey, error) {
	if keypairPath != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
		if err != nil {
			return nil, errorsmod.Wrapf(pkg.ErrConfig, "keypair %s: %v", keypairPath, err)
		}
		if err := check(key); err != nil {
			return nil, errorsmod.Wrapf(pkg.ErrConfig, "keypair %s: %v", keypairPath, err)
		}
		return key, nil
	}

	if privateKey == "" {
		privateKey = os.Getenv(SolanaPrivateKeyEnv)
	}
	if privateKey == "" {
		return nil, errorsmod.Wrap(pkg.ErrConfig, "no signing key: set keypair or private-key")
	}
	return FromBase58(privateKey)
}

// FromBase58 decodes a base58 secret key. The error never echoes the input.
func FromBase58(s string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errorsmod.Wrap(pkg.ErrConfig, "private key is not valid base58")
	}
	key := solana.PrivateKey(raw)
	if err := check(key); err != nil {
		return nil, errorsmod.Wrap(pkg.ErrConfig, err.Error())
	}
	return key, nil
}

var (
	errKeyLength   = errors.New("private key must be 64 bytes")
	errKeyMismatch = errors.New("public key does not match secret key")
)

// check verifies the length and that the public half matches the seed.
func check(key solana.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return errKeyLength
	}
	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return errKeyMismatch
	}
	return nil
}
