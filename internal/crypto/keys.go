// Package crypto provides the key material helpers the crypto-conditions CLI
// needs: deriving Ed25519 keypairs from raw 32-byte seeds and decoding the
// base58 form those seeds are commonly exchanged in. It is deliberately not a
// key-management layer; seeds are supplied by the caller and never stored.
package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// SeedSize is the raw Ed25519 seed length.
const SeedSize = ed25519.SeedSize

var (
	// ErrInvalidSeed is returned for seeds that are not exactly SeedSize bytes.
	ErrInvalidSeed = errors.New("invalid seed length")

	// ErrInvalidBase58 is returned for input outside the base58 alphabet.
	ErrInvalidBase58 = errors.New("invalid base58 input")
)

// KeypairFromSeed derives an Ed25519 keypair from a raw 32-byte seed.
func KeypairFromSeed(seed []byte) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSeed, SeedSize, len(seed))
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	return privateKey.Public().(ed25519.PublicKey), privateKey, nil
}

// DecodeBase58Seed decodes a base58-encoded 32-byte signing seed.
func DecodeBase58Seed(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidBase58)
	}
	seed := base58.Decode(s)
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBase58, s)
	}
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSeed, SeedSize, len(seed))
	}
	return seed, nil
}

// KeypairFromBase58Seed combines DecodeBase58Seed and KeypairFromSeed.
func KeypairFromBase58Seed(s string) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	seed, err := DecodeBase58Seed(s)
	if err != nil {
		return nil, nil, err
	}
	return KeypairFromSeed(seed)
}
