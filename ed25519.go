package cryptoconditions

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/LeJamon/go-cryptoconditions/internal/codec/varstream"
)

// ed25519MaxPayload is the exact payload size of a complete ED25519
// fulfillment: VARBYTES(32-byte public key) || VARBYTES(64-byte signature).
const ed25519MaxPayload = 1 + ed25519.PublicKeySize + 1 + ed25519.SignatureSize

// Ed25519 is the ED25519 variant. The condition fingerprint is the public key
// itself, not a hash of it; the variant sits in a SHA-256 framework but
// Ed25519 hashes internally with SHA-512.
type Ed25519 struct {
	publicKey []byte
	// nil until Sign is called or a payload is parsed.
	signature []byte
}

// NewEd25519 builds an unsigned fulfillment for a 32-byte public key. The
// condition is derivable immediately, so a condition can be published before
// anything is signed; Validate returns false until Sign succeeds.
func NewEd25519(publicKey []byte) (*Ed25519, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d",
			ErrMalformedEncoding, ed25519.PublicKeySize, len(publicKey))
	}
	pk := make([]byte, ed25519.PublicKeySize)
	copy(pk, publicKey)
	return &Ed25519{publicKey: pk}, nil
}

// TypeBit implements Fulfillment.
func (f *Ed25519) TypeBit() uint16 {
	return TypeEd25519
}

// Bitmask implements Fulfillment.
func (f *Ed25519) Bitmask() uint32 {
	return FeatureEd25519
}

// PublicKey returns a copy of the public key, or nil if unset.
func (f *Ed25519) PublicKey() []byte {
	if f.publicKey == nil {
		return nil
	}
	pk := make([]byte, len(f.publicKey))
	copy(pk, f.publicKey)
	return pk
}

// Sign sets the signature to Ed25519-Sign(signingKey, message). The signing
// key's derived verifying key must equal the fulfillment's public key.
func (f *Ed25519) Sign(message []byte, signingKey ed25519.PrivateKey) error {
	if f.publicKey == nil {
		return fmt.Errorf("%w: no public key set", ErrIncompleteFulfillment)
	}
	if len(signingKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: signing key must be %d bytes, got %d",
			ErrKeyMismatch, ed25519.PrivateKeySize, len(signingKey))
	}
	derived := signingKey.Public().(ed25519.PublicKey)
	if !bytes.Equal(derived, f.publicKey) {
		return ErrKeyMismatch
	}
	f.signature = ed25519.Sign(signingKey, message)
	return nil
}

// Condition implements Fulfillment. The hash is the public key directly and
// the maximum fulfillment length is the fixed payload size.
func (f *Ed25519) Condition() (*Condition, error) {
	if f.publicKey == nil {
		return nil, fmt.Errorf("%w: no public key set", ErrIncompleteFulfillment)
	}
	return NewCondition(f.Bitmask(), f.publicKey, ed25519MaxPayload), nil
}

// Payload implements Fulfillment: VARBYTES public key || VARBYTES signature.
// An unsigned fulfillment serializes with an all-zero signature and will not
// validate.
func (f *Ed25519) Payload() ([]byte, error) {
	if f.publicKey == nil {
		return nil, fmt.Errorf("%w: no public key set", ErrIncompleteFulfillment)
	}
	sig := f.signature
	if sig == nil {
		sig = make([]byte, ed25519.SignatureSize)
	}
	s := varstream.NewSerializer()
	s.WriteVarbytes(f.publicKey)
	s.WriteVarbytes(sig)
	return s.Bytes(), nil
}

// Validate implements Fulfillment. The message is mandatory for this variant:
// a nil message returns false. An unsigned fulfillment returns false.
func (f *Ed25519) Validate(message []byte) bool {
	if f.publicKey == nil || f.signature == nil || message == nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(f.publicKey), message, f.signature)
}

func (f *Ed25519) readPayload(p *varstream.Parser) error {
	publicKey, err := p.ReadVarbytes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key must be %d bytes, got %d",
			ErrMalformedEncoding, ed25519.PublicKeySize, len(publicKey))
	}
	signature, err := p.ReadVarbytes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature must be %d bytes, got %d",
			ErrMalformedEncoding, ed25519.SignatureSize, len(signature))
	}
	f.publicKey = publicKey
	f.signature = signature
	return nil
}
