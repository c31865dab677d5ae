package cryptoconditions

import (
	"crypto/sha256"
	"fmt"

	"github.com/LeJamon/go-cryptoconditions/internal/codec/varstream"
)

// Preimage is the PREIMAGE-SHA-256 variant: the condition commits to the
// SHA-256 digest of an arbitrary byte string and is fulfilled by revealing
// that byte string.
type Preimage struct {
	// nil means the builder has no preimage yet; an empty non-nil slice is a
	// valid (empty) preimage.
	preimage []byte
}

// NewPreimage builds a preimage fulfillment. A nil or empty argument is the
// valid empty preimage.
func NewPreimage(preimage []byte) *Preimage {
	buf := make([]byte, len(preimage))
	copy(buf, preimage)
	return &Preimage{preimage: buf}
}

// TypeBit implements Fulfillment.
func (f *Preimage) TypeBit() uint16 {
	return TypePreimageSha256
}

// Bitmask implements Fulfillment.
func (f *Preimage) Bitmask() uint32 {
	return FeatureSha256 | FeaturePreimage
}

// Preimage returns a copy of the revealed byte string, or nil if unset.
func (f *Preimage) Preimage() []byte {
	if f.preimage == nil {
		return nil
	}
	buf := make([]byte, len(f.preimage))
	copy(buf, f.preimage)
	return buf
}

// Condition implements Fulfillment. The hash is SHA-256 of the preimage and
// the maximum fulfillment length is the exact payload size.
func (f *Preimage) Condition() (*Condition, error) {
	if f.preimage == nil {
		return nil, fmt.Errorf("%w: no preimage set", ErrIncompleteFulfillment)
	}
	digest := sha256.Sum256(f.preimage)
	return NewCondition(f.Bitmask(), digest[:], varstream.VarbytesLen(uint64(len(f.preimage)))), nil
}

// Payload implements Fulfillment: VARBYTES preimage.
func (f *Preimage) Payload() ([]byte, error) {
	if f.preimage == nil {
		return nil, fmt.Errorf("%w: no preimage set", ErrIncompleteFulfillment)
	}
	s := varstream.NewSerializer()
	s.WriteVarbytes(f.preimage)
	return s.Bytes(), nil
}

// Validate implements Fulfillment. A preimage fulfillment with a preimage
// present always validates, message or not: revealing the preimage is the
// entire predicate, and whether its digest matches a particular condition is
// checked by Verify, not here. Merely parsing a fulfillment therefore
// asserts structural well-formedness, never agreement with any condition.
func (f *Preimage) Validate(_ []byte) bool {
	return f.preimage != nil
}

func (f *Preimage) readPayload(p *varstream.Parser) error {
	preimage, err := p.ReadVarbytes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	f.preimage = preimage
	return nil
}
