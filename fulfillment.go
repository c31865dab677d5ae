package cryptoconditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LeJamon/go-cryptoconditions/internal/codec/varstream"
)

const fulfillmentPrefix = "cf"

// Fulfillment is the contract every variant implements. Implementations are
// sealed to the version 1 registry: Preimage, Ed25519 and Threshold.
type Fulfillment interface {
	// TypeBit returns the variant's wire type identifier.
	TypeBit() uint16

	// Bitmask returns the variant's feature bitmask; for composites it
	// includes every descendant's advertised bits.
	Bitmask() uint32

	// Condition derives the condition this fulfillment satisfies. It is
	// idempotent and fails with ErrIncompleteFulfillment on unfinished
	// builders.
	Condition() (*Condition, error)

	// Payload serializes the variant-specific payload.
	Payload() ([]byte, error)

	// Validate evaluates the predicate against a message. A nil message means
	// no message was supplied; variants that require one return false.
	// Cryptographic failure is reported as false, never as an error.
	Validate(message []byte) bool

	// readPayload decodes the variant payload from the parser's current
	// offset. Payloads are self-delimiting, so embedded fulfillments share
	// the parent's parser.
	readPayload(p *varstream.Parser) error
}

// newFulfillmentByType returns an empty variant for a registry type.
func newFulfillmentByType(typeBit uint16) (Fulfillment, error) {
	switch typeBit {
	case TypePreimageSha256:
		return &Preimage{}, nil
	case TypeThresholdSha256:
		return &Threshold{}, nil
	case TypeEd25519:
		return &Ed25519{}, nil
	default:
		return nil, fmt.Errorf("%w: type %d", ErrUnsupportedType, typeBit)
	}
}

// FulfillmentURI returns the ASCII form:
//
//	cf:<version>:<hex type>:<base64url payload>
func FulfillmentURI(f Fulfillment) (string, error) {
	payload, err := f.Payload()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s:%s",
		fulfillmentPrefix,
		Version,
		strconv.FormatUint(uint64(f.TypeBit()), 16),
		varstream.EncodeBase64URL(payload),
	), nil
}

// FulfillmentBinary returns the binary form: VARUINT type || payload.
func FulfillmentBinary(f Fulfillment) ([]byte, error) {
	payload, err := f.Payload()
	if err != nil {
		return nil, err
	}
	s := varstream.NewSerializer()
	s.WriteVaruint(uint64(f.TypeBit()))
	s.WriteRaw(payload)
	return s.Bytes(), nil
}

// ParseFulfillmentURI parses the cf: URI form and returns the concrete
// variant tagged by the type field.
func ParseFulfillmentURI(uri string) (Fulfillment, error) {
	parts := strings.Split(uri, ":")
	if len(parts) != 4 || parts[0] != fulfillmentPrefix {
		return nil, fmt.Errorf("%w: not a fulfillment URI", ErrMalformedEncoding)
	}
	if err := checkVersionField(parts[1]); err != nil {
		return nil, err
	}
	typeBit, err := parseHexField(parts[2], 16)
	if err != nil {
		return nil, err
	}
	payload, err := varstream.DecodeBase64URL(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	f, err := newFulfillmentByType(uint16(typeBit))
	if err != nil {
		return nil, err
	}
	p := varstream.NewParser(payload)
	if err := f.readPayload(p); err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return f, nil
}

// ParseFulfillmentBinary parses the binary form and rejects trailing bytes.
func ParseFulfillmentBinary(b []byte) (Fulfillment, error) {
	p := varstream.NewParser(b)
	f, err := readFulfillmentFrom(p)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return f, nil
}

// readFulfillmentFrom decodes a fulfillment from the parser's current offset,
// leaving any remainder for the caller.
func readFulfillmentFrom(p *varstream.Parser) (Fulfillment, error) {
	typeBit, err := p.ReadVaruint()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if typeBit > 0xffff {
		return nil, fmt.Errorf("%w: type %d", ErrUnsupportedType, typeBit)
	}
	f, err := newFulfillmentByType(uint16(typeBit))
	if err != nil {
		return nil, err
	}
	if err := f.readPayload(p); err != nil {
		return nil, err
	}
	return f, nil
}

// Verify checks an encoded fulfillment against a condition supplied as trust
// root. The blob is rejected before parsing if it exceeds the condition's
// advertised maximum payload length, the derived condition must equal cond,
// and the predicate must hold for message. This is the only parse path whose
// allocation is bounded by attacker-supplied data.
func Verify(cond *Condition, fulfillment []byte, message []byte) error {
	if cond == nil {
		return fmt.Errorf("%w: no condition supplied", ErrConditionMismatch)
	}
	p := varstream.NewParser(fulfillment)
	if _, err := p.ReadVaruint(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if uint64(p.Remaining()) > cond.MaxFulfillmentLength() {
		return fmt.Errorf("%w: payload %d bytes, condition allows %d",
			ErrFulfillmentTooLarge, p.Remaining(), cond.MaxFulfillmentLength())
	}
	f, err := ParseFulfillmentBinary(fulfillment)
	if err != nil {
		return err
	}
	derived, err := f.Condition()
	if err != nil {
		return err
	}
	if !derived.Equal(cond) {
		return ErrConditionMismatch
	}
	if !f.Validate(message) {
		return ErrValidationFailed
	}
	return nil
}
