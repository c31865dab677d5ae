package cryptoconditions

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/LeJamon/go-cryptoconditions/internal/codec/varstream"
)

// Version is the only crypto-conditions format version this package accepts.
const Version = 1

// Type identifiers carried on the wire in fulfillments.
const (
	TypePreimageSha256  uint16 = 0
	TypePrefixSha256    uint16 = 1 // reserved, unimplemented
	TypeThresholdSha256 uint16 = 2
	TypeRsaSha256       uint16 = 3 // reserved, unimplemented
	TypeEd25519         uint16 = 4
)

// Feature suite bits. A condition's type bitmask is the OR of the feature
// bitmask of every variant reachable in its tree and advertises the
// capabilities a verifier needs.
const (
	FeatureSha256    uint32 = 0x01
	FeaturePreimage  uint32 = 0x02
	FeaturePrefix    uint32 = 0x04
	FeatureThreshold uint32 = 0x08
	FeatureRsaPss    uint32 = 0x10
	FeatureEd25519   uint32 = 0x20
)

const conditionPrefix = "cc"

// Condition is an immutable commitment to a predicate. Two conditions are
// equal iff every field compares byte-equal; the URI and binary forms are
// pure functions of the record.
type Condition struct {
	typeBitmask          uint32
	hash                 []byte
	maxFulfillmentLength uint64
}

// NewCondition assembles a condition record. The hash is copied.
func NewCondition(typeBitmask uint32, hash []byte, maxFulfillmentLength uint64) *Condition {
	h := make([]byte, len(hash))
	copy(h, hash)
	return &Condition{
		typeBitmask:          typeBitmask,
		hash:                 h,
		maxFulfillmentLength: maxFulfillmentLength,
	}
}

// TypeBitmask returns the OR of the feature bitmasks in the condition's tree.
func (c *Condition) TypeBitmask() uint32 {
	return c.typeBitmask
}

// Hash returns a copy of the condition's fingerprint.
func (c *Condition) Hash() []byte {
	h := make([]byte, len(c.hash))
	copy(h, c.hash)
	return h
}

// MaxFulfillmentLength returns the upper bound on the payload size of any
// fulfillment that can satisfy this condition.
func (c *Condition) MaxFulfillmentLength() uint64 {
	return c.maxFulfillmentLength
}

// URI returns the ASCII form:
//
//	cc:<version>:<hex bitmask>:<base64url hash>:<decimal max length>
func (c *Condition) URI() string {
	return fmt.Sprintf("%s:%d:%s:%s:%d",
		conditionPrefix,
		Version,
		strconv.FormatUint(uint64(c.typeBitmask), 16),
		varstream.EncodeBase64URL(c.hash),
		c.maxFulfillmentLength,
	)
}

// Binary returns the canonical binary form:
//
//	VARUINT bitmask || VARBYTES hash || VARUINT max length
//
// The version is implicit; parsers reject anything but version 1 out-of-band.
func (c *Condition) Binary() []byte {
	s := varstream.NewSerializer()
	c.writeBinary(s)
	return s.Bytes()
}

func (c *Condition) writeBinary(s *varstream.Serializer) {
	s.WriteVaruint(uint64(c.typeBitmask))
	s.WriteVarbytes(c.hash)
	s.WriteVaruint(c.maxFulfillmentLength)
}

// binaryLen returns len(c.Binary()) without serializing.
func (c *Condition) binaryLen() uint64 {
	return varstream.VaruintLen(uint64(c.typeBitmask)) +
		varstream.VarbytesLen(uint64(len(c.hash))) +
		varstream.VaruintLen(c.maxFulfillmentLength)
}

// Equal reports whether two conditions are field-for-field byte-equal.
func (c *Condition) Equal(o *Condition) bool {
	if o == nil {
		return false
	}
	return c.typeBitmask == o.typeBitmask &&
		bytes.Equal(c.hash, o.hash) &&
		c.maxFulfillmentLength == o.maxFulfillmentLength
}

// Compare orders conditions by their binary form.
func (c *Condition) Compare(o *Condition) int {
	return bytes.Compare(c.Binary(), o.Binary())
}

// ParseConditionURI parses the cc: URI form.
func ParseConditionURI(uri string) (*Condition, error) {
	parts := strings.Split(uri, ":")
	if len(parts) != 5 || parts[0] != conditionPrefix {
		return nil, fmt.Errorf("%w: not a condition URI", ErrMalformedEncoding)
	}
	if err := checkVersionField(parts[1]); err != nil {
		return nil, err
	}
	bitmask, err := parseHexField(parts[2], 32)
	if err != nil {
		return nil, err
	}
	hash, err := varstream.DecodeBase64URL(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	maxLen, err := parseDecField(parts[4])
	if err != nil {
		return nil, err
	}
	return NewCondition(uint32(bitmask), hash, maxLen), nil
}

// ParseConditionBinary parses the binary form and rejects trailing bytes.
func ParseConditionBinary(b []byte) (*Condition, error) {
	p := varstream.NewParser(b)
	c, err := readConditionFrom(p)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return c, nil
}

// readConditionFrom decodes a condition from the parser's current offset,
// leaving any remainder for the caller. Threshold payloads embed conditions
// this way.
func readConditionFrom(p *varstream.Parser) (*Condition, error) {
	bitmask, err := p.ReadVaruint()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if bitmask > 0xffffffff {
		return nil, fmt.Errorf("%w: type bitmask out of range", ErrMalformedEncoding)
	}
	hash, err := p.ReadVarbytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	maxLen, err := p.ReadVaruint()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return NewCondition(uint32(bitmask), hash, maxLen), nil
}

// checkVersionField validates the decimal version component of a URI.
func checkVersionField(s string) error {
	if s == "" || !isDecimal(s) || (len(s) > 1 && s[0] == '0') {
		return fmt.Errorf("%w: invalid version field %q", ErrMalformedEncoding, s)
	}
	if s != "1" {
		return fmt.Errorf("%w: version %s", ErrUnsupportedVersion, s)
	}
	return nil
}

// parseHexField validates and parses a lowercase hex component with no
// leading zeros (a single "0" denotes zero).
func parseHexField(s string, bits int) (uint64, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, fmt.Errorf("%w: invalid hex field %q", ErrMalformedEncoding, s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return 0, fmt.Errorf("%w: invalid hex field %q", ErrMalformedEncoding, s)
		}
	}
	v, err := strconv.ParseUint(s, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hex field %q", ErrMalformedEncoding, s)
	}
	return v, nil
}

// parseDecField validates and parses a decimal component with no leading
// zeros.
func parseDecField(s string) (uint64, error) {
	if s == "" || !isDecimal(s) || (len(s) > 1 && s[0] == '0') {
		return 0, fmt.Errorf("%w: invalid decimal field %q", ErrMalformedEncoding, s)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid decimal field %q", ErrMalformedEncoding, s)
	}
	return v, nil
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
