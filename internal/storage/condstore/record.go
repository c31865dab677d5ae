package condstore

import (
	"fmt"

	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"

	"github.com/LeJamon/go-cryptoconditions/internal/codec/varstream"
)

// Kind distinguishes what a record holds.
type Kind uint8

const (
	KindCondition Kind = iota + 1
	KindFulfillment
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCondition:
		return "condition"
	case KindFulfillment:
		return "fulfillment"
	default:
		return "unknown"
	}
}

// Record is a named condition or fulfillment with both of its encodings.
type Record struct {
	Name      string `codec:"name"`
	Kind      Kind   `codec:"kind"`
	URI       string `codec:"uri"`
	Binary    []byte `codec:"binary"`
	CreatedAt int64  `codec:"created_at"`
}

// Value framing: a 1-byte compression scheme tag ahead of the CBOR body.
// Scheme 1 adds the uncompressed size as a varuint so decompression can
// allocate exactly.
const (
	schemeRaw byte = iota
	schemeLz4
)

var cborHandle = &codec.CborHandle{}

// encodeRecord serializes a record, compressing bodies at or above
// compressAt bytes. compressAt <= 0 disables compression.
func encodeRecord(rec *Record, compressAt int) ([]byte, error) {
	var body []byte
	if err := codec.NewEncoderBytes(&body, cborHandle).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record %s: %w", rec.Name, err)
	}
	if compressAt <= 0 || len(body) < compressAt {
		return append([]byte{schemeRaw}, body...), nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(body)))
	n, err := lz4.CompressBlock(body, compressed, nil)
	if err != nil || n == 0 || n >= len(body) {
		// Incompressible data stays raw.
		return append([]byte{schemeRaw}, body...), nil
	}
	s := varstream.NewSerializer()
	s.WriteUint8(schemeLz4)
	s.WriteVaruint(uint64(len(body)))
	s.WriteRaw(compressed[:n])
	return s.Bytes(), nil
}

// decodeRecord reverses encodeRecord.
func decodeRecord(value []byte) (*Record, error) {
	p := varstream.NewParser(value)
	scheme, err := p.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: empty value", ErrCorruptRecord)
	}
	var body []byte
	switch scheme {
	case schemeRaw:
		body, err = p.ReadBytes(p.Remaining())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
	case schemeLz4:
		size, err := p.ReadVaruint()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		if size > maxRecordSize {
			return nil, fmt.Errorf("%w: uncompressed size %d too large", ErrCorruptRecord, size)
		}
		compressed, err := p.ReadBytes(p.Remaining())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		body = make([]byte, size)
		n, err := lz4.UncompressBlock(compressed, body)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorruptRecord, err)
		}
		body = body[:n]
	default:
		return nil, fmt.Errorf("%w: unknown compression scheme %d", ErrCorruptRecord, scheme)
	}

	rec := new(Record)
	if err := codec.NewDecoderBytes(body, cborHandle).Decode(rec); err != nil {
		return nil, fmt.Errorf("%w: cbor: %v", ErrCorruptRecord, err)
	}
	return rec, nil
}

// maxRecordSize bounds decompression allocation for hostile store files.
const maxRecordSize = 16 << 20
