package varstream

// Serializer accumulates wire primitives into a byte buffer.
type Serializer struct {
	buf []byte
}

// NewSerializer returns an empty serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// WriteUint8 appends a single byte.
func (s *Serializer) WriteUint8(b byte) {
	s.buf = append(s.buf, b)
}

// WriteRaw appends bytes verbatim.
func (s *Serializer) WriteRaw(b []byte) {
	s.buf = append(s.buf, b...)
}

// WriteVaruint appends the canonical VARUINT encoding of v.
func (s *Serializer) WriteVaruint(v uint64) {
	for v >= 0x80 {
		s.buf = append(s.buf, byte(v)|0x80)
		v >>= 7
	}
	s.buf = append(s.buf, byte(v))
}

// WriteVarbytes appends a VARUINT length prefix followed by b.
func (s *Serializer) WriteVarbytes(b []byte) {
	s.WriteVaruint(uint64(len(b)))
	s.buf = append(s.buf, b...)
}

// Bytes returns the accumulated buffer. The serializer retains ownership;
// callers must not write to it afterwards.
func (s *Serializer) Bytes() []byte {
	return s.buf
}

// Len returns the number of bytes written so far.
func (s *Serializer) Len() int {
	return len(s.buf)
}

// VaruintLen returns the encoded size of v in bytes.
func VaruintLen(v uint64) uint64 {
	n := uint64(1)
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// VarbytesLen returns the encoded size of a payload of n bytes.
func VarbytesLen(n uint64) uint64 {
	return VaruintLen(n) + n
}
