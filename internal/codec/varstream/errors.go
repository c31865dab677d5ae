package varstream

import "errors"

var (
	// ErrTruncated is returned when the input ends before a complete value
	// could be read, including length prefixes that exceed the remaining buffer.
	ErrTruncated = errors.New("unexpected end of input")

	// ErrNonCanonical is returned for a VARUINT with a trailing zero-value
	// continuation byte. Every value has exactly one accepted encoding.
	ErrNonCanonical = errors.New("non-canonical varuint encoding")

	// ErrOverflow is returned for a VARUINT above 2^64-1.
	ErrOverflow = errors.New("varuint exceeds 64 bits")

	// ErrTrailingBytes is returned by Done when unconsumed bytes remain after
	// a top-level decode.
	ErrTrailingBytes = errors.New("trailing bytes after decode")

	// ErrInvalidBase64 is returned for input outside the URL-safe base64 alphabet.
	ErrInvalidBase64 = errors.New("invalid base64url input")
)
