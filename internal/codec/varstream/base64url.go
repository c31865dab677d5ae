package varstream

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeBase64URL encodes b with the URL-safe alphabet and no padding.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL decodes an unpadded URL-safe base64 string. Input whose
// length is 2 or 3 modulo 4 is accepted by implicit padding; a length of 1
// modulo 4 encodes no byte string and is rejected, as are characters outside
// the alphabet, including '='.
func DecodeBase64URL(s string) ([]byte, error) {
	if strings.ContainsRune(s, '=') {
		return nil, fmt.Errorf("%w: padding not permitted", ErrInvalidBase64)
	}
	out, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return out, nil
}
