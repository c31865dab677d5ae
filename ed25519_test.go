package cryptoconditions

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return publicKey, privateKey
}

// signedEd25519FromSeed builds a signed fulfillment from a fixed seed so
// tests can reproduce byte-identical wire output.
func signedEd25519FromSeed(t *testing.T, seed byte, message []byte) *Ed25519 {
	t.Helper()
	privateKey := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	f, err := NewEd25519(privateKey.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	require.NoError(t, f.Sign(message, privateKey))
	return f
}

func signedEd25519(t *testing.T, message []byte) *Ed25519 {
	t.Helper()
	publicKey, privateKey := testKeypair(t)
	f, err := NewEd25519(publicKey)
	require.NoError(t, err)
	require.NoError(t, f.Sign(message, privateKey))
	return f
}

func TestEd25519Condition(t *testing.T) {
	publicKey, _ := testKeypair(t)
	f, err := NewEd25519(publicKey)
	require.NoError(t, err)

	// The condition exists before signing; the fingerprint is the public key
	// itself.
	cond, err := f.Condition()
	require.NoError(t, err)
	assert.Equal(t, []byte(publicKey), cond.Hash())
	assert.Equal(t, FeatureEd25519, cond.TypeBitmask())
	assert.Equal(t, uint64(98), cond.MaxFulfillmentLength())
}

func TestEd25519RejectsBadKeyLength(t *testing.T) {
	_, err := NewEd25519([]byte("short"))
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestEd25519SignAndValidate(t *testing.T) {
	message := []byte("Hello World! Conditions are here!")
	f := signedEd25519(t, message)

	assert.True(t, f.Validate(message))
	assert.False(t, f.Validate([]byte("some other message")))
	assert.False(t, f.Validate(nil), "message is mandatory for this variant")
}

func TestEd25519UnsignedDoesNotValidate(t *testing.T) {
	publicKey, _ := testKeypair(t)
	f, err := NewEd25519(publicKey)
	require.NoError(t, err)
	assert.False(t, f.Validate([]byte("message")))

	// An unsigned fulfillment serializes with a zero signature and still does
	// not validate after a round trip.
	binary, err := FulfillmentBinary(f)
	require.NoError(t, err)
	parsed, err := ParseFulfillmentBinary(binary)
	require.NoError(t, err)
	assert.False(t, parsed.Validate([]byte("message")))
}

func TestEd25519KeyMismatch(t *testing.T) {
	publicKey, _ := testKeypair(t)
	_, otherPrivateKey := testKeypair(t)

	f, err := NewEd25519(publicKey)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sign([]byte("message"), otherPrivateKey), ErrKeyMismatch)
	assert.ErrorIs(t, f.Sign([]byte("message"), nil), ErrKeyMismatch)
}

func TestEd25519RoundTrip(t *testing.T) {
	message := []byte("round trip")
	f := signedEd25519(t, message)

	uri, err := FulfillmentURI(f)
	require.NoError(t, err)
	parsed, err := ParseFulfillmentURI(uri)
	require.NoError(t, err)

	// Validation congruence across the round trip.
	assert.True(t, parsed.Validate(message))
	assert.False(t, parsed.Validate([]byte("tampered")))

	cond, err := f.Condition()
	require.NoError(t, err)
	parsedCond, err := parsed.Condition()
	require.NoError(t, err)
	assert.True(t, cond.Equal(parsedCond))

	payload, err := f.Payload()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(payload)), cond.MaxFulfillmentLength())
}

func TestEd25519ParseRejectsBadLengths(t *testing.T) {
	f := signedEd25519(t, []byte("message"))
	payload, err := f.Payload()
	require.NoError(t, err)

	// Truncate the signature length prefix's payload.
	truncated := append([]byte{0x04}, payload[:len(payload)-1]...)
	_, err = ParseFulfillmentBinary(truncated)
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	// Rewrite the public key length prefix to 31 bytes.
	mutated := append([]byte{0x04}, payload...)
	mutated[1] = 31
	_, err = ParseFulfillmentBinary(mutated)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}
