package cryptoconditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thresholdOf(t *testing.T, threshold uint32, subs ...Fulfillment) *Threshold {
	t.Helper()
	gate, err := NewThreshold(threshold)
	require.NoError(t, err)
	for _, sub := range subs {
		require.NoError(t, gate.AddFulfillment(sub, 1, nil))
	}
	return gate
}

func TestNewThresholdRejectsZero(t *testing.T) {
	_, err := NewThreshold(0)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestThresholdRejectsZeroWeight(t *testing.T) {
	gate, err := NewThreshold(1)
	require.NoError(t, err)
	assert.ErrorIs(t, gate.AddFulfillment(NewPreimage(nil), 0, nil), ErrZeroWeight)
}

func TestThresholdBitmask(t *testing.T) {
	message := []byte("Hello World! Conditions are here!")
	gate := thresholdOf(t, 1, NewPreimage(nil), signedEd25519(t, message))

	assert.Equal(t, uint32(0x2b), gate.Bitmask())

	cond, err := gate.Condition()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2b), cond.TypeBitmask())
}

func TestThresholdValidate(t *testing.T) {
	message := []byte("Hello World! Conditions are here!")
	preimage := NewPreimage(nil)
	signer := signedEd25519(t, message)

	t.Run("one of two", func(t *testing.T) {
		gate := thresholdOf(t, 1, preimage, signer)
		assert.True(t, gate.Validate(message))
		// The preimage alone still covers weight 1.
		assert.True(t, gate.Validate([]byte("some other message")))
	})

	t.Run("two of two", func(t *testing.T) {
		gate := thresholdOf(t, 2, preimage, signer)
		assert.True(t, gate.Validate(message))
		assert.False(t, gate.Validate([]byte("some other message")))
	})

	t.Run("threshold above total weight", func(t *testing.T) {
		gate := thresholdOf(t, 3, preimage, signer)
		assert.False(t, gate.Validate(message))
	})
}

// Raising the threshold can only flip true verdicts to false; adding a
// validating subentry can only flip false verdicts to true.
func TestThresholdMonotonicity(t *testing.T) {
	message := []byte("monotone")
	subs := []Fulfillment{NewPreimage(nil), NewPreimage([]byte("x")), signedEd25519(t, message)}

	previous := true
	for threshold := uint32(1); threshold <= 4; threshold++ {
		verdict := thresholdOf(t, threshold, subs...).Validate(message)
		if !previous {
			assert.False(t, verdict, "threshold %d", threshold)
		}
		previous = verdict
	}

	for threshold := uint32(1); threshold <= 3; threshold++ {
		before := thresholdOf(t, threshold, subs[:2]...).Validate(message)
		after := thresholdOf(t, threshold, subs...).Validate(message)
		if before {
			assert.True(t, after, "threshold %d", threshold)
		}
	}
}

func TestThresholdWeights(t *testing.T) {
	message := []byte("weighted")
	gate, err := NewThreshold(3)
	require.NoError(t, err)
	require.NoError(t, gate.AddFulfillment(signedEd25519(t, message), 3, nil))
	require.NoError(t, gate.AddFulfillment(NewPreimage(nil), 1, nil))

	assert.True(t, gate.Validate(message))
	// Without the signature only weight 1 validates.
	assert.False(t, gate.Validate([]byte("other")))
}

func TestThresholdPrefix(t *testing.T) {
	message := []byte("transfer")
	prefix := []byte("channel-7:")

	// The subentry signs over prefix || message.
	signed := make([]byte, 0, len(prefix)+len(message))
	signed = append(signed, prefix...)
	signed = append(signed, message...)
	signer := signedEd25519(t, signed)

	gate, err := NewThreshold(1)
	require.NoError(t, err)
	require.NoError(t, gate.AddFulfillment(signer, 1, prefix))
	assert.True(t, gate.Validate(message))
	assert.False(t, gate.Validate(signed), "prefix must not be supplied twice")

	bare, err := NewThreshold(1)
	require.NoError(t, err)
	require.NoError(t, bare.AddFulfillment(signer, 1, nil))
	assert.False(t, bare.Validate(message))
}

func TestThresholdConditionFromSubconditions(t *testing.T) {
	message := []byte("same condition either way")
	preimage := NewPreimage([]byte("secret"))
	signer := signedEd25519(t, message)

	resolved := thresholdOf(t, 1, preimage, signer)
	resolvedCond, err := resolved.Condition()
	require.NoError(t, err)

	// Building from the bare subconditions commits to the same condition.
	preimageCond, err := preimage.Condition()
	require.NoError(t, err)
	signerCond, err := signer.Condition()
	require.NoError(t, err)

	unresolved, err := NewThreshold(1)
	require.NoError(t, err)
	require.NoError(t, unresolved.AddCondition(preimageCond, 1, nil))
	require.NoError(t, unresolved.AddCondition(signerCond, 1, nil))
	unresolvedCond, err := unresolved.Condition()
	require.NoError(t, err)

	assert.True(t, resolvedCond.Equal(unresolvedCond))

	// No witness is present, so nothing validates and nothing serializes.
	assert.False(t, unresolved.Validate(message))
	_, err = unresolved.Payload()
	assert.ErrorIs(t, err, ErrUnsatisfiedThreshold)
}

func TestThresholdConditionUnsatisfiable(t *testing.T) {
	gate := thresholdOf(t, 3, NewPreimage(nil), NewPreimage([]byte("x")))
	_, err := gate.Condition()
	assert.ErrorIs(t, err, ErrUnsatisfiedThreshold)
}

func TestThresholdSelectionPrefersShortest(t *testing.T) {
	message := []byte("pick the small one")
	small := NewPreimage([]byte("a"))
	large := NewPreimage(make([]byte, 120))

	gate := thresholdOf(t, 1, large, small)
	payload, err := gate.Payload()
	require.NoError(t, err)

	// Revealing only the small preimage beats both revealing the large one
	// and revealing both.
	parsed, err := ParseFulfillmentBinary(mustBinary(t, gate))
	require.NoError(t, err)
	assert.True(t, parsed.Validate(message))
	parsedGate := parsed.(*Threshold)
	assert.Nil(t, parsedGate.subs[0].fulfillment, "large preimage is emitted as a condition")
	assert.NotNil(t, parsedGate.subs[1].fulfillment, "small preimage is revealed")

	cond, err := gate.Condition()
	require.NoError(t, err)
	assert.LessOrEqual(t, uint64(len(payload)), cond.MaxFulfillmentLength())
}

func TestThresholdSelectionDeterminism(t *testing.T) {
	message := []byte("deterministic")
	build := func() *Threshold {
		return thresholdOf(t, 1, signedEd25519FromSeed(t, 1, message), signedEd25519FromSeed(t, 2, message))
	}

	first := mustBinary(t, build())
	second := mustBinary(t, build())
	assert.Equal(t, first, second, "independent builds must serialize identically")

	// Both single-reveal candidates have equal length and count; the
	// lexicographic tiebreak picks exactly one of them.
	parsed, err := ParseFulfillmentBinary(first)
	require.NoError(t, err)
	assert.Equal(t, first, mustBinary(t, parsed.(*Threshold)))
}

func TestThresholdRoundTrip(t *testing.T) {
	message := []byte("round trip")
	gate, err := NewThreshold(2)
	require.NoError(t, err)
	require.NoError(t, gate.AddFulfillment(NewPreimage([]byte("aaa")), 1, nil))
	require.NoError(t, gate.AddFulfillment(signedEd25519(t, message), 2, []byte{}))

	binary := mustBinary(t, gate)
	parsed, err := ParseFulfillmentBinary(binary)
	require.NoError(t, err)

	assert.Equal(t, binary, mustBinary(t, parsed.(*Threshold)))
	assert.True(t, parsed.Validate(message))

	cond, err := gate.Condition()
	require.NoError(t, err)
	parsedCond, err := parsed.Condition()
	require.NoError(t, err)
	assert.True(t, cond.Equal(parsedCond))

	uri, err := FulfillmentURI(gate)
	require.NoError(t, err)
	fromURI, err := ParseFulfillmentURI(uri)
	require.NoError(t, err)
	uriCond, err := fromURI.Condition()
	require.NoError(t, err)
	assert.True(t, cond.Equal(uriCond))
}

func TestThresholdNested(t *testing.T) {
	message := []byte("nested gates")

	inner := thresholdOf(t, 1, signedEd25519(t, message), signedEd25519(t, []byte("unused key")))

	outer, err := NewThreshold(2)
	require.NoError(t, err)
	require.NoError(t, outer.AddFulfillment(NewPreimage([]byte("exec")), 1, nil))
	require.NoError(t, outer.AddFulfillment(signedEd25519(t, message), 1, nil))
	require.NoError(t, outer.AddFulfillment(inner, 1, nil))

	assert.Equal(t, uint32(0x2b), outer.Bitmask())
	assert.True(t, outer.Validate(message))
	assert.False(t, outer.Validate([]byte("some other message")), "only the preimage validates")

	binary := mustBinary(t, outer)
	parsed, err := ParseFulfillmentBinary(binary)
	require.NoError(t, err)
	assert.True(t, parsed.Validate(message))

	cond, err := outer.Condition()
	require.NoError(t, err)
	parsedCond, err := parsed.Condition()
	require.NoError(t, err)
	assert.True(t, cond.Equal(parsedCond))
	assert.LessOrEqual(t, uint64(len(binary)-1), cond.MaxFulfillmentLength())
}

func TestThresholdParseRejectsMalformed(t *testing.T) {
	message := []byte("strict")
	gate := thresholdOf(t, 1, NewPreimage([]byte("p")), signedEd25519(t, message))
	payload, err := gate.Payload()
	require.NoError(t, err)

	mutate := func(f func(b []byte)) []byte {
		b := append([]byte{0x02}, payload...)
		f(b)
		return b
	}

	t.Run("reserved flag bits", func(t *testing.T) {
		_, err := ParseFulfillmentBinary(mutate(func(b []byte) { b[3] |= 0x01 }))
		assert.ErrorIs(t, err, ErrMalformedEncoding)
	})

	t.Run("truncated", func(t *testing.T) {
		b := append([]byte{0x02}, payload[:len(payload)-2]...)
		_, err := ParseFulfillmentBinary(b)
		assert.ErrorIs(t, err, ErrMalformedEncoding)
	})

	t.Run("zero threshold", func(t *testing.T) {
		_, err := ParseFulfillmentBinary(mutate(func(b []byte) { b[1] = 0x00 }))
		assert.ErrorIs(t, err, ErrMalformedEncoding)
	})
}

func TestThresholdParseRejectsNonCanonicalSubentry(t *testing.T) {
	// threshold 1, one subentry: explicit weight 1 is not canonical.
	b := []byte{
		0x02,       // type
		0x01, 0x01, // threshold, count
		0x80 | 0x40, // fulfillment with explicit weight
		0x01,        // weight 1 (non-canonical)
		0x00, 0x01, 0x00, // preimage fulfillment, one-byte preimage 0x00
	}
	_, err := ParseFulfillmentBinary(b)
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	// Empty prefix with the prefix flag set.
	b = []byte{
		0x02,
		0x01, 0x01,
		0x80 | 0x20, // fulfillment with prefix flag
		0x00,        // empty prefix (non-canonical)
		0x00, 0x01, 0x00,
	}
	_, err = ParseFulfillmentBinary(b)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func mustBinary(t *testing.T, f Fulfillment) []byte {
	t.Helper()
	b, err := FulfillmentBinary(f)
	require.NoError(t, err)
	return b
}
