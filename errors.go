package cryptoconditions

import "errors"

var (
	// ErrMalformedEncoding is returned for any structural failure in a URI or
	// binary encoding: truncated input, non-canonical varuints, invalid
	// characters, reserved flag bits, or trailing bytes.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrUnsupportedType is returned when a fulfillment type identifier is not
	// in the version 1 registry.
	ErrUnsupportedType = errors.New("unsupported fulfillment type")

	// ErrUnsupportedVersion is returned for any condition or fulfillment
	// version other than 1.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrIncompleteFulfillment is returned when a hash or condition is
	// requested from a builder that is missing required fields.
	ErrIncompleteFulfillment = errors.New("fulfillment is incomplete")

	// ErrUnsatisfiedThreshold is returned when no subset of resolved
	// sub-fulfillments reaches the threshold weight.
	ErrUnsatisfiedThreshold = errors.New("threshold cannot be satisfied")

	// ErrKeyMismatch is returned when a signing key does not correspond to the
	// fulfillment's public key.
	ErrKeyMismatch = errors.New("signing key does not match public key")

	// ErrFulfillmentTooLarge is returned when an encoded fulfillment exceeds
	// the maximum length advertised by the condition it is verified against.
	ErrFulfillmentTooLarge = errors.New("fulfillment exceeds maximum length")

	// ErrConditionMismatch is returned by Verify when a fulfillment parses and
	// measures correctly but derives a different condition.
	ErrConditionMismatch = errors.New("fulfillment does not match condition")

	// ErrValidationFailed is returned by Verify when the fulfillment matches
	// the condition but its predicate does not hold for the message.
	ErrValidationFailed = errors.New("fulfillment does not validate")

	// ErrZeroWeight is returned when a threshold subentry is added with
	// weight 0; such an entry can never contribute to the verdict and would
	// make the condition hash malleable.
	ErrZeroWeight = errors.New("threshold subentry weight must be at least 1")
)
