// Package cryptoconditions implements version 1 of the Interledger
// crypto-conditions format: self-describing commitments to boolean
// combinations of cryptographic checks, and the fulfillments that satisfy
// them.
//
// A Condition is a compact commitment (type bitmask, hash, maximum
// fulfillment length) to a predicate. A Fulfillment is the witness: hashing
// its canonical encoding reproduces the condition, and Validate evaluates the
// predicate against a message. Three variants are implemented:
// PREIMAGE-SHA-256, ED25519 and THRESHOLD-SHA-256; RSA and PREFIX types are
// reserved but not implemented.
//
// Builders (Threshold.AddFulfillment, Threshold.AddCondition, Ed25519.Sign)
// are the only mutation points. Sign leaves the derived condition unchanged,
// so an Ed25519 condition can be published before signing; adding a threshold
// subentry changes the threshold's condition.
// Every operation is pure and synchronous, and values are safe to share
// between goroutines after construction.
package cryptoconditions
