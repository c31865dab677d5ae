package cryptoconditions

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math"
	"sort"

	"github.com/LeJamon/go-cryptoconditions/internal/codec/varstream"
)

// Subentry flag bits in the threshold fulfillment payload. The lower five
// bits are reserved and must be zero.
const (
	subFlagFulfillment = 0x80 // body is a fulfillment, not a condition
	subFlagWeight      = 0x40 // explicit non-default weight follows
	subFlagPrefix      = 0x20 // non-empty prefix follows
	subFlagReserved    = 0x1f
)

const defaultWeight = 1

// thresholdSub is one ordered subentry. Exactly one of fulfillment and
// condition is set; a fulfillment body is "resolved" and eligible for
// selection, a bare condition is not.
type thresholdSub struct {
	weight      uint32
	prefix      []byte
	fulfillment Fulfillment
	condition   *Condition
}

// subCondition returns the canonical condition view of the subentry.
func (s *thresholdSub) subCondition() (*Condition, error) {
	if s.fulfillment != nil {
		return s.fulfillment.Condition()
	}
	return s.condition, nil
}

// Threshold is the THRESHOLD-SHA-256 variant: an ordered list of weighted
// subentries that validates when the weights of its validating subentries
// reach the threshold. Serialization reveals only a minimum-cost satisfying
// subset of sub-fulfillments; everything else is emitted as a bare condition.
type Threshold struct {
	threshold uint32
	subs      []thresholdSub
}

// NewThreshold builds an empty threshold gate. The threshold must be at
// least 1.
func NewThreshold(threshold uint32) (*Threshold, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1", ErrMalformedEncoding)
	}
	return &Threshold{threshold: threshold}, nil
}

// TypeBit implements Fulfillment.
func (t *Threshold) TypeBit() uint16 {
	return TypeThresholdSha256
}

// Bitmask implements Fulfillment: the gate's own bits OR'd with every
// subentry's advertised bitmask.
func (t *Threshold) Bitmask() uint32 {
	mask := FeatureSha256 | FeatureThreshold
	for i := range t.subs {
		sub := &t.subs[i]
		if sub.fulfillment != nil {
			mask |= sub.fulfillment.Bitmask()
		} else {
			mask |= sub.condition.TypeBitmask()
		}
	}
	return mask
}

// Threshold returns the required weight sum.
func (t *Threshold) Threshold() uint32 {
	return t.threshold
}

// AddFulfillment appends a resolved subentry. The prefix, which may be nil,
// is prepended to the message when this subentry is validated. Insertion
// order is canonical for the condition hash.
func (t *Threshold) AddFulfillment(f Fulfillment, weight uint32, prefix []byte) error {
	if f == nil {
		return fmt.Errorf("%w: nil subfulfillment", ErrIncompleteFulfillment)
	}
	return t.add(thresholdSub{weight: weight, prefix: copyPrefix(prefix), fulfillment: f})
}

// AddCondition appends an unresolved subentry known only by its condition.
func (t *Threshold) AddCondition(c *Condition, weight uint32, prefix []byte) error {
	if c == nil {
		return fmt.Errorf("%w: nil subcondition", ErrIncompleteFulfillment)
	}
	return t.add(thresholdSub{weight: weight, prefix: copyPrefix(prefix), condition: c})
}

func (t *Threshold) add(sub thresholdSub) error {
	if sub.weight < 1 {
		return ErrZeroWeight
	}
	t.subs = append(t.subs, sub)
	return nil
}

func copyPrefix(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	buf := make([]byte, len(prefix))
	copy(buf, prefix)
	return buf
}

// Condition implements Fulfillment. The hash commits to the threshold and to
// the canonical condition view of every subentry in insertion order:
//
//	SHA-256( VARUINT threshold ||
//	         VARARRAY [ VARUINT weight || VARBYTES prefix || CONDITION ] )
func (t *Threshold) Condition() (*Condition, error) {
	conds, err := t.subConditions()
	if err != nil {
		return nil, err
	}
	s := varstream.NewSerializer()
	s.WriteVaruint(uint64(t.threshold))
	s.WriteVaruint(uint64(len(t.subs)))
	for i := range t.subs {
		s.WriteVaruint(uint64(t.subs[i].weight))
		s.WriteVarbytes(t.subs[i].prefix)
		conds[i].writeBinary(s)
	}
	digest := sha256.Sum256(s.Bytes())

	maxLen, err := t.maxFulfillmentLength(conds)
	if err != nil {
		return nil, err
	}
	return NewCondition(t.Bitmask(), digest[:], maxLen), nil
}

func (t *Threshold) subConditions() ([]*Condition, error) {
	conds := make([]*Condition, len(t.subs))
	for i := range t.subs {
		c, err := t.subs[i].subCondition()
		if err != nil {
			return nil, err
		}
		conds[i] = c
	}
	return conds, nil
}

// maxFulfillmentLength computes the worst-case cost of satisfying the gate:
// subentries are taken greedily by projected fulfillment cost, most expensive
// first, until their weights reach the threshold; those are charged at
// projected fulfillment size and the rest as bare conditions, plus the
// wrapper. Serialization picks a cheapest satisfying subset, so its output
// can only be shorter than this bound.
func (t *Threshold) maxFulfillmentLength(conds []*Condition) (uint64, error) {
	type cost struct {
		weight      uint32
		fulfillSize uint64
		condSize    uint64
	}
	costs := make([]cost, len(t.subs))
	for i := range t.subs {
		sub := &t.subs[i]
		overhead := uint64(1) // flags
		if sub.weight != defaultWeight {
			overhead += varstream.VaruintLen(uint64(sub.weight))
		}
		if len(sub.prefix) > 0 {
			overhead += varstream.VarbytesLen(uint64(len(sub.prefix)))
		}
		costs[i] = cost{
			weight: sub.weight,
			// Projected fulfillment body: one varuint type byte (all version 1
			// types fit in one) plus the sub's own payload bound.
			fulfillSize: overhead + 1 + conds[i].MaxFulfillmentLength(),
			condSize:    overhead + conds[i].binaryLen(),
		}
	}
	sort.SliceStable(costs, func(a, b int) bool {
		return costs[a].fulfillSize > costs[b].fulfillSize
	})

	total := varstream.VaruintLen(uint64(t.threshold)) +
		varstream.VaruintLen(uint64(len(t.subs)))
	var weightSum uint64
	for i := range costs {
		if weightSum < uint64(t.threshold) {
			weightSum += uint64(costs[i].weight)
			total += costs[i].fulfillSize
		} else {
			total += costs[i].condSize
		}
	}
	if weightSum < uint64(t.threshold) {
		return 0, fmt.Errorf("%w: total weight %d below threshold %d",
			ErrUnsatisfiedThreshold, weightSum, t.threshold)
	}
	return total, nil
}

// Payload implements Fulfillment. Among all subsets of resolved subentries
// whose weights reach the threshold, the one with the shortest encoding is
// revealed; ties break on fewer revealed entries, then on the
// lexicographically smaller encoding, so independent implementations emit
// identical bytes.
func (t *Threshold) Payload() ([]byte, error) {
	conds, err := t.subConditions()
	if err != nil {
		return nil, err
	}

	resolved := make([]int, 0, len(t.subs))
	for i := range t.subs {
		if t.subs[i].fulfillment != nil {
			resolved = append(resolved, i)
		}
	}
	if len(resolved) > 63 {
		return nil, fmt.Errorf("%w: too many resolved subentries", ErrUnsatisfiedThreshold)
	}

	fulfillments := make(map[int][]byte, len(resolved))
	for _, i := range resolved {
		b, err := FulfillmentBinary(t.subs[i].fulfillment)
		if err != nil {
			return nil, err
		}
		fulfillments[i] = b
	}

	var best []byte
	bestCount := -1
	for mask := uint64(0); mask < uint64(1)<<len(resolved); mask++ {
		var weightSum uint64
		selected := make(map[int]bool, len(resolved))
		for bit, idx := range resolved {
			if mask&(1<<bit) != 0 {
				weightSum += uint64(t.subs[idx].weight)
				selected[idx] = true
			}
		}
		if weightSum < uint64(t.threshold) {
			continue
		}
		candidate := t.encodePayload(conds, fulfillments, selected)
		if better(candidate, len(selected), best, bestCount) {
			best = candidate
			bestCount = len(selected)
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: resolved weight below threshold %d",
			ErrUnsatisfiedThreshold, t.threshold)
	}
	return best, nil
}

// better reports whether candidate beats the current best under the wire
// tiebreak: shorter encoding, then fewer revealed entries, then
// lexicographically smaller bytes.
func better(candidate []byte, count int, best []byte, bestCount int) bool {
	if best == nil {
		return true
	}
	if len(candidate) != len(best) {
		return len(candidate) < len(best)
	}
	if count != bestCount {
		return count < bestCount
	}
	return bytes.Compare(candidate, best) < 0
}

// encodePayload emits the payload with the given subentries revealed as
// fulfillments and all others as bare conditions, in insertion order.
func (t *Threshold) encodePayload(conds []*Condition, fulfillments map[int][]byte, selected map[int]bool) []byte {
	s := varstream.NewSerializer()
	s.WriteVaruint(uint64(t.threshold))
	s.WriteVaruint(uint64(len(t.subs)))
	for i := range t.subs {
		sub := &t.subs[i]
		var flags byte
		if selected[i] {
			flags |= subFlagFulfillment
		}
		if sub.weight != defaultWeight {
			flags |= subFlagWeight
		}
		if len(sub.prefix) > 0 {
			flags |= subFlagPrefix
		}
		s.WriteUint8(flags)
		if flags&subFlagWeight != 0 {
			s.WriteVaruint(uint64(sub.weight))
		}
		if flags&subFlagPrefix != 0 {
			s.WriteVarbytes(sub.prefix)
		}
		if selected[i] {
			s.WriteRaw(fulfillments[i])
		} else {
			conds[i].writeBinary(s)
		}
	}
	return s.Bytes()
}

// Validate implements Fulfillment. Each resolved subentry is validated
// against prefix || message (the message unchanged when the prefix is empty)
// and the verdict is the weight sum reaching the threshold. Unresolved
// subentries carry no witness and contribute nothing.
func (t *Threshold) Validate(message []byte) bool {
	var weightSum uint64
	for i := range t.subs {
		sub := &t.subs[i]
		if sub.fulfillment == nil {
			continue
		}
		msg := message
		if len(sub.prefix) > 0 {
			msg = make([]byte, 0, len(sub.prefix)+len(message))
			msg = append(msg, sub.prefix...)
			msg = append(msg, message...)
		}
		if sub.fulfillment.Validate(msg) {
			weightSum += uint64(sub.weight)
		}
	}
	return weightSum >= uint64(t.threshold)
}

func (t *Threshold) readPayload(p *varstream.Parser) error {
	threshold, err := p.ReadVaruint()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if threshold < 1 || threshold > math.MaxUint32 {
		return fmt.Errorf("%w: threshold %d out of range", ErrMalformedEncoding, threshold)
	}
	count, err := p.ReadVaruint()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if count > uint64(p.Remaining()) {
		// Every subentry costs at least one flag byte.
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, varstream.ErrTruncated)
	}
	subs := make([]thresholdSub, 0, count)
	for n := uint64(0); n < count; n++ {
		sub, err := readThresholdSub(p)
		if err != nil {
			return err
		}
		subs = append(subs, sub)
	}
	t.threshold = uint32(threshold)
	t.subs = subs
	return nil
}

func readThresholdSub(p *varstream.Parser) (thresholdSub, error) {
	var sub thresholdSub
	flags, err := p.ReadUint8()
	if err != nil {
		return sub, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if flags&subFlagReserved != 0 {
		return sub, fmt.Errorf("%w: reserved subentry flag bits 0x%02x", ErrMalformedEncoding, flags&subFlagReserved)
	}
	sub.weight = defaultWeight
	if flags&subFlagWeight != 0 {
		weight, err := p.ReadVaruint()
		if err != nil {
			return sub, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
		}
		// The flag means non-default: an explicit weight of 0 or 1 is not
		// canonical.
		if weight <= defaultWeight || weight > math.MaxUint32 {
			return sub, fmt.Errorf("%w: subentry weight %d out of range", ErrMalformedEncoding, weight)
		}
		sub.weight = uint32(weight)
	}
	if flags&subFlagPrefix != 0 {
		prefix, err := p.ReadVarbytes()
		if err != nil {
			return sub, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
		}
		if len(prefix) == 0 {
			return sub, fmt.Errorf("%w: empty subentry prefix with prefix flag", ErrMalformedEncoding)
		}
		sub.prefix = prefix
	}
	if flags&subFlagFulfillment != 0 {
		f, err := readFulfillmentFrom(p)
		if err != nil {
			return sub, err
		}
		sub.fulfillment = f
	} else {
		c, err := readConditionFrom(p)
		if err != nil {
			return sub, err
		}
		sub.condition = c
	}
	return sub, nil
}
