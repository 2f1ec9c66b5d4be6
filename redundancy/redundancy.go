// Package redundancy replicates payload bits across spread-out carrier
// positions and reconstructs them by majority vote, so that localized
// corruption (a lossy re-encode perturbing low bits) flips at most a minority
// of the copies of any one logical bit. It is carrier-agnostic: positions are
// slot indices, and the carrier decides what a slot is.
package redundancy

import (
	"errors"
	"fmt"
)

// MaxFactor is the highest supported replication factor. Extraction probes
// factors up to this bound, so raising it is a format change.
const MaxFactor = 9

var (
	ErrBadFactor      = errors.New("redundancy: factor out of range")
	ErrRegionTooSmall = errors.New("redundancy: carrier region cannot hold any logical bits")
	ErrPlanOverflow   = errors.New("redundancy: bitstream exceeds plan region")
)

// Plan describes how logical bits map onto carrier slots. Copy k of logical
// bit i occupies slot k*Region+i, so the copies of one bit sit a full region
// apart rather than adjacent.
type Plan struct {
	Factor int
	Region int
}

// NewPlan builds a replication plan for a carrier with the given slot count.
func NewPlan(slots, factor int) (Plan, error) {
	if factor < 1 || factor > MaxFactor {
		return Plan{}, fmt.Errorf("%w: %d", ErrBadFactor, factor)
	}
	region := slots / factor
	if region == 0 {
		return Plan{}, ErrRegionTooSmall
	}
	return Plan{Factor: factor, Region: region}, nil
}

// Capacity returns the number of logical bits the plan can carry.
func (p Plan) Capacity() int {
	return p.Region
}

// PhysicalLen returns the number of leading slots touched when embedding the
// given number of logical bits.
func (p Plan) PhysicalLen(logicalBits int) int {
	if p.Factor == 1 {
		return logicalBits
	}
	return (p.Factor-1)*p.Region + logicalBits
}

// Scatter writes every copy of every logical bit into plane, which must hold
// at least PhysicalLen(len(bits)) slots. Slots not covered by a copy keep
// their existing values.
func (p Plan) Scatter(bits, plane []byte) error {
	if len(bits) > p.Region {
		return ErrPlanOverflow
	}
	if len(plane) < p.PhysicalLen(len(bits)) {
		return ErrPlanOverflow
	}
	for i, b := range bits {
		for k := 0; k < p.Factor; k++ {
			plane[k*p.Region+i] = b & 1
		}
	}
	return nil
}

// Collapse reconstructs the logical bitstream from an extracted slot plane by
// majority vote across the factor copies of each bit. An even-factor tie
// resolves to 0; the bias is deterministic and part of the format.
func Collapse(plane []byte, factor int) []byte {
	region := len(plane) / factor
	out := make([]byte, region)
	for i := 0; i < region; i++ {
		ones := 0
		for k := 0; k < factor; k++ {
			ones += int(plane[k*region+i] & 1)
		}
		if ones*2 > factor {
			out[i] = 1
		}
	}
	return out
}

// AutoFactor picks the largest odd factor whose region still fits the
// bitstream. Odd factors avoid the even-tie bias entirely. Returns 1 when
// nothing larger fits; the capacity planner rejects streams that do not even
// fit at 1.
func AutoFactor(slots, logicalBits int) int {
	for f := MaxFactor; f > 1; f -= 2 {
		if logicalBits <= slots/f {
			return f
		}
	}
	return 1
}
