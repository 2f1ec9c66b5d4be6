package redundancy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilforge/veil/redundancy"
)

func TestScatterCollapseRoundTrip(t *testing.T) {
	assert := assert.New(t)

	bits := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	for _, factor := range []int{1, 2, 3, 5, 9} {
		slots := 100
		plan, err := redundancy.NewPlan(slots, factor)
		assert.NoError(err)

		plane := make([]byte, slots)
		assert.NoError(plan.Scatter(bits, plane))

		out := redundancy.Collapse(plane, factor)
		assert.Equal(bits, out[:len(bits)], "factor %d", factor)
	}
}

func TestCollapseToleratesMinorityFlips(t *testing.T) {
	assert := assert.New(t)

	bits := []byte{1, 1, 0, 1, 0}
	slots := 5 * 20
	plan, err := redundancy.NewPlan(slots, 5)
	assert.NoError(err)

	plane := make([]byte, slots)
	assert.NoError(plan.Scatter(bits, plane))

	// Flip two of the five copies of every logical bit. The vote must hold.
	for i := range bits {
		plane[0*plan.Region+i] ^= 1
		plane[3*plan.Region+i] ^= 1
	}
	out := redundancy.Collapse(plane, 5)
	assert.Equal(bits, out[:len(bits)])

	// A third flip makes the corruption a majority and the vote loses.
	plane[1*plan.Region+0] ^= 1
	out = redundancy.Collapse(plane, 5)
	assert.NotEqual(bits[0], out[0])
}

func TestCollapseEvenTieResolvesToZero(t *testing.T) {
	// Two copies, one flipped: 1 vs 1 is a tie, which decodes as 0.
	plane := []byte{1, 0}
	out := redundancy.Collapse(plane, 2)
	assert.Equal(t, []byte{0}, out)
}

func TestScatterSpreadsCopies(t *testing.T) {
	assert := assert.New(t)

	plan, err := redundancy.NewPlan(90, 3)
	assert.NoError(err)
	assert.Equal(30, plan.Region)

	plane := make([]byte, 90)
	assert.NoError(plan.Scatter([]byte{1}, plane))
	assert.Equal(byte(1), plane[0])
	assert.Equal(byte(1), plane[30])
	assert.Equal(byte(1), plane[60])
}

func TestNewPlanRejectsBadFactor(t *testing.T) {
	assert := assert.New(t)

	_, err := redundancy.NewPlan(100, 0)
	assert.ErrorIs(err, redundancy.ErrBadFactor)
	_, err = redundancy.NewPlan(100, redundancy.MaxFactor+1)
	assert.ErrorIs(err, redundancy.ErrBadFactor)
	_, err = redundancy.NewPlan(3, 5)
	assert.ErrorIs(err, redundancy.ErrRegionTooSmall)
}

func TestScatterRejectsOverflow(t *testing.T) {
	assert := assert.New(t)

	plan, err := redundancy.NewPlan(10, 1)
	assert.NoError(err)
	err = plan.Scatter(make([]byte, 11), make([]byte, 11))
	assert.ErrorIs(err, redundancy.ErrPlanOverflow)
}

func TestAutoFactor(t *testing.T) {
	assert := assert.New(t)

	// Plenty of room: picks the largest odd factor.
	assert.Equal(9, redundancy.AutoFactor(9000, 100))
	// Tight: falls back to smaller odd factors, then 1.
	assert.Equal(3, redundancy.AutoFactor(350, 100))
	assert.Equal(1, redundancy.AutoFactor(120, 100))
	// Does not fit at all: still 1, the planner rejects later.
	assert.Equal(1, redundancy.AutoFactor(10, 100))
}

func TestArmorRoundTrip(t *testing.T) {
	assert := assert.New(t)

	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i * 7)
	}

	armored, err := redundancy.Protect(data, 4, 2)
	assert.NoError(err)

	out, err := redundancy.Recover(armored, 4, 2, len(data))
	assert.NoError(err)
	assert.Equal(data, out)
}

func TestArmorRecoversFromShardLoss(t *testing.T) {
	assert := assert.New(t)

	data := []byte("the payload block that must survive shard corruption")
	armored, err := redundancy.Protect(data, 4, 2)
	assert.NoError(err)

	// Corrupt two whole shard units; their digests will fail and the
	// shards become erasures.
	unit := len(armored) / 6
	for i := 0; i < unit; i++ {
		armored[i] ^= 0xFF
		armored[unit+i] ^= 0xFF
	}

	out, err := redundancy.Recover(armored, 4, 2, len(data))
	assert.NoError(err)
	assert.Equal(data, out)
}

func TestArmorUnrecoverable(t *testing.T) {
	assert := assert.New(t)

	data := []byte("too much damage")
	armored, err := redundancy.Protect(data, 4, 2)
	assert.NoError(err)

	// Corrupt three shards with only two parity shards available.
	unit := len(armored) / 6
	for i := 0; i < unit*3; i++ {
		armored[i] ^= 0xA5
	}

	_, err = redundancy.Recover(armored, 4, 2, len(data))
	assert.ErrorIs(err, redundancy.ErrArmorCorrupt)
}

func TestRecoverRejectsMalformedInput(t *testing.T) {
	assert := assert.New(t)

	_, err := redundancy.Recover([]byte{1, 2, 3}, 4, 2, 10)
	assert.ErrorIs(err, redundancy.ErrArmorCorrupt)
	_, err = redundancy.Recover(nil, 4, 2, 10)
	assert.ErrorIs(err, redundancy.ErrArmorCorrupt)
}
