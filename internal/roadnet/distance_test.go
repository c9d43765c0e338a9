package roadnet

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	a := orb.Point{7.3350, 47.7500}
	b := orb.Point{7.3350, 47.7502}

	assert.InDelta(t, 22.24, Distance(a, b), 0.05)
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	assert.Zero(t, Distance(a, a))

	// one degree along the equator
	assert.InDelta(t, 111_195, Distance(orb.Point{0, 0}, orb.Point{1, 0}), 1)
}
