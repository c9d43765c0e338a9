package routing

import (
	"testing"

	"github.com/azaurus1/vanetsim/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestNeighborTable(t *testing.T) {
	var table NeighborTable

	assert.True(t, table.HandleHello(types.NewBeacon(2, 1, 1, 50, 1000), 1000, 1500))
	assert.True(t, table.HandleHello(types.NewBeacon(3, 1, 1, 50, 1100), 1100, 1500))
	assert.Equal(t, 2, table.Len())

	// a stale beacon must not roll the entry back
	assert.False(t, table.HandleHello(types.NewBeacon(2, 9, 9, 10, 900), 1200, 1500))
	assert.Equal(t, 1.0, table.Entries[2].Lat)

	assert.Zero(t, table.CheckExpiredNeighbours(2499))
	assert.Equal(t, 1, table.CheckExpiredNeighbours(2500))
	assert.Equal(t, 1, table.Len())
	_, ok := table.Entries[3]
	assert.True(t, ok)
}
