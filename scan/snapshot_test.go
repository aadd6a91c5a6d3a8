package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionElementCountExcludesTrailingBytes(t *testing.T) {
	// 17 bytes with a 4-byte stride yields 4 usable elements
	region := regionAt(0x1000, make([]byte, 17))
	assert.Equal(t, 4, region.ElementCount(Int32))
	assert.Equal(t, 17, region.ElementCount(Uint8))
	assert.Equal(t, 2, region.ElementCount(Int64))
}

func TestSnapshotCounts(t *testing.T) {
	snapshot := &Snapshot{Regions: []Region{
		regionAt(0x1000, bytesOfInt32(1, 2, 3)),
		regionAt(0x2000, bytesOfInt32(4, 5)),
	}}

	assert.Equal(t, 2, snapshot.RegionCount())
	assert.Equal(t, uint64(20), snapshot.ByteSize())
	assert.Equal(t, 5, snapshot.ElementCount(Int32))
	assert.Equal(t, 20, snapshot.ElementCount(Uint8))
}

func TestSnapshotHasPrior(t *testing.T) {
	first := &Snapshot{Regions: []Region{
		regionAt(0x1000, bytesOfInt32(1)),
	}}
	assert.False(t, first.HasPrior())

	second := &Snapshot{Regions: []Region{
		regionWithPrior(0x1000, bytesOfInt32(1), bytesOfInt32(2)),
	}}
	assert.True(t, second.HasPrior())

	mixed := &Snapshot{Regions: []Region{
		regionWithPrior(0x1000, bytesOfInt32(1), bytesOfInt32(2)),
		regionAt(0x2000, bytesOfInt32(3)),
	}}
	assert.False(t, mixed.HasPrior())
}

func TestSnapshotResults(t *testing.T) {
	snapshot := &Snapshot{Regions: []Region{
		regionAt(0x1000, bytesOfInt32(10, 20)),
		regionAt(0x2000, bytesOfInt32(30)),
	}}

	results := snapshot.Results(Int32, 0)
	require.Len(t, results, 3)
	assert.Equal(t, []uint64{0x1000, 0x1004, 0x2000}, addresses(results))
	assert.Equal(t, []int64{10, 20, 30}, intValues(results))
	for _, e := range results {
		assert.EqualValues(t, 4, e.Size)
	}

	// max limits the result count but keeps order
	limited := snapshot.Results(Int32, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, []int64{10, 20}, intValues(limited))
}

func TestSnapshotResultsFloat(t *testing.T) {
	snapshot := &Snapshot{Regions: []Region{
		regionAt(0x1000, bytesOfFloat32(1.5, -2.25)),
	}}

	results := snapshot.Results(Float32, 0)
	require.Len(t, results, 2)
	assert.Equal(t, 1.5, results[0].Value.Float64())
	assert.Equal(t, -2.25, results[1].Value.Float64())
}
