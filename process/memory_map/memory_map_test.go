package memory_map

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerms(t *testing.T) {
	item := MemoryMapItem{Perms: "rw-p"}
	assert.True(t, item.IsReadable())
	assert.True(t, item.IsWritable())
	assert.False(t, item.IsExecutable())

	item = MemoryMapItem{Perms: "r-xp"}
	assert.True(t, item.IsReadable())
	assert.False(t, item.IsWritable())
	assert.True(t, item.IsExecutable())

	assert.False(t, MemoryMapItem{Perms: ""}.IsReadable())
}

func TestFindRegion(t *testing.T) {
	mm := []MemoryMapItem{
		{Address: 0x5000, Size: 0x1000},
		{Address: 0x1000, Size: 0x1000},
		{Address: 0x3000, Size: 0x800},
	}
	SortByAddress(mm)

	require.Equal(t, uint64(0x1000), mm[0].Address)

	found := FindRegion(0x1000, mm)
	require.NotNil(t, found)
	assert.Equal(t, uint64(0x1000), found.Address)

	// Last byte of a region still resolves to it
	found = FindRegion(0x37FF, mm)
	require.NotNil(t, found)
	assert.Equal(t, uint64(0x3000), found.Address)

	// Gap between regions
	assert.Nil(t, FindRegion(0x2000, mm))
	// Before and after all regions
	assert.Nil(t, FindRegion(0x0500, mm))
	assert.Nil(t, FindRegion(0x6000, mm))
}
