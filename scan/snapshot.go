package scan

import (
	"memscan/process"
)

// Region is one contiguous captured range: the bytes last read from it and,
// after the first re-collection, the bytes read the pass before.
type Region struct {
	Address  process.ProcessMemoryAddress
	Current  []byte
	Previous []byte // nil until a prior generation exists
}

// Size returns the captured length in bytes
func (r *Region) Size() process.ProcessMemorySize {
	return process.ProcessMemorySize(len(r.Current))
}

// HasPrevious reports whether the region carries a full previous-generation buffer
func (r *Region) HasPrevious() bool {
	return r.Previous != nil && len(r.Previous) == len(r.Current)
}

// ElementCount returns the number of whole elements of the given type in the
// region. Trailing bytes smaller than one stride are excluded.
func (r *Region) ElementCount(t ElementType) int {
	return len(r.Current) / t.Stride()
}

// Snapshot is an ordered capture of process memory regions. A snapshot owns
// its buffers exclusively: the collector and scanner produce new snapshots
// rather than mutating one in place, so an input snapshot may be shared
// read-only across parallel workers.
type Snapshot struct {
	Regions []Region
}

// RegionCount returns the number of regions
func (s *Snapshot) RegionCount() int {
	return len(s.Regions)
}

// ByteSize returns the total captured bytes across all regions
func (s *Snapshot) ByteSize() uint64 {
	var total uint64
	for i := range s.Regions {
		total += uint64(len(s.Regions[i].Current))
	}
	return total
}

// ElementCount returns the total whole elements of the given type
func (s *Snapshot) ElementCount(t ElementType) int {
	count := 0
	for i := range s.Regions {
		count += s.Regions[i].ElementCount(t)
	}
	return count
}

// HasPrior reports whether every region carries previous-generation values,
// which delta and change-state constraints require
func (s *Snapshot) HasPrior() bool {
	for i := range s.Regions {
		if !s.Regions[i].HasPrevious() {
			return false
		}
	}
	return true
}

// Element is one surviving value as consumed by callers. Previous values are
// internal to the snapshot and not part of this shape.
type Element struct {
	Address process.ProcessMemoryAddress
	Size    process.ProcessMemorySize
	Value   Scalar
}

// Results decodes up to max elements of the given type in region and offset
// order. max <= 0 returns all elements.
func (s *Snapshot) Results(t ElementType, max int) []Element {
	stride := t.Stride()
	if max <= 0 {
		max = s.ElementCount(t)
	}

	results := make([]Element, 0, max)
	for i := range s.Regions {
		region := &s.Regions[i]
		n := region.ElementCount(t)
		for e := 0; e < n; e++ {
			if len(results) == max {
				return results
			}
			offset := e * stride
			results = append(results, Element{
				Address: region.Address + process.ProcessMemoryAddress(offset),
				Size:    process.ProcessMemorySize(stride),
				Value:   decodeScalar(t, region.Current[offset:]),
			})
		}
	}
	return results
}
