package scan

import (
	"encoding/binary"
	"math"

	"memscan/process"
)

// Test buffer builders, all little-endian like target memory.

func bytesOfInt32(vals ...int32) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}

func bytesOfUint8(vals ...uint8) []byte {
	return append([]byte(nil), vals...)
}

func bytesOfFloat32(vals ...float32) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

func bytesOfFloat64(vals ...float64) []byte {
	buf := make([]byte, 0, len(vals)*8)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}

// regionAt builds a first-generation region
func regionAt(addr uint64, current []byte) Region {
	return Region{Address: process.ProcessMemoryAddress(addr), Current: current}
}

// regionWithPrior builds a region carrying previous-generation values
func regionWithPrior(addr uint64, current, previous []byte) Region {
	return Region{Address: process.ProcessMemoryAddress(addr), Current: current, Previous: previous}
}

// addresses extracts the element addresses from scan results
func addresses(elements []Element) []uint64 {
	out := make([]uint64, len(elements))
	for i, e := range elements {
		out[i] = uint64(e.Address)
	}
	return out
}

// intValues extracts the element values from scan results as int64
func intValues(elements []Element) []int64 {
	out := make([]int64, len(elements))
	for i, e := range elements {
		out[i] = e.Value.Int64()
	}
	return out
}
