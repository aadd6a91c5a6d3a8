// Package scan implements the first-scan / next-scan memory narrowing engine:
// a constraint model, a snapshot memory model, a value collector that reads
// target memory into snapshots, and a parallel scanner that filters snapshots
// down to the elements satisfying every constraint.
package scan

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ElementType selects how snapshot bytes are partitioned and interpreted.
// All values are little-endian.
type ElementType int

const (
	Int8 ElementType = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

// Stride returns the element width in bytes
func (t ElementType) Stride() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// Signed reports whether the type is a signed integer
func (t ElementType) Signed() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// Float reports whether the type is a floating point type
func (t ElementType) Float() bool {
	return t == Float32 || t == Float64
}

func (t ElementType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("ElementType(%d)", int(t))
}

// ParseElementType parses the textual type names accepted on the command line
func ParseElementType(s string) (ElementType, error) {
	switch s {
	case "int8", "i8":
		return Int8, nil
	case "int16", "i16":
		return Int16, nil
	case "int32", "i32", "int":
		return Int32, nil
	case "int64", "i64":
		return Int64, nil
	case "uint8", "u8", "byte":
		return Uint8, nil
	case "uint16", "u16":
		return Uint16, nil
	case "uint32", "u32":
		return Uint32, nil
	case "uint64", "u64":
		return Uint64, nil
	case "float32", "f32", "float":
		return Float32, nil
	case "float64", "f64", "double":
		return Float64, nil
	}
	return 0, fmt.Errorf("unknown element type %q", s)
}

// Typed little-endian decoders. The scanner picks one per element type and
// calls it once or twice per element, so these stay branch-free.

func decodeInt8(b []byte) int8 { return int8(b[0]) }

func decodeInt16(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) }

func decodeInt32(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) }

func decodeInt64(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) }

func decodeUint8(b []byte) uint8 { return b[0] }

func decodeUint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

func decodeUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func decodeUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

func decodeFloat32(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }

func decodeFloat64(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) }
