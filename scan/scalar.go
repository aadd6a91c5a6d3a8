package scan

import (
	"fmt"
	"math"
	"strconv"
)

// number covers the element value types a snapshot can be decoded into
type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

type scalarKind int

const (
	scalarNone scalarKind = iota
	scalarInt
	scalarUint
	scalarFloat
)

// Scalar is a typed numeric value. It serves both as a constraint operand and
// as a decoded element value in scan results. The zero Scalar means "absent".
type Scalar struct {
	kind scalarKind
	bits uint64
}

// IntScalar wraps a signed integer value
func IntScalar(v int64) Scalar {
	return Scalar{kind: scalarInt, bits: uint64(v)}
}

// UintScalar wraps an unsigned integer value
func UintScalar(v uint64) Scalar {
	return Scalar{kind: scalarUint, bits: v}
}

// FloatScalar wraps a floating point value
func FloatScalar(v float64) Scalar {
	return Scalar{kind: scalarFloat, bits: math.Float64bits(v)}
}

// ParseScalar parses a textual value according to the element type it will be
// compared against. Integer types accept decimal and 0x-prefixed hex.
func ParseScalar(s string, t ElementType) (Scalar, error) {
	switch {
	case t.Float():
		bitSize := 32
		if t == Float64 {
			bitSize = 64
		}
		v, err := strconv.ParseFloat(s, bitSize)
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		if t == Float32 {
			// Round through float32 so comparisons against decoded
			// float32 elements are exact
			v = float64(float32(v))
		}
		return FloatScalar(v), nil
	case t.Signed():
		v, err := strconv.ParseInt(s, 0, t.Stride()*8)
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		return IntScalar(v), nil
	default:
		v, err := strconv.ParseUint(s, 0, t.Stride()*8)
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		return UintScalar(v), nil
	}
}

// IsSet reports whether the scalar holds a value
func (s Scalar) IsSet() bool {
	return s.kind != scalarNone
}

// Int64 returns the value as a signed integer
func (s Scalar) Int64() int64 {
	if s.kind == scalarFloat {
		return int64(math.Float64frombits(s.bits))
	}
	return int64(s.bits)
}

// Uint64 returns the value as an unsigned integer
func (s Scalar) Uint64() uint64 {
	if s.kind == scalarFloat {
		return uint64(math.Float64frombits(s.bits))
	}
	return s.bits
}

// Float64 returns the value as a float
func (s Scalar) Float64() float64 {
	switch s.kind {
	case scalarInt:
		return float64(int64(s.bits))
	case scalarUint:
		return float64(s.bits)
	case scalarFloat:
		return math.Float64frombits(s.bits)
	}
	return 0
}

func (s Scalar) String() string {
	switch s.kind {
	case scalarInt:
		return strconv.FormatInt(int64(s.bits), 10)
	case scalarUint:
		return strconv.FormatUint(s.bits, 10)
	case scalarFloat:
		return strconv.FormatFloat(math.Float64frombits(s.bits), 'g', -1, 64)
	}
	return "<unset>"
}

// scalarAs converts a scalar to a concrete element value type
func scalarAs[T number](s Scalar) T {
	switch s.kind {
	case scalarInt:
		return T(int64(s.bits))
	case scalarUint:
		return T(s.bits)
	case scalarFloat:
		return T(math.Float64frombits(s.bits))
	}
	var zero T
	return zero
}

// decodeScalar decodes one element at the start of b as a Scalar
func decodeScalar(t ElementType, b []byte) Scalar {
	switch t {
	case Int8:
		return IntScalar(int64(decodeInt8(b)))
	case Int16:
		return IntScalar(int64(decodeInt16(b)))
	case Int32:
		return IntScalar(int64(decodeInt32(b)))
	case Int64:
		return IntScalar(decodeInt64(b))
	case Uint8:
		return UintScalar(uint64(decodeUint8(b)))
	case Uint16:
		return UintScalar(uint64(decodeUint16(b)))
	case Uint32:
		return UintScalar(uint64(decodeUint32(b)))
	case Uint64:
		return UintScalar(decodeUint64(b))
	case Float32:
		return FloatScalar(float64(decodeFloat32(b)))
	case Float64:
		return FloatScalar(decodeFloat64(b))
	}
	return Scalar{}
}
