package scan

// elementEval tests one element. cur and prev point at the element's bytes in
// the current and previous buffers; prev is only touched by delta kinds, which
// the scanner guarantees have a prior buffer to point into.
type elementEval func(cur, prev []byte) bool

// compileEvals lowers a collection into one closure per constraint for the
// collection's element type. Compiling once per scan keeps the per-element
// loop free of type switches.
func compileEvals(col *Collection) []elementEval {
	cons := col.Constraints()
	switch col.ElementType() {
	case Int8:
		return compileTyped(cons, decodeInt8)
	case Int16:
		return compileTyped(cons, decodeInt16)
	case Int32:
		return compileTyped(cons, decodeInt32)
	case Int64:
		return compileTyped(cons, decodeInt64)
	case Uint8:
		return compileTyped(cons, decodeUint8)
	case Uint16:
		return compileTyped(cons, decodeUint16)
	case Uint32:
		return compileTyped(cons, decodeUint32)
	case Uint64:
		return compileTyped(cons, decodeUint64)
	case Float32:
		return compileTyped(cons, decodeFloat32)
	case Float64:
		return compileTyped(cons, decodeFloat64)
	}
	return nil
}

func compileTyped[T number](cons []Constraint, decode func([]byte) T) []elementEval {
	evals := make([]elementEval, 0, len(cons))
	for _, c := range cons {
		v := scalarAs[T](c.Operand)
		switch c.Kind {
		case KindEqual:
			evals = append(evals, func(cur, _ []byte) bool { return decode(cur) == v })
		case KindNotEqual:
			evals = append(evals, func(cur, _ []byte) bool { return decode(cur) != v })
		case KindGreaterThan:
			evals = append(evals, func(cur, _ []byte) bool { return decode(cur) > v })
		case KindGreaterThanOrEqual:
			evals = append(evals, func(cur, _ []byte) bool { return decode(cur) >= v })
		case KindLessThan:
			evals = append(evals, func(cur, _ []byte) bool { return decode(cur) < v })
		case KindLessThanOrEqual:
			evals = append(evals, func(cur, _ []byte) bool { return decode(cur) <= v })
		case KindChanged:
			evals = append(evals, func(cur, prev []byte) bool { return decode(cur) != decode(prev) })
		case KindUnchanged:
			evals = append(evals, func(cur, prev []byte) bool { return decode(cur) == decode(prev) })
		case KindIncreased:
			evals = append(evals, func(cur, prev []byte) bool { return decode(cur) > decode(prev) })
		case KindDecreased:
			evals = append(evals, func(cur, prev []byte) bool { return decode(cur) < decode(prev) })
		case KindIncreasedBy:
			// The direction guard keeps unsigned subtraction from wrapping
			// and rejects NaN on float types
			evals = append(evals, func(cur, prev []byte) bool {
				c, p := decode(cur), decode(prev)
				return c >= p && c-p == v
			})
		case KindDecreasedBy:
			evals = append(evals, func(cur, prev []byte) bool {
				c, p := decode(cur), decode(prev)
				return p >= c && p-c == v
			})
		}
	}
	return evals
}
