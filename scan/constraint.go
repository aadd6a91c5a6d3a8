package scan

import "fmt"

// ConstraintKind identifies one comparison rule
type ConstraintKind int

const (
	KindEqual ConstraintKind = iota
	KindNotEqual
	KindGreaterThan
	KindGreaterThanOrEqual
	KindLessThan
	KindLessThanOrEqual
	KindChanged
	KindUnchanged
	KindIncreased
	KindDecreased
	KindIncreasedBy
	KindDecreasedBy
)

// RequiresOperand reports whether the kind compares against a user-supplied value
func (k ConstraintKind) RequiresOperand() bool {
	switch k {
	case KindEqual, KindNotEqual, KindGreaterThan, KindGreaterThanOrEqual,
		KindLessThan, KindLessThanOrEqual, KindIncreasedBy, KindDecreasedBy:
		return true
	}
	return false
}

// RequiresPrior reports whether the kind compares against the previous pass's value
func (k ConstraintKind) RequiresPrior() bool {
	switch k {
	case KindChanged, KindUnchanged, KindIncreased, KindDecreased,
		KindIncreasedBy, KindDecreasedBy:
		return true
	}
	return false
}

func (k ConstraintKind) String() string {
	switch k {
	case KindEqual:
		return "equal"
	case KindNotEqual:
		return "not-equal"
	case KindGreaterThan:
		return "greater-than"
	case KindGreaterThanOrEqual:
		return "greater-or-equal"
	case KindLessThan:
		return "less-than"
	case KindLessThanOrEqual:
		return "less-or-equal"
	case KindChanged:
		return "changed"
	case KindUnchanged:
		return "unchanged"
	case KindIncreased:
		return "increased"
	case KindDecreased:
		return "decreased"
	case KindIncreasedBy:
		return "increased-by"
	case KindDecreasedBy:
		return "decreased-by"
	}
	return fmt.Sprintf("ConstraintKind(%d)", int(k))
}

// Constraint is one comparison rule with its operand. Constraints are plain
// values; once handed to a scan they are never mutated.
type Constraint struct {
	Kind    ConstraintKind
	Operand Scalar
}

// Valid reports whether operand presence matches the kind's requirement
func (c Constraint) Valid() bool {
	return c.Operand.IsSet() == c.Kind.RequiresOperand()
}

func (c Constraint) String() string {
	if c.Kind.RequiresOperand() {
		return fmt.Sprintf("%s(%s)", c.Kind, c.Operand)
	}
	return c.Kind.String()
}

// Constructors for the twelve constraint kinds.

func Equal(v Scalar) Constraint { return Constraint{Kind: KindEqual, Operand: v} }

func NotEqual(v Scalar) Constraint { return Constraint{Kind: KindNotEqual, Operand: v} }

func GreaterThan(v Scalar) Constraint { return Constraint{Kind: KindGreaterThan, Operand: v} }

func GreaterThanOrEqual(v Scalar) Constraint {
	return Constraint{Kind: KindGreaterThanOrEqual, Operand: v}
}

func LessThan(v Scalar) Constraint { return Constraint{Kind: KindLessThan, Operand: v} }

func LessThanOrEqual(v Scalar) Constraint { return Constraint{Kind: KindLessThanOrEqual, Operand: v} }

func Changed() Constraint { return Constraint{Kind: KindChanged} }

func Unchanged() Constraint { return Constraint{Kind: KindUnchanged} }

func Increased() Constraint { return Constraint{Kind: KindIncreased} }

func Decreased() Constraint { return Constraint{Kind: KindDecreased} }

func IncreasedBy(v Scalar) Constraint { return Constraint{Kind: KindIncreasedBy, Operand: v} }

func DecreasedBy(v Scalar) Constraint { return Constraint{Kind: KindDecreasedBy, Operand: v} }
