package scan

import "strings"

// Collection is an ordered set of constraints, all AND-ed, bound to one
// element type. A Collection is not safe for concurrent mutation; the session
// clones it before every scan pass so the executing copy is frozen.
type Collection struct {
	elementType ElementType
	constraints []Constraint
}

// NewCollection creates an empty collection for the given element type
func NewCollection(t ElementType) *Collection {
	return &Collection{elementType: t}
}

// ElementType returns the type elements are decoded as
func (c *Collection) ElementType() ElementType {
	return c.elementType
}

// SetElementType changes how future scans interpret elements. Buffers already
// collected are not reinterpreted until the next pass runs.
func (c *Collection) SetElementType(t ElementType) {
	c.elementType = t
}

// AddConstraint appends a constraint. Order is preserved; duplicates are kept.
func (c *Collection) AddConstraint(con Constraint) {
	c.constraints = append(c.constraints, con)
}

// RemoveConstraints removes all constraints structurally equal to con
func (c *Collection) RemoveConstraints(con Constraint) {
	kept := c.constraints[:0]
	for _, existing := range c.constraints {
		if existing != con {
			kept = append(kept, existing)
		}
	}
	c.constraints = kept
}

// ClearConstraints empties the collection
func (c *Collection) ClearConstraints() {
	c.constraints = nil
}

// Constraints returns the ordered constraints. The caller must not modify the
// returned slice.
func (c *Collection) Constraints() []Constraint {
	return c.constraints
}

// Len returns the number of constraints
func (c *Collection) Len() int {
	return len(c.constraints)
}

// Clone returns a deep, independent copy
func (c *Collection) Clone() *Collection {
	clone := &Collection{elementType: c.elementType}
	if len(c.constraints) > 0 {
		clone.constraints = make([]Constraint, len(c.constraints))
		copy(clone.constraints, c.constraints)
	}
	return clone
}

// IsValid reports whether the collection can drive a scan: it must be
// non-empty and every constraint's operand must match its kind's requirement.
// Whether the input snapshot carries the prior values a delta constraint
// needs is checked by the scanner against the actual snapshot.
func (c *Collection) IsValid() bool {
	if len(c.constraints) == 0 {
		return false
	}
	for _, con := range c.constraints {
		if !con.Valid() {
			return false
		}
	}
	return true
}

// RequiresPrior reports whether any constraint compares against previous values
func (c *Collection) RequiresPrior() bool {
	for _, con := range c.constraints {
		if con.Kind.RequiresPrior() {
			return true
		}
	}
	return false
}

func (c *Collection) String() string {
	parts := make([]string, 0, len(c.constraints)+1)
	parts = append(parts, c.elementType.String())
	for _, con := range c.constraints {
		parts = append(parts, con.String())
	}
	return strings.Join(parts, " ")
}
