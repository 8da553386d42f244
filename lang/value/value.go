// Package value implements the tagged Value union and heap Object model
// described in spec.md §3: booleans, nil, IEEE-754 numbers and
// object-references (strings, functions, natives), plus the allocation list
// objects are linked into for bulk teardown.
//
// The type shape (a small interface satisfied by distinct Go types, each
// carrying its own String/Type rendering) is grounded on the teacher's
// lang/machine.Value family (machine/value.go, float.go, nil.go): a Value
// interface with String/Type methods, and one Go type per variant rather
// than a hand-rolled tagged struct.
package value

import (
	"fmt"
	"math"
)

// Value is implemented by every runtime value the VM can hold on its stack.
type Value interface {
	// String renders the value the way Print (§4.3) does.
	String() string
	// Type returns a short name for the value's type, used in error messages.
	Type() string
}

// Bool is the boolean Value variant.
type Bool bool

const (
	False = Bool(false)
	True  = Bool(true)
)

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// NilType is the type of Nil. Represented as a byte-sized defined type
// (rather than struct{}) so Nil can be a typed constant, matching the
// teacher's machine.NilType.
type NilType byte

// Nil is the singular nil Value.
const Nil = NilType(0)

func (NilType) String() string { return "nil" }
func (NilType) Type() string   { return "nil" }

// Number is the double-precision numeric Value variant. Equality is plain
// Go `==` on the float64, so NaN != NaN and 0 == -0, per spec.md §3 and the
// "Numeric equality" design note in spec.md §9.
type Number float64

func (n Number) Type() string { return "number" }

// maxExactInt is the largest magnitude an integral float64 can hold without
// losing precision (2^53); spec.md §8 requires exact decimal round-trip for
// every integer in [-2^53, 2^53], well past where Go's default %g verb
// switches to scientific notation.
const maxExactInt = 1 << 53

// String renders n with a shortest-round-trip formatting equivalent to %g,
// but with the integer-valued case never carrying a trailing ".0" (e.g. "3"
// rather than "3e+00" or "3.0"), per spec.md §4.3/§8.
func (n Number) String() string {
	f := float64(n)
	if f == float64(int64(f)) && math.Abs(f) <= maxExactInt {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// IsTruthy implements the language's truthiness rule: only Nil and the
// boolean false are falsey (spec.md §3, §4.6 NOT / JUMP_IF_FALSE).
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case NilType:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements the cross-type equality rule of spec.md §3: Number
// compares numerically (NaN != NaN), Nil == Nil, Bool compares by value,
// *String compares canonically by pointer identity thanks to interning
// (spec.md §4.4), and any cross-variant pair is unequal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case NilType:
		_, ok := b.(NilType)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case *String:
		bs, ok := b.(*String)
		return ok && a == bs // interned: content-equal implies pointer-equal
	default:
		return a == b
	}
}
