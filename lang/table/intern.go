package table

import "github.com/mna/loxvm/lang/value"

// Interner is the VM's string intern table (spec.md §3 "strings"): a Table
// used with set semantics (every entry's value is value.Nil) whose sole
// purpose is Intern's dedup-by-content-then-allocate behavior.
type Interner struct {
	t Table
}

// Intern returns the canonical *value.String for s: if an equal string was
// already interned, the existing object is returned (by pointer); otherwise
// a new String object is allocated, tracked in objs, and interned. This is
// what makes spec.md §3's invariant — "s1.bytes == s2.bytes implies s1 is
// s2" — hold for every string the compiler or runtime ever constructs.
func (in *Interner) Intern(objs *value.Objects, s string) *value.String {
	hash := value.FNV1a32(s)
	if existing := in.t.FindString(s, hash); existing != nil {
		return existing
	}
	str := value.NewString(objs, s)
	in.t.Set(str, value.Nil)
	return str
}
