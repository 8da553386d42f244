// Package table implements the open-addressed hash table specified in
// spec.md §4.4: linear probing with tombstone-marked deletions, used — via
// FindString — as the string intern table that backs spec.md's
// pointer-equality-implies-content-equality invariant for strings. The VM's
// global variables are not stored in this table (see below).
//
// This is one of the few pieces of the core with no direct model in the
// teacher repo: the teacher's lang/machine.Map is backed by
// github.com/dolthub/swiss, a closed/open hybrid hash map whose API
// (Get/Put/Iterator) has no equivalent of find_entry's tombstone-aware probe
// sequence or of a find-by-hash-then-bytes lookup for pre-allocation
// deduplication — both of which spec.md §4.4 mandates explicitly as the
// "hardest engineering" of this package. Reimplementing the probe sequence
// by hand is the only way to honor those two requirements precisely, so this
// file is built from spec.md's description rather than adapted from a
// library; see DESIGN.md for the full justification. dolthub/swiss remains
// wired elsewhere, as lang/vm.VM's globals table.
package table

import "github.com/mna/loxvm/lang/value"

// entryState distinguishes an empty slot from a tombstone without needing a
// sentinel Value, mirroring spec.md §4.4's three-way entry classification.
type entryState uint8

const (
	stateEmpty entryState = iota
	stateTombstone
	stateOccupied
)

type entry struct {
	key   *value.String
	val   value.Value
	state entryState
}

const initialCapacity = 8
const maxLoad = 0.75

// Table is an open-addressed hash table keyed by interned *value.String
// pointers (so key comparison is pointer equality, not byte comparison).
type Table struct {
	count   int // occupied entries plus tombstones; drives the load factor
	entries []entry
}

// Get returns the value stored for key, if any.
func (t *Table) Get(key *value.String) (value.Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.state != stateOccupied {
		return nil, false
	}
	return e.val, true
}

// Set stores val for key, growing the table first if needed. It returns
// true if key was not already present (spec.md §4.4).
func (t *Table) Set(key *value.String, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}

	e := t.findEntry(t.entries, key)
	isNew := e.state != stateOccupied
	if isNew && e.state == stateEmpty {
		t.count++
	}
	e.key = key
	e.val = val
	e.state = stateOccupied
	return isNew
}

// Delete marks key's entry (if present) as a tombstone, preserving the probe
// chain for every other key that might have collided with it. count is not
// decremented, so the tombstone keeps counting toward the load factor that
// triggers growth until the next grow discards it.
func (t *Table) Delete(key *value.String) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.findEntry(t.entries, key)
	if e.state != stateOccupied {
		return false
	}
	e.key = nil
	e.val = value.True // tombstone sentinel, per spec.md §4.4
	e.state = stateTombstone
	return true
}

// FindString looks up a string by raw bytes and precomputed hash without
// allocating a *value.String, so the compiler and VM can deduplicate string
// construction before ever allocating the candidate object (spec.md §4.4).
func (t *Table) FindString(s string, hash uint32) *value.String {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	idx := hash & mask
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			return nil
		case stateOccupied:
			if e.key.Hash == hash && e.key.Len == len(s) && e.key.Bytes == s {
				return e.key
			}
		}
		idx = (idx + 1) & mask
	}
}

// findEntry implements spec.md §4.4's find_entry: probe forward from
// hash%capacity, returning the slot holding key if present, else the first
// tombstone seen during the probe (so a subsequent Set reuses it), else the
// terminating empty slot.
func (t *Table) findEntry(entries []entry, key *value.String) *entry {
	mask := uint32(len(entries) - 1)
	idx := key.Hash & mask
	var tombstone *entry
	for {
		e := &entries[idx]
		switch e.state {
		case stateEmpty:
			if tombstone != nil {
				return tombstone
			}
			return e
		case stateTombstone:
			if tombstone == nil {
				tombstone = e
			}
		case stateOccupied:
			if e.key == key {
				return e
			}
		}
		idx = (idx + 1) & mask
	}
}

// grow doubles (or allocates, the first time) capacity and rehashes every
// occupied entry into the new array, discarding tombstones, per spec.md
// §4.4.
func (t *Table) grow() {
	newCap := initialCapacity
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	newEntries := make([]entry, newCap)

	t.count = 0
	for _, e := range t.entries {
		if e.state != stateOccupied {
			continue
		}
		dst := t.findEntry(newEntries, e.key)
		dst.key = e.key
		dst.val = e.val
		dst.state = stateOccupied
		t.count++
	}
	t.entries = newEntries
}

// Count returns the number of occupied entries plus the tombstones left by
// Delete since the last grow.
func (t *Table) Count() int { return t.count }
