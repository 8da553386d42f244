package table_test

import (
	"fmt"
	"testing"

	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func newString(objs *value.Objects, s string) *value.String {
	return value.NewString(objs, s)
}

func TestSetGetDelete(t *testing.T) {
	var objs value.Objects
	var tbl table.Table

	key := newString(&objs, "foo")
	isNew := tbl.Set(key, value.Number(1))
	require.True(t, isNew)

	v, ok := tbl.Get(key)
	require.True(t, ok)
	require.Equal(t, value.Number(1), v)

	isNew = tbl.Set(key, value.Number(2))
	require.False(t, isNew)
	v, ok = tbl.Get(key)
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)

	require.True(t, tbl.Delete(key))
	_, ok = tbl.Get(key)
	require.False(t, ok)

	require.False(t, tbl.Delete(key))
}

func TestGetMissingOnEmptyTable(t *testing.T) {
	var tbl table.Table
	var objs value.Objects
	_, ok := tbl.Get(newString(&objs, "missing"))
	require.False(t, ok)
}

// TestTombstoneProbeChain checks that deleting a key does not break the
// probe chain for a different key that collided with it on insert (spec.md
// §4.4: deletions must leave a tombstone, not an empty slot).
func TestTombstoneProbeChain(t *testing.T) {
	var objs value.Objects
	var tbl table.Table

	// "a" and "i" hash to the same slot of the initial 8-entry table.
	a := newString(&objs, "a")
	b := newString(&objs, "i")
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))

	tbl.Delete(a)

	v, ok := tbl.Get(b)
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)
}

func TestGrowth(t *testing.T) {
	var objs value.Objects
	var tbl table.Table

	const n = 200
	keys := make([]*value.String, n)
	for i := 0; i < n; i++ {
		keys[i] = newString(&objs, fmt.Sprintf("key-%d", i))
		tbl.Set(keys[i], value.Number(float64(i)))
	}
	require.Equal(t, n, tbl.Count())

	for i := 0; i < n; i++ {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok)
		require.Equal(t, value.Number(float64(i)), v)
	}
}

func TestFindString(t *testing.T) {
	var objs value.Objects
	var tbl table.Table

	s := newString(&objs, "hello")
	tbl.Set(s, value.Nil)

	found := tbl.FindString("hello", value.FNV1a32("hello"))
	require.Same(t, s, found)

	require.Nil(t, tbl.FindString("nope", value.FNV1a32("nope")))
}

func TestInterner(t *testing.T) {
	var objs value.Objects
	var in table.Interner

	s1 := in.Intern(&objs, "hello")
	s2 := in.Intern(&objs, "hello")
	require.Same(t, s1, s2)

	s3 := in.Intern(&objs, "world")
	require.NotSame(t, s1, s3)
}
