package value_test

import (
	"math"
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func TestNumberString(t *testing.T) {
	cases := []struct {
		n    value.Number
		want string
	}{
		{3, "3"},
		{-3, "-3"},
		{0, "0"},
		{3.5, "3.5"},
		{1.0 / 3.0, "0.3333333333333333"},
		{2e15, "2000000000000000"},
		{-2e15, "-2000000000000000"},
		{9007199254740992, "9007199254740992"},
		{-9007199254740992, "-9007199254740992"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.n.String())
	}
}

func TestBoolString(t *testing.T) {
	require.Equal(t, "true", value.True.String())
	require.Equal(t, "false", value.False.String())
}

func TestNilString(t *testing.T) {
	require.Equal(t, "nil", value.Nil.String())
}

func TestIsTruthy(t *testing.T) {
	require.False(t, value.IsTruthy(value.Nil))
	require.False(t, value.IsTruthy(value.False))
	require.True(t, value.IsTruthy(value.True))
	require.True(t, value.IsTruthy(value.Number(0)))
	require.True(t, value.IsTruthy(value.Number(math.NaN())))

	var objs value.Objects
	require.True(t, value.IsTruthy(value.NewString(&objs, "")))
}

func TestEqual(t *testing.T) {
	require.True(t, value.Equal(value.Nil, value.Nil))
	require.True(t, value.Equal(value.True, value.True))
	require.False(t, value.Equal(value.True, value.False))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.True))

	nan := value.Number(math.NaN())
	require.False(t, value.Equal(nan, nan))

	var objs value.Objects
	a := value.NewString(&objs, "x")
	b := value.NewString(&objs, "x") // not interned: distinct pointers
	require.False(t, value.Equal(a, b))
	require.True(t, value.Equal(a, a))
}

func TestFunctionString(t *testing.T) {
	var objs value.Objects
	anon := value.NewFunction(&objs, nil)
	require.Equal(t, "<script>", anon.String())

	name := value.NewString(&objs, "add")
	named := value.NewFunction(&objs, name)
	require.Equal(t, "<fn add>", named.String())
}

func TestNativeString(t *testing.T) {
	var objs value.Objects
	n := value.NewNative(&objs, "clock", func(args []value.Value) (value.Value, error) { return value.Nil, nil })
	require.Equal(t, "<native fn>", n.String())
}

func TestObjectsTrackAndTeardown(t *testing.T) {
	var objs value.Objects
	value.NewString(&objs, "a")
	value.NewString(&objs, "b")
	require.Equal(t, 2, objs.Count())

	objs.Teardown()
	require.Equal(t, 0, objs.Count())
}
