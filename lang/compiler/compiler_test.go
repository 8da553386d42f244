package compiler_test

import (
	"strings"
	"testing"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) (*value.Function, []string) {
	t.Helper()
	var objs value.Objects
	var interner table.Interner
	return compiler.Compile(src, &objs, &interner)
}

func TestCompileValidPrograms(t *testing.T) {
	cases := []string{
		`print 1 + 2 * 3;`,
		`var a = 1; { var a = a + 2; print a; } print a;`,
		`print nil or "hi"; print 0 and "x";`,
		`var sum = 0; for (var i = 1; i <= 5; i = i + 1) sum = sum + i;`,
		`fun fib(n) { if (n < 2) return n; return fib(n - 2) + fib(n - 1); } print fib(10);`,
		`fun noop() {} noop();`,
		`while (false) print "never";`,
	}
	for _, src := range cases {
		fn, errs := compile(t, src)
		require.Nil(t, errs, "source: %s", src)
		require.NotNil(t, fn)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		want string
	}{
		{"missing semicolon", `print 1`, "Expect ';' after value."},
		{"invalid assignment target", `1 = 2;`, "Invalid assignment target."},
		{"read local in its own initializer", `{ var a = a; }`, "Can't read local variable in its own initializer."},
		{"duplicate local", `{ var a = 1; var a = 2; }`, "Already a variable with this name in this scope."},
		{"return from top level", `return 1;`, "Can't return from top-level code."},
		{"unexpected char", `@`, "Unexpected character."},
		{"unterminated string", `"abc`, "Unterminated string."},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			fn, errs := compile(t, c.src)
			require.Nil(t, fn)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e, c.want) {
					found = true
					break
				}
			}
			require.True(t, found, "expected error containing %q, got %v", c.want, errs)
		})
	}
}

// TestParamBoundary mirrors spec.md §8: exactly 255 parameters compiles,
// 256 is a compile error.
func TestParamBoundary(t *testing.T) {
	names := make([]string, 255)
	for i := range names {
		names[i] = "p" + itoa(i)
	}
	src := "fun f(" + strings.Join(names, ",") + ") {}"
	fn, errs := compile(t, src)
	require.Nil(t, errs)
	require.NotNil(t, fn)

	names = append(names, "extra")
	src = "fun f(" + strings.Join(names, ",") + ") {}"
	_, errs = compile(t, src)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "Can't have more than 255 parameters.") {
			found = true
		}
	}
	require.True(t, found)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func TestSynchronizeRecoversAfterError(t *testing.T) {
	// a missing semicolon followed by a valid statement should still report
	// only the one error, not cascade into spurious extras.
	_, errs := compile(t, `print 1 print 2;`)
	require.Len(t, errs, 1)
}
