package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/loxvm/internal/maincmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print 1 + 2 * 3;`), 0o600))

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	require.Equal(t, "7\n", out.String())
	require.Empty(t, errOut.String())
}

func TestRunCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print 1`), 0o600))

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}

// TestRepl exercises the REPL's defining feature (SPEC_FULL.md §4): a
// global declared on one line stays visible on the next.
func TestRepl(t *testing.T) {
	var out, errOut bytes.Buffer
	in := strings.NewReader("var x = 40;\nprint x + 2;\n")

	c := &maincmd.Cmd{}
	err := c.Repl(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: in}, nil)
	require.NoError(t, err)
	require.Contains(t, out.String(), "42\n")
	require.Empty(t, errOut.String())
}
