package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

// Run compiles and executes the single source file named by args[0],
// exiting with a non-nil error (mapped by Main to mainer.Failure) on a
// compile or runtime error, mirroring the teacher's exit-code convention
// of letting each command print its own errors and return a plain error
// for Main to translate (spec.md §4.8 interpret Result).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return err
	}

	l, err := limits()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	m := vm.New(l)
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr
	defer m.Close()

	switch m.Interpret(string(src)) {
	case vm.CompileError:
		return fmt.Errorf("%s: compile error", path)
	case vm.RuntimeError:
		return fmt.Errorf("%s: runtime error", path)
	default:
		return nil
	}
}
