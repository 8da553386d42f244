package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

// Repl runs a line-at-a-time read-eval-print loop over one vm.VM, so
// globals declared on one line remain visible to the next (SPEC_FULL.md
// §4 "REPL"). Unlike Run, a compile or runtime error on one line does not
// end the session — only EOF on stdin does.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	l, err := limits()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	m := vm.New(l)
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr
	defer m.Close()

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return scanner.Err()
		}
		m.Interpret(scanner.Text())
	}
}
