package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestEBNF verifies that grammar.ebnf parses as well-formed EBNF and that
// every production is reachable from Program, the language's start symbol
// (spec.md §6). It catches a typo'd or orphaned production; it does not
// exercise lang/compiler, which implements this grammar directly as code
// rather than by interpreting this file.
func TestEBNF(t *testing.T) {
	f, err := os.Open("grammar.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("grammar.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Program"); err != nil {
		t.Fatal(err)
	}
}
