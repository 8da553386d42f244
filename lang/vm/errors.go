package vm

// RuntimeErr is a runtime fault raised by the dispatch loop (spec.md §4.6,
// §7), carrying the source line active when it was raised. Error() returns
// only the bare message; Interpret prints the "[line N] in FNAME"
// frame-by-frame trace separately as it unwinds, mirroring the split
// between the teacher's machine.EvalError (the error) and Frame.Position
// (the trace) rather than bundling both into one type.
type RuntimeErr struct {
	Line    int
	Message string
}

func (e *RuntimeErr) Error() string { return e.Message }
