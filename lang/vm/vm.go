// Package vm implements the stack-based bytecode virtual machine (spec.md
// §4.6): a value stack, a call-frame stack, a globals table and a
// dispatch loop that switches on lang/chunk.Opcode. It plays the role the
// teacher's lang/machine package plays for its tree-walking-over-bytecode
// thread model, but is rewritten around a flat opcode switch with explicit
// instruction pointers per frame rather than the teacher's cell/iterator/
// defer machinery, none of which spec.md's Lox subset needs.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/value"
)

// Limits bounds the VM's resource usage, configurable by the CLI via
// caarlos0/env (spec.md §5, SPEC_FULL.md §2). For MaxFrames and MaxStack a
// value <= 0 means "use the built-in default"; for MaxSteps it means
// unlimited, as with the teacher's Thread.MaxSteps.
type Limits struct {
	MaxFrames int `env:"LOXVM_MAX_FRAMES" envDefault:"64"`
	MaxStack  int `env:"LOXVM_MAX_STACK" envDefault:"4096"`
	MaxSteps  int `env:"LOXVM_MAX_STEPS" envDefault:"0"`
}

func (l Limits) maxFrames() int {
	if l.MaxFrames <= 0 {
		return 64
	}
	return l.MaxFrames
}

func (l Limits) maxStack() int {
	if l.MaxStack <= 0 {
		return 4096
	}
	return l.MaxStack
}

// CallFrame is one activation record (spec.md §3): the function being run,
// its instruction pointer, and the base stack slot its locals start at.
type CallFrame struct {
	fn       *value.Function
	ip       int
	slotBase int
}

// Result is the outcome of an Interpret call (spec.md §4.8).
type Result int

const (
	Ok Result = iota
	CompileError
	RuntimeError
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "Ok"
	case CompileError:
		return "CompileError"
	case RuntimeError:
		return "RuntimeError"
	default:
		return "Unknown"
	}
}

// VM is the full interpreter state for one program run: value stack,
// frame stack, globals, the string intern table and the allocation list
// (spec.md §3 "VM state"). A VM is single-use-per-program the way the
// teacher's Thread is single-use-per-RunProgram; construct a new one per
// Interpret call that needs isolated globals.
type VM struct {
	Stdout io.Writer
	Stderr io.Writer

	Limits Limits

	stack  []value.Value
	frames []CallFrame

	globals  *swiss.Map[string, value.Value]
	interner *table.Interner
	objects  *value.Objects

	natives map[string]*value.Native

	steps uint64
}

// New returns a VM ready to Interpret source, with its own fresh globals,
// string table and allocation list.
func New(limits Limits) *VM {
	vm := &VM{
		Limits:   limits,
		globals:  swiss.NewMap[string, value.Value](8),
		interner: &table.Interner{},
		objects:  &value.Objects{},
		natives:  make(map[string]*value.Native),
	}
	vm.stack = make([]value.Value, 0, limits.maxStack())
	vm.frames = make([]CallFrame, 0, limits.maxFrames())
	registerStdlib(vm)
	return vm
}

// Close releases every object this VM has allocated (spec.md §5: bulk
// teardown, no per-object free, no mark-and-sweep).
func (vm *VM) Close() { vm.objects.Teardown() }

func (vm *VM) stdout() io.Writer {
	if vm.Stdout != nil {
		return vm.Stdout
	}
	return os.Stdout
}

func (vm *VM) stderr() io.Writer {
	if vm.Stderr != nil {
		return vm.Stderr
	}
	return os.Stderr
}

// Interpret compiles and runs source, returning the terminal Result
// (spec.md §4.8 driver). Compile errors are written to Stderr and reported
// as CompileError without ever reaching the dispatch loop; runtime errors
// are likewise written to Stderr, with a frame-by-frame trace, and
// reported as RuntimeError.
func (vm *VM) Interpret(source string) Result {
	fn, errs := compiler.Compile(source, vm.objects, vm.interner)
	if fn == nil {
		for _, e := range errs {
			fmt.Fprintln(vm.stderr(), e)
		}
		return CompileError
	}

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.push(fn)
	if err := vm.call(fn, 0); err != nil {
		vm.reportRuntimeError(err)
		return RuntimeError
	}

	if err := vm.run(); err != nil {
		vm.reportRuntimeError(err)
		return RuntimeError
	}
	return Ok
}

func (vm *VM) reportRuntimeError(err error) {
	fmt.Fprintln(vm.stderr(), err)
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		line := fr.fn.Chunk.Lines[fr.ip-1]
		name := "script"
		if fr.fn.Name != nil {
			name = fr.fn.Name.Bytes + "()"
		}
		fmt.Fprintf(vm.stderr(), "[line %d] in %s\n", line, name)
	}
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

// call pushes a new CallFrame for fn, checking arity and the frame-depth
// limit (spec.md §4.6 "OP_CALL", §5).
func (vm *VM) call(fn *value.Function, argc int) error {
	if argc != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argc)
	}
	if len(vm.frames) == vm.Limits.maxFrames() {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, CallFrame{fn: fn, slotBase: len(vm.stack) - argc - 1})
	return nil
}

// callValue dispatches OP_CALL's callee, which may be a user-defined
// Function or a host Native (spec.md §4.7).
func (vm *VM) callValue(callee value.Value, argc int) error {
	switch c := callee.(type) {
	case *value.Function:
		return vm.call(c, argc)
	case *value.Native:
		args := vm.stack[len(vm.stack)-argc:]
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err)
		}
		vm.stack = vm.stack[:len(vm.stack)-argc-1]
		vm.push(result)
		return nil
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// runtimeError formats a RuntimeErr positioned at the current frame's
// instruction pointer (spec.md §4.6).
func (vm *VM) runtimeError(format string, args ...any) error {
	line := 0
	if len(vm.frames) > 0 {
		fr := &vm.frames[len(vm.frames)-1]
		line = fr.fn.Chunk.Lines[fr.ip-1]
	}
	return &RuntimeErr{Line: line, Message: fmt.Sprintf(format, args...)}
}

// run is the dispatch loop (spec.md §4.6): fetch-decode-execute over the
// current frame's chunk until an OP_RETURN unwinds the last frame or a
// runtime error aborts execution.
func (vm *VM) run() error {
	for {
		fr := &vm.frames[len(vm.frames)-1]
		code := fr.fn.Chunk.Code

		op := chunk.Opcode(code[fr.ip])
		fr.ip++

		vm.steps++
		if vm.Limits.MaxSteps > 0 && vm.steps > uint64(vm.Limits.MaxSteps) {
			return vm.runtimeError("step limit exceeded.")
		}
		if len(vm.stack) > vm.Limits.maxStack() {
			return vm.runtimeError("Stack overflow.")
		}

		switch op {
		case chunk.OpConstant:
			idx := code[fr.ip]
			fr.ip++
			vm.push(value.Value(fr.fn.Chunk.Constants[idx]))

		case chunk.OpNil:
			vm.push(value.Nil)
		case chunk.OpTrue:
			vm.push(value.True)
		case chunk.OpFalse:
			vm.push(value.False)
		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := code[fr.ip]
			fr.ip++
			vm.push(vm.stack[fr.slotBase+int(slot)])

		case chunk.OpSetLocal:
			slot := code[fr.ip]
			fr.ip++
			vm.stack[fr.slotBase+int(slot)] = vm.peek(0)

		case chunk.OpGetGlobal:
			idx := code[fr.ip]
			fr.ip++
			name := fr.fn.Chunk.Constants[idx].(*value.String)
			v, ok := vm.globals.Get(name.Bytes)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Bytes)
			}
			vm.push(v)

		case chunk.OpDefineGlobal:
			idx := code[fr.ip]
			fr.ip++
			name := fr.fn.Chunk.Constants[idx].(*value.String)
			vm.globals.Put(name.Bytes, vm.peek(0))
			vm.pop()

		case chunk.OpSetGlobal:
			idx := code[fr.ip]
			fr.ip++
			name := fr.fn.Chunk.Constants[idx].(*value.String)
			if _, ok := vm.globals.Get(name.Bytes); !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Bytes)
			}
			vm.globals.Put(name.Bytes, vm.peek(0))

		case chunk.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))

		case chunk.OpGreater, chunk.OpLess:
			if err := vm.numericCompare(op); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if err := vm.numericBinary(op); err != nil {
				return err
			}

		case chunk.OpNot:
			vm.push(value.Bool(!value.IsTruthy(vm.pop())))

		case chunk.OpNegate:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout(), vm.pop())

		case chunk.OpJump:
			offset := vm.readShort(fr)
			fr.ip += offset

		case chunk.OpJumpIfFalse:
			offset := vm.readShort(fr)
			if !value.IsTruthy(vm.peek(0)) {
				fr.ip += offset
			}

		case chunk.OpLoop:
			offset := vm.readShort(fr)
			fr.ip -= offset

		case chunk.OpCall:
			argc := int(code[fr.ip])
			fr.ip++
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}

		case chunk.OpReturn:
			result := vm.pop()
			finished := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script function itself
				return nil
			}
			vm.stack = vm.stack[:finished.slotBase]
			vm.push(result)

		default:
			return vm.runtimeError("unknown opcode %d", op)
		}
	}
}

// readShort decodes the two-byte, big-endian jump operand at fr.ip and
// advances past it (spec.md §4.5, §4.6).
func (vm *VM) readShort(fr *CallFrame) int {
	hi, lo := fr.fn.Chunk.Code[fr.ip], fr.fn.Chunk.Code[fr.ip+1]
	fr.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) numericCompare(op chunk.Opcode) error {
	b, aok := vm.peek(0).(value.Number)
	a, bok := vm.peek(1).(value.Number)
	if !aok || !bok {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	if op == chunk.OpGreater {
		vm.push(value.Bool(a > b))
	} else {
		vm.push(value.Bool(a < b))
	}
	return nil
}

func (vm *VM) numericBinary(op chunk.Opcode) error {
	b, aok := vm.peek(0).(value.Number)
	a, bok := vm.peek(1).(value.Number)
	if !aok || !bok {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case chunk.OpSubtract:
		vm.push(a - b)
	case chunk.OpMultiply:
		vm.push(a * b)
	case chunk.OpDivide:
		vm.push(a / b)
	}
	return nil
}

// add implements `+`'s dual role (spec.md §4.6): numeric addition, or
// string concatenation when both operands are strings. Mixed operand
// types are a runtime error.
func (vm *VM) add() error {
	bv, av := vm.peek(0), vm.peek(1)
	switch b := bv.(type) {
	case value.Number:
		a, ok := av.(value.Number)
		if !ok {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(a + b)
		return nil
	case *value.String:
		a, ok := av.(*value.String)
		if !ok {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(vm.interner.Intern(vm.objects, a.Bytes+b.Bytes))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}
