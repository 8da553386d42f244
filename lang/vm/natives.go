package vm

import (
	"fmt"
	"time"

	"github.com/mna/loxvm/lang/value"
)

// DefineNative registers a host function under name, callable from Lox
// code exactly like a user-defined function (spec.md §4.7). This is the
// generalized registration hook SPEC_FULL.md §4 calls for: registerStdlib
// uses it once for clock and once for type, but it is exported so embedders
// can add their own. Registering the same name twice is a programmer error,
// not a recoverable one, so it panics rather than silently shadowing the
// earlier native (mirroring the teacher's use of panic for invariant
// violations caught at the Go call site, e.g. lang/machine.go's
// "unimplemented" cases).
func (vm *VM) DefineNative(name string, fn value.NativeFn) {
	if _, exists := vm.natives[name]; exists {
		panic(fmt.Sprintf("native %q already registered", name))
	}
	n := value.NewNative(vm.objects, name, fn)
	vm.natives[name] = n
	vm.globals.Put(name, n)
}

// registerStdlib installs every built-in native the core ships with
// (spec.md §4.7). type is a closure over vm because its result must be
// interned like any other Lox string.
func registerStdlib(vm *VM) {
	vm.DefineNative("clock", nativeClock)
	vm.DefineNative("type", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("type() takes exactly one argument")
		}
		return vm.interner.Intern(vm.objects, args[0].Type()), nil
	})
}

// nativeClock returns the number of seconds since the Unix epoch, the
// single native spec.md §4.7 mandates, used by Lox programs to measure
// elapsed time.
func nativeClock(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("clock() takes no arguments")
	}
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}
