package value

import "github.com/mna/loxvm/lang/chunk"

// Kind discriminates the heap-allocated Object variants (spec.md §3).
type Kind uint8

const (
	KindString Kind = iota
	KindFunction
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	default:
		return "unknown"
	}
}

// Object is the shared header every heap-allocated value embeds. Next links
// it into the VM's allocation list (spec.md §3), the only collection
// mechanism this core provides: objects are freed in bulk when the owning
// VM is torn down, never individually.
type Object struct {
	Kind Kind
	Next *Object
}

// Objects is the singly-linked allocation list rooted at a VM. It exists so
// every heap object a program's execution allocates (interned strings,
// concatenation results, function objects, natives) can be released at once
// at VM teardown, per spec.md §5 resource model; it is not a moving or
// mark-sweep collector.
type Objects struct {
	head *Object
}

// Track links obj at the head of the allocation list. Every constructor in
// this package that heap-allocates a value calls Track so the owning VM can
// account for and release it later.
func (o *Objects) Track(obj *Object) {
	obj.Next = o.head
	o.head = obj
}

// Head returns the first tracked object, or nil if none are tracked.
func (o *Objects) Head() *Object { return o.head }

// Teardown releases the VM's hold on every tracked object by unlinking the
// list, allowing the Go garbage collector to reclaim them. There is no
// per-object free step because this core allocates no unmanaged memory
// (buffers live in normal Go slices/strings), unlike the C original this
// design is modeled on.
func (o *Objects) Teardown() { o.head = nil }

// Count walks the allocation list and returns how many objects are
// currently tracked. Intended for tests and diagnostics, not the hot path.
func (o *Objects) Count() int {
	n := 0
	for p := o.head; p != nil; p = p.Next {
		n++
	}
	return n
}

// FNV1a32 computes the 32-bit FNV-1a hash of s. Precomputed once per String
// object at construction time per spec.md §3, and reused by lang/table to
// probe for an existing interned string before allocating a new one.
func FNV1a32(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// String is the heap-allocated, immutable string Object. Two live strings
// with equal Bytes are always the same pointer thanks to interning (see
// lang/table); Hash and Len are precomputed so lookups and equality never
// rescan the bytes.
type String struct {
	Object
	Bytes string
	Hash  uint32
	Len   int
}

func (s *String) String() string { return s.Bytes }
func (*String) Type() string     { return "string" }

// NewString allocates (without interning) a String object with bytes s,
// tracks it in objs, and returns it. Callers that need the interning
// invariant must go through lang/table.Interner.Intern instead of calling this
// directly.
func NewString(objs *Objects, s string) *String {
	str := &String{Object: Object{Kind: KindString}, Bytes: s, Hash: FNV1a32(s), Len: len(s)}
	objs.Track(&str.Object)
	return str
}

// Function is a first-class function value: its arity, its owned chunk of
// bytecode, and an optional name (nil denotes the synthetic top-level script
// function, per spec.md §3).
type Function struct {
	Object
	Arity int
	Chunk *chunk.Chunk
	Name  *String
}

func (fn *Function) String() string {
	if fn.Name == nil {
		return "<script>"
	}
	return "<fn " + fn.Name.Bytes + ">"
}
func (*Function) Type() string { return "function" }

// NewFunction allocates a Function object with a fresh, empty chunk and
// tracks it in objs.
func NewFunction(objs *Objects, name *String) *Function {
	fn := &Function{Object: Object{Kind: KindFunction}, Chunk: chunk.New(), Name: name}
	objs.Track(&fn.Object)
	return fn
}

// NativeFn is the signature of a host-provided function exposed to Lox code
// via Native (spec.md §4.7).
type NativeFn func(args []Value) (Value, error)

// Native wraps a host callable with no chunk of its own.
type Native struct {
	Object
	Name string
	Fn   NativeFn
}

func (*Native) String() string { return "<native fn>" }
func (*Native) Type() string   { return "native" }

// NewNative allocates a Native object and tracks it in objs.
func NewNative(objs *Objects, name string, fn NativeFn) *Native {
	n := &Native{Object: Object{Kind: KindNative}, Name: name, Fn: fn}
	objs.Track(&n.Object)
	return n
}
