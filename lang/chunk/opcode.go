package chunk

// Opcode is a single one-byte bytecode instruction (spec.md §4.5). It lives
// in the chunk package, rather than lang/compiler, because Chunk.Disassemble
// needs to name opcodes and lang/compiler already depends on lang/chunk for
// the Chunk type itself — putting Opcode here keeps the dependency one-way,
// the same role chunk.h plays for OpCode in the design this package is
// modeled on.
type Opcode uint8

//nolint:revive
const (
	OpConstant Opcode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpReturn
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpReturn:       "OP_RETURN",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "OP_UNKNOWN"
}

// byteOperand reports whether op is followed by a single-byte operand (a
// constant-pool/local-slot/global-name/arg-count index).
func byteOperand(op Opcode) bool {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpCall:
		return true
	default:
		return false
	}
}

// shortOperand reports whether op is followed by a two-byte, big-endian
// jump-offset operand.
func shortOperand(op Opcode) bool {
	switch op {
	case OpJump, OpJumpIfFalse, OpLoop:
		return true
	default:
		return false
	}
}

func (c *Chunk) disassembleInstruction(b *fmtBuf, offset int) int {
	b.printf("%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		b.printf("   | ")
	} else {
		b.printf("%4d ", c.Lines[offset])
	}

	op := Opcode(c.Code[offset])
	switch {
	case byteOperand(op):
		operand := c.Code[offset+1]
		b.printf("%-16s %4d", op, operand)
		if op == OpConstant {
			idx := int(operand)
			if idx < len(c.Constants) {
				b.printf(" '%s'", c.Constants[idx])
			}
		}
		b.printf("\n")
		return offset + 2
	case shortOperand(op):
		hi, lo := c.Code[offset+1], c.Code[offset+2]
		jump := int(hi)<<8 | int(lo)
		target := offset + 3
		if op == OpLoop {
			target -= jump
		} else {
			target += jump
		}
		b.printf("%-16s %4d -> %d\n", op, offset, target)
		return offset + 3
	default:
		b.printf("%s\n", op)
		return offset + 1
	}
}
