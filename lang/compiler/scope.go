package compiler

import (
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
)

func (p *parser) beginScope() { p.cur.scopeDepth++ }

// endScope closes the innermost scope, popping every local declared inside
// it off the value stack at runtime (spec.md §4.5).
func (p *parser) endScope() {
	p.cur.scopeDepth--
	for p.cur.localCount > 0 && p.cur.locals[p.cur.localCount-1].depth > p.cur.scopeDepth {
		p.emitByte(byte(chunk.OpPop))
		p.cur.localCount--
	}
}

// declareVariable registers the variable named by p.previous in the current
// scope. Global variables are not "declared" this way — declareVariable is a
// no-op at scope depth 0, since globals are late-bound by name (spec.md §9
// "Globals versus locals").
func (p *parser) declareVariable() {
	if p.cur.scopeDepth == 0 {
		return
	}

	name := p.previous
	for i := p.cur.localCount - 1; i >= 0; i-- {
		l := &p.cur.locals[i]
		if l.depth != -1 && l.depth < p.cur.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name scanner.Token) {
	if p.cur.localCount == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.cur.locals[p.cur.localCount] = local{name: name, depth: -1}
	p.cur.localCount++
}

// markInitialized sets the most recently declared local's depth to the
// current scope depth, making it visible to reads. For a function
// declaration this is called before the body is compiled so the function
// can call itself (spec.md §4.5 "Function declaration").
func (p *parser) markInitialized() {
	if p.cur.scopeDepth == 0 {
		return
	}
	p.cur.locals[p.cur.localCount-1].depth = p.cur.scopeDepth
}

// resolveLocal returns the stack slot of the innermost local named name
// visible in c, or -1 if none matches (spec.md §4.5 "named_variable").
func (p *parser) resolveLocal(c *compiler, name scanner.Token) int {
	for i := c.localCount - 1; i >= 0; i-- {
		l := &c.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// parseVariable consumes an identifier, declares it as a local if inside a
// scope, and returns the constant-pool index to use for OP_DEFINE_GLOBAL if
// it turns out to be a global (spec.md §4.5 "Variable declaration").
func (p *parser) parseVariable(errMsg string) int {
	p.consume(token.IDENT, errMsg)

	p.declareVariable()
	if p.cur.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

// defineVariable finalizes a variable declaration: a local just needs its
// depth unlocked (its value is already sitting in the local's slot), a
// global is emitted as OP_DEFINE_GLOBAL (spec.md §4.5).
func (p *parser) defineVariable(global int) {
	if p.cur.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(byte(chunk.OpDefineGlobal), byte(global))
}
