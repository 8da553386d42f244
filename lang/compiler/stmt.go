package compiler

import (
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/token"
)

// declaration is the top of the recursive-descent statement grammar
// (spec.md §4.5): a funDecl or varDecl, falling through to statement for
// everything else. Re-synchronizes on a compile error so one bad statement
// does not cascade into the rest of the file being unparseable.
func (p *parser) declaration() {
	switch {
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitByte(byte(chunk.OpNil))
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

// funDeclaration compiles `fun NAME(params) { body }`. The function's own
// name is declared and marked initialized in the *enclosing* scope before
// its body is compiled, so the function can recurse (spec.md §4.5
// "Function declaration").
func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(typeFunction)
	p.defineVariable(global)
}

// function compiles one function's parameter list and body in a freshly
// pushed *compiler, then emits the finished value.Function as a constant in
// the enclosing chunk (spec.md §4.5 "Function compilation").
func (p *parser) function(fnType functionType) {
	name := p.interner.Intern(p.objs, p.previous.Lexeme)
	p.pushCompiler(fnType, name)
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.cur.function.Arity++
			if p.cur.function.Arity > maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	fn := p.endCompiler()
	idx := p.cur.function.Chunk.AddConstant(fn)
	if idx < 0 {
		p.error("Too many constants in one chunk.")
		return
	}
	p.emitBytes(byte(chunk.OpConstant), byte(idx))
}

// statement dispatches the non-declaration statement forms (spec.md §4.5).
func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	p.emitByte(byte(chunk.OpPrint))
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	p.emitByte(byte(chunk.OpPop))
}

func (p *parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

// ifStatement compiles the then/else branches using two back-patched jumps:
// one to skip the then-branch when the condition is false, one for the
// then-branch to skip over the else-branch (spec.md §4.5).
func (p *parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitByte(byte(chunk.OpPop))
	p.statement()

	elseJump := p.emitJump(chunk.OpJump)
	p.patchJump(thenJump)
	p.emitByte(byte(chunk.OpPop))

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.cur.function.Chunk.Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitByte(byte(chunk.OpPop))
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitByte(byte(chunk.OpPop))
}

// forStatement desugars entirely to while-loop bytecode (spec.md §4.5): no
// dedicated loop opcodes exist, only the initializer/condition/increment
// scaffolding built out of jumps around a while-shaped body.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.cur.function.Chunk.Code)
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = p.emitJump(chunk.OpJumpIfFalse)
		p.emitByte(byte(chunk.OpPop))
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(chunk.OpJump)
		incrementStart := len(p.cur.function.Chunk.Code)
		p.expression()
		p.emitByte(byte(chunk.OpPop))
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitByte(byte(chunk.OpPop))
	}

	p.endScope()
}

// returnStatement compiles `return;` (implicit nil) and `return EXPR;`.
// Any return statement in the synthetic top-level script function, with or
// without a value, is a compile error (spec.md §4.5, §7).
func (p *parser) returnStatement() {
	if p.cur.fnType == typeScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(token.SEMICOLON) {
		p.emitByte(byte(chunk.OpNil))
		p.emitByte(byte(chunk.OpReturn))
		return
	}
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	p.emitByte(byte(chunk.OpReturn))
}
