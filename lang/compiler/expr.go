package compiler

import (
	"strconv"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

// Precedence levels, low to high (spec.md §4.5).
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // ()
	precPrimary
)

// parseFn is a Pratt parselet: a prefix or infix handler for one token
// kind. canAssign is "the caller's minimum precedence is <= Assignment",
// threaded through so only identifier parselets ever consume a trailing
// `=` (spec.md §9).
type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// rules is the Pratt table: for every token kind, its prefix parselet (if
// it can start an expression), its infix parselet (if it can continue one)
// and the precedence used to decide whether to keep parsing as infix
// (spec.md §4.5).
var rules map[token.Token]parseRule

func init() {
	rules = map[token.Token]parseRule{
		token.LPAREN:    {prefix: grouping, infix: call, prec: precCall},
		token.MINUS:     {prefix: unary, infix: binary, prec: precTerm},
		token.PLUS:      {infix: binary, prec: precTerm},
		token.SLASH:     {infix: binary, prec: precFactor},
		token.STAR:      {infix: binary, prec: precFactor},
		token.BANG:      {prefix: unary},
		token.BANG_EQ:   {infix: binary, prec: precEquality},
		token.EQ_EQ:     {infix: binary, prec: precEquality},
		token.GT:        {infix: binary, prec: precComparison},
		token.GT_EQ:     {infix: binary, prec: precComparison},
		token.LT:        {infix: binary, prec: precComparison},
		token.LT_EQ:     {infix: binary, prec: precComparison},
		token.IDENT:     {prefix: variable},
		token.STRING:    {prefix: stringLit},
		token.NUMBER:    {prefix: number},
		token.AND:       {infix: and_, prec: precAnd},
		token.OR:        {infix: or_, prec: precOr},
		token.FALSE:     {prefix: literal},
		token.NIL:       {prefix: literal},
		token.TRUE:      {prefix: literal},
	}
}

func ruleFor(k token.Token) parseRule { return rules[k] }

// expression parses a full expression at the lowest (Assignment)
// precedence.
func (p *parser) expression() { p.parsePrecedence(precAssignment) }

// parsePrecedence is the Pratt engine described in spec.md §4.5: advance
// and run the prefix parselet for p.previous, then keep folding in infix
// operators whose precedence is at least minPrec. After the loop, a
// leftover `=` with canAssign set means the parsed expression was not a
// valid assignment target.
func (p *parser) parsePrecedence(minPrec precedence) {
	p.advance()
	prefix := ruleFor(p.previous.Kind).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := minPrec <= precAssignment
	prefix(p, canAssign)

	for minPrec <= ruleFor(p.current.Kind).prec {
		p.advance()
		infix := ruleFor(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func number(p *parser, _ bool) {
	f, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(f))
}

func stringLit(p *parser, _ bool) {
	raw := p.previous.Lexeme
	s := p.interner.Intern(p.objs, raw[1:len(raw)-1]) // strip surrounding quotes
	p.emitConstant(s)
}

func literal(p *parser, _ bool) {
	switch p.previous.Kind {
	case token.FALSE:
		p.emitByte(byte(chunk.OpFalse))
	case token.TRUE:
		p.emitByte(byte(chunk.OpTrue))
	case token.NIL:
		p.emitByte(byte(chunk.OpNil))
	}
}

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(p *parser, _ bool) {
	op := p.previous.Kind
	p.parsePrecedence(precUnary)
	switch op {
	case token.BANG:
		p.emitByte(byte(chunk.OpNot))
	case token.MINUS:
		p.emitByte(byte(chunk.OpNegate))
	}
}

// binary compiles the already-parsed left operand's matching right operand
// at one precedence level higher (so `+`/`-` etc. are left-associative) and
// emits the operator, or a two-opcode sequence for !=, <= and >= (spec.md
// §4.5).
func binary(p *parser, _ bool) {
	op := p.previous.Kind
	rule := ruleFor(op)
	p.parsePrecedence(rule.prec + 1)

	switch op {
	case token.BANG_EQ:
		p.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.EQ_EQ:
		p.emitByte(byte(chunk.OpEqual))
	case token.GT:
		p.emitByte(byte(chunk.OpGreater))
	case token.GT_EQ:
		p.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.LT:
		p.emitByte(byte(chunk.OpLess))
	case token.LT_EQ:
		p.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	case token.PLUS:
		p.emitByte(byte(chunk.OpAdd))
	case token.MINUS:
		p.emitByte(byte(chunk.OpSubtract))
	case token.STAR:
		p.emitByte(byte(chunk.OpMultiply))
	case token.SLASH:
		p.emitByte(byte(chunk.OpDivide))
	}
}

// and_ implements short-circuiting: if the left operand is falsey, skip the
// right operand entirely, leaving the falsey value as the result (spec.md
// §4.5).
func and_(p *parser, _ bool) {
	endJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitByte(byte(chunk.OpPop))
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

// or_ implements short-circuiting the other way: if the left operand is
// truthy, skip the right operand (spec.md §4.5).
func or_(p *parser, _ bool) {
	elseJump := p.emitJump(chunk.OpJumpIfFalse)
	endJump := p.emitJump(chunk.OpJump)

	p.patchJump(elseJump)
	p.emitByte(byte(chunk.OpPop))

	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

// variable resolves an identifier to a local slot or a global name and,
// when canAssign and a trailing `=` follows, compiles an assignment instead
// of a read (spec.md §4.5 "named_variable").
func variable(p *parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *parser) namedVariable(name scanner.Token, canAssign bool) {
	var getOp, setOp chunk.Opcode
	arg := p.resolveLocal(p.cur, name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = p.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitBytes(byte(setOp), byte(arg))
	} else {
		p.emitBytes(byte(getOp), byte(arg))
	}
}

// call compiles a call expression's argument list and emits OP_CALL with
// the argument count (spec.md §4.5).
func call(p *parser, _ bool) {
	argc := p.argumentList()
	p.emitBytes(byte(chunk.OpCall), byte(argc))
}

func (p *parser) argumentList() int {
	argc := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argc == maxArgs {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return argc
}
