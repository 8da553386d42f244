// Package scanner implements the lazy, byte-by-byte lexer that turns Lox
// source text into a pull-based stream of tokens for lang/compiler.
//
// The scanning strategy (an advance/peek cursor pair, with errors surfaced
// as ERROR tokens rather than through a callback) is adapted from the
// teacher's lang/scanner package,
// simplified from its full-Unicode/File-position machinery down to the
// single-byte, single-line-counter model spec.md §4.1 calls for: Lox source
// is ASCII-oriented punctuation and keywords with opaque bytes inside string
// literals, so there is no UTF-8 decoding step on the hot path.
package scanner

import "github.com/mna/loxvm/lang/token"

// Token is a single lexical token: its kind, the exact source text it
// covers, and the 1-based source line it ends on (for a multi-line string,
// the line of its closing quote). Tokens are transient;
// Lexeme aliases the original source string and must not outlive it.
type Token struct {
	Kind   token.Token
	Lexeme string
	Line   int
}

// Scanner tokenizes a single source string on demand via ScanToken. It holds
// no error-accumulation state of its own: unexpected input surfaces as an
// ERROR token whose Lexeme is the message, leaving accumulation and
// reporting policy (panic-mode, synchronize) to the caller, exactly as
// spec.md §4.1/§7 describe.
type Scanner struct {
	src     string
	start   int // start of the token being scanned
	current int // next byte to read
	line    int
}

// New returns a Scanner ready to tokenize src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// ScanToken returns the next token in the source. Once EOF has been
// returned, every subsequent call returns EOF again.
func (s *Scanner) ScanToken() Token {
	s.skipIgnorable()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ';':
		return s.make(token.SEMICOLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		return s.make(s.choose('=', token.BANG_EQ, token.BANG))
	case '=':
		return s.make(s.choose('=', token.EQ_EQ, token.EQ))
	case '<':
		return s.make(s.choose('=', token.LT_EQ, token.LT))
	case '>':
		return s.make(s.choose('=', token.GT_EQ, token.GT))
	case '"':
		return s.string()
	}

	return s.errorf("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

// match advances and reports true only if the current byte equals want.
func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.current] != want {
		return false
	}
	s.current++
	return true
}

// choose returns yes if the current byte matches want (consuming it),
// otherwise no, without consuming anything.
func (s *Scanner) choose(want byte, yes, no token.Token) token.Token {
	if s.match(want) {
		return yes
	}
	return no
}

func (s *Scanner) skipIgnorable() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.current++
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	text := s.src[s.start:s.current]
	if kw, ok := token.Keyword(text); ok {
		return s.make(kw)
	}
	return s.make(token.IDENT)
}

func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.current++
	}
	// A trailing '.' without fractional digits is not consumed (so "1." ..
	// leaves the '.' for a following DOT/call expression, per spec.md §4.1).
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++ // consume the '.'
		for isDigit(s.peek()) {
			s.current++
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) string() Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}
	if s.atEnd() {
		return s.errorf("Unterminated string.")
	}
	s.current++ // closing quote
	return s.make(token.STRING)
}

func (s *Scanner) make(kind token.Token) Token {
	return Token{Kind: kind, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorf(msg string) Token {
	return Token{Kind: token.ERROR, Lexeme: msg, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
