// Package parser implements a recursive-descent, Pratt-style parser that
// turns a token stream into an *ast.Program: a precedence ladder over
// prefix/infix function tables, with snapshot-based backtracking for the
// grammar's speculative parses.
package parser

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/diag"
	"github.com/sharpts-lang/sharpts/internal/lexer"
	"github.com/sharpts-lang/sharpts/internal/token"
)

// Precedence levels, lowest to highest, following standard JS/TS operator
// precedence.
const (
	_ int = iota
	LOWEST
	COMMA
	ASSIGN
	CONDITIONAL
	NULLISH
	LOGICAL_OR
	LOGICAL_AND
	BIT_OR
	BIT_XOR
	BIT_AND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
	POSTFIX
	CALL
)

var precedences = map[token.Type]int{
	token.ASSIGN: ASSIGN, token.PLUS_EQ: ASSIGN, token.MINUS_EQ: ASSIGN,
	token.STAR_EQ: ASSIGN, token.STAR_STAR_EQ: ASSIGN, token.SLASH_EQ: ASSIGN,
	token.PERCENT_EQ: ASSIGN, token.AMP_EQ: ASSIGN, token.PIPE_EQ: ASSIGN,
	token.CARET_EQ: ASSIGN, token.SHL_EQ: ASSIGN, token.SHR_EQ: ASSIGN,
	token.USHR_EQ: ASSIGN, token.AMP_AMP_EQ: ASSIGN, token.PIPE_PIPE_EQ: ASSIGN,
	token.QUESTION_QUESTION_EQ: ASSIGN,
	token.QUESTION:             CONDITIONAL,
	token.QUESTION_QUESTION:    NULLISH,
	token.PIPE_PIPE:            LOGICAL_OR,
	token.AMP_AMP:              LOGICAL_AND,
	token.PIPE:                 BIT_OR,
	token.CARET:                BIT_XOR,
	token.AMP:                  BIT_AND,
	token.EQ:                   EQUALITY, token.NOT_EQ: EQUALITY,
	token.EQ_STRICT: EQUALITY, token.NOT_EQ_STRICT: EQUALITY,
	token.LT: RELATIONAL, token.GT: RELATIONAL, token.LT_EQ: RELATIONAL, token.GT_EQ: RELATIONAL,
	token.INSTANCEOF: RELATIONAL, token.IN: RELATIONAL, token.AS: RELATIONAL,
	token.SATISFIES: RELATIONAL,
	token.SHL:       SHIFT, token.SHR: SHIFT, token.USHR: SHIFT,
	token.PLUS: ADDITIVE, token.MINUS: ADDITIVE,
	token.STAR: MULTIPLICATIVE, token.SLASH: MULTIPLICATIVE, token.PERCENT: MULTIPLICATIVE,
	token.STAR_STAR: EXPONENT,
	token.LPAREN:    CALL, token.DOT: CALL, token.QUESTION_DOT: CALL, token.LBRACKET: CALL,
	token.BANG:              CALL,
	token.NO_SUBST_TEMPLATE: CALL, token.TEMPLATE_HEAD: CALL,
	token.PLUS_PLUS: POSTFIX, token.MINUS_MINUS: POSTFIX,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(left ast.Expression) ast.Expression

// Parser turns a token stream into an AST, buffering all tokens it has
// seen so speculative parses (arrow-function-vs-parenthesized-expression,
// type-argument-list-vs-less-than) can backtrack by resetting an index.
// A failed type-argument-list attempt, which may split `>>` tokens, also
// restores the buffered tail and rewinds the lexer to its saved State.
type Parser struct {
	lex    *lexer.Lexer
	tokens []token.Token
	pos    int

	diags *diag.Bag

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn

	decoratorMode ast.DecoratorMode
	inGenerator   bool
	inAsync       bool
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		lex:       l,
		diags:     diag.NewBag(),
		prefixFns: map[token.Type]prefixParseFn{},
		infixFns:  map[token.Type]infixParseFn{},
	}
	p.fill(1)
	p.registerPrefix()
	p.registerInfix()
	return p
}

// Diagnostics returns the accumulated parse diagnostics (lexer diagnostics
// are not included; callers should merge p.lex.Diagnostics() separately).
func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags.Items() }

// fill ensures at least n tokens are buffered beyond the current one.
func (p *Parser) fill(n int) {
	for len(p.tokens) < p.pos+n+1 {
		p.tokens = append(p.tokens, p.lex.Next())
		if p.tokens[len(p.tokens)-1].Type == token.EOF {
			break
		}
	}
}

func (p *Parser) cur() token.Token {
	p.fill(0)
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	p.fill(n)
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if p.tokens[p.pos].Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) is(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) isAny(ts ...token.Type) bool {
	c := p.cur().Type
	for _, t := range ts {
		if c == t {
			return true
		}
	}
	return false
}

func (p *Parser) accept(t token.Type) bool {
	if p.is(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t token.Type) token.Token {
	if p.is(t) {
		return p.advance()
	}
	p.errorf("expected %s but found %s", t, p.cur().Type)
	return p.cur()
}

// mark/reset implement the speculative-parse backtracking needed
// for arrow-vs-parenthesized-expression and
// type-argument-list-vs-less-than ambiguities.
func (p *Parser) mark() int { return p.pos }

func (p *Parser) reset(m int) { p.pos = m }

func (p *Parser) errorf(format string, args ...any) {
	p.diags.Errorf(p.cur().Span, format, args...)
}

func (p *Parser) precedence(t token.Type) int {
	if pr, ok := precedences[t]; ok {
		return pr
	}
	return LOWEST
}

// consumeSemicolon implements ASI: an explicit `;`, a following `}`, EOF,
// or a newline before the next token all terminate a statement.
func (p *Parser) consumeSemicolon() {
	if p.accept(token.SEMICOLON) {
		return
	}
	if p.is(token.RBRACE) || p.is(token.EOF) {
		return
	}
	if p.newlineBeforeCurrent() {
		return
	}
	p.errorf("expected ';'")
}

func (p *Parser) newlineBeforeCurrent() bool {
	if p.pos == 0 {
		return true
	}
	prevEnd := p.tokens[p.pos-1].Span.End.Line
	return p.cur().Span.Start.Line > prevEnd
}

// Parse parses the full token stream into a Program.
func (p *Parser) Parse() (*ast.Program, []diag.Diagnostic) {
	prog := &ast.Program{}
	prog.DecoratorMode = ast.DecoratorStage3

	if p.isDirectivePrologue() {
		dir := p.parseFileDirective()
		if dir.Value == "use stage2-decorators" {
			prog.DecoratorMode = ast.DecoratorStage2
		}
		prog.Statements = append(prog.Statements, dir)
	}

	for !p.is(token.EOF) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.pos == before { // guard against an infinite loop on unrecoverable input
			p.synchronize()
		}
	}
	return prog, p.diags.Items()
}

func (p *Parser) isDirectivePrologue() bool {
	return p.is(token.STRING) && (p.peek(1).Type == token.SEMICOLON || p.newlineAfterFirstStatement())
}

func (p *Parser) newlineAfterFirstStatement() bool {
	return p.peek(1).Span.Start.Line > p.cur().Span.End.Line || p.peek(1).Type == token.EOF
}

// parseFileDirective recognizes the file-level `"use stage2-decorators"`
// prologue directive, wrapped in a Directive statement so Parse can inspect
// its Value without a dedicated "file directive value" field on
// ast.FileDirective (which instead carries file-level decorators).
func (p *Parser) parseFileDirective() *ast.Directive {
	start := p.cur()
	value := p.cur().Literal.Str
	p.advance()
	p.consumeSemicolon()
	return &ast.Directive{Base: ast.NewBase(ast.SpanFromTokens(start, start)), Value: value}
}
