package parser

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/token"
)

func (p *Parser) registerPrefix() {
	p.prefixFns[token.NUMBER] = p.parseNumberLiteral
	p.prefixFns[token.BIGINT] = p.parseBigIntLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.TRUE] = p.parseBoolLiteral
	p.prefixFns[token.FALSE] = p.parseBoolLiteral
	p.prefixFns[token.NULL] = p.parseNullLiteral
	p.prefixFns[token.IDENT] = p.parseIdentifierOrArrow
	p.prefixFns[token.ASYNC] = p.parseAsyncPrefixed
	p.prefixFns[token.YIELD] = p.parseYield
	p.prefixFns[token.AWAIT] = p.parseAwait
	p.prefixFns[token.THIS] = p.parseThis
	p.prefixFns[token.SUPER] = p.parseSuper
	p.prefixFns[token.NEW] = p.parseNew
	p.prefixFns[token.LPAREN] = p.parseGroupingOrArrow
	p.prefixFns[token.LBRACKET] = p.parseArrayLiteral
	p.prefixFns[token.LBRACE] = p.parseObjectLiteral
	p.prefixFns[token.FUNCTION] = p.parseFunctionExpression
	p.prefixFns[token.CLASS] = p.parseClassExpression
	p.prefixFns[token.NO_SUBST_TEMPLATE] = p.parseTemplateLiteral
	p.prefixFns[token.TEMPLATE_HEAD] = p.parseTemplateLiteral
	p.prefixFns[token.REGEX] = p.parseRegexLiteral
	p.prefixFns[token.MINUS] = p.parseUnary
	p.prefixFns[token.PLUS] = p.parseUnary
	p.prefixFns[token.BANG] = p.parseUnary
	p.prefixFns[token.TILDE] = p.parseUnary
	p.prefixFns[token.TYPEOF] = p.parseUnary
	p.prefixFns[token.VOID] = p.parseUnary
	p.prefixFns[token.DELETE] = p.parseDelete
	p.prefixFns[token.PLUS_PLUS] = p.parsePrefixIncrement
	p.prefixFns[token.MINUS_MINUS] = p.parsePrefixIncrement
	p.prefixFns[token.LT] = p.parseAngleBracketTypeAssertion
	p.prefixFns[token.IMPORT] = p.parseImportExpression
}

func (p *Parser) registerInfix() {
	p.infixFns[token.PLUS] = p.parseBinary
	p.infixFns[token.MINUS] = p.parseBinary
	p.infixFns[token.STAR] = p.parseBinary
	p.infixFns[token.SLASH] = p.parseBinary
	p.infixFns[token.PERCENT] = p.parseBinary
	p.infixFns[token.STAR_STAR] = p.parseBinary
	p.infixFns[token.EQ] = p.parseBinary
	p.infixFns[token.NOT_EQ] = p.parseBinary
	p.infixFns[token.EQ_STRICT] = p.parseBinary
	p.infixFns[token.NOT_EQ_STRICT] = p.parseBinary
	p.infixFns[token.LT] = p.parseLessThanOrTypeArgs
	p.infixFns[token.GT] = p.parseBinary
	p.infixFns[token.LT_EQ] = p.parseBinary
	p.infixFns[token.GT_EQ] = p.parseBinary
	p.infixFns[token.AMP] = p.parseBinary
	p.infixFns[token.PIPE] = p.parseBinary
	p.infixFns[token.CARET] = p.parseBinary
	p.infixFns[token.SHL] = p.parseBinary
	p.infixFns[token.SHR] = p.parseBinary
	p.infixFns[token.USHR] = p.parseBinary
	p.infixFns[token.IN] = p.parseBinary
	p.infixFns[token.INSTANCEOF] = p.parseBinary
	p.infixFns[token.AMP_AMP] = p.parseLogical
	p.infixFns[token.PIPE_PIPE] = p.parseLogical
	p.infixFns[token.QUESTION_QUESTION] = p.parseNullish
	p.infixFns[token.QUESTION] = p.parseTernary
	p.infixFns[token.AS] = p.parseAs
	p.infixFns[token.SATISFIES] = p.parseSatisfiesExpr
	p.infixFns[token.ASSIGN] = p.parseAssign
	p.infixFns[token.PLUS_EQ] = p.parseCompoundAssign
	p.infixFns[token.MINUS_EQ] = p.parseCompoundAssign
	p.infixFns[token.STAR_EQ] = p.parseCompoundAssign
	p.infixFns[token.STAR_STAR_EQ] = p.parseCompoundAssign
	p.infixFns[token.SLASH_EQ] = p.parseCompoundAssign
	p.infixFns[token.PERCENT_EQ] = p.parseCompoundAssign
	p.infixFns[token.AMP_EQ] = p.parseCompoundAssign
	p.infixFns[token.PIPE_EQ] = p.parseCompoundAssign
	p.infixFns[token.CARET_EQ] = p.parseCompoundAssign
	p.infixFns[token.SHL_EQ] = p.parseCompoundAssign
	p.infixFns[token.SHR_EQ] = p.parseCompoundAssign
	p.infixFns[token.USHR_EQ] = p.parseCompoundAssign
	p.infixFns[token.AMP_AMP_EQ] = p.parseLogicalAssign
	p.infixFns[token.PIPE_PIPE_EQ] = p.parseLogicalAssign
	p.infixFns[token.QUESTION_QUESTION_EQ] = p.parseLogicalAssign
	p.infixFns[token.LPAREN] = p.parseCall
	p.infixFns[token.DOT] = p.parseGet
	p.infixFns[token.QUESTION_DOT] = p.parseGet
	p.infixFns[token.LBRACKET] = p.parseGetIndex
	p.infixFns[token.BANG] = p.parseNonNullAssertion
	p.infixFns[token.PLUS_PLUS] = p.parsePostfixIncrement
	p.infixFns[token.MINUS_MINUS] = p.parsePostfixIncrement
	p.infixFns[token.NO_SUBST_TEMPLATE] = p.parseTaggedTemplate
	p.infixFns[token.TEMPLATE_HEAD] = p.parseTaggedTemplate
}

// parseExpression is the Pratt-parsing entry point, consuming tokens while
// the next operator's precedence is higher than minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	fn, ok := p.prefixFns[p.cur().Type]
	if !ok {
		p.errorf("unexpected token %s in expression", p.cur().Type)
		p.advance()
		return &ast.Literal{Base: ast.NewBase(p.cur().Span), Kind: ast.LitUndefined}
	}
	left := fn()

	for !p.is(token.SEMICOLON) && minPrec < p.precedence(p.cur().Type) {
		infix, ok := p.infixFns[p.cur().Type]
		if !ok {
			break
		}
		// `!` is infix only as non-null assertion; a newline before it
		// ends the previous statement rather than chaining an assertion.
		if p.is(token.BANG) && p.newlineBeforeCurrent() {
			break
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseAssignmentExpression() ast.Expression {
	return p.parseExpression(LOWEST)
}

// parseCommaExpression parses `a, b, c` as a left-associative Sequence of
// expressions represented with nested Grouping; used only
// where the comma operator itself (not an argument/element list) applies.
func (p *Parser) parseCommaExpression() ast.Expression {
	expr := p.parseAssignmentExpression()
	for p.accept(token.COMMA) {
		right := p.parseAssignmentExpression()
		expr = &ast.Binary{Base: ast.NewBase(ast.SpanFromTokens(p.tokens[0], p.cur())), Op: ast.BinAdd, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	t := p.advance()
	return &ast.Literal{Base: ast.NewBase(t.Span), Kind: ast.LitNumber, Number: t.Literal.Number}
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	t := p.advance()
	return &ast.Literal{Base: ast.NewBase(t.Span), Kind: ast.LitBigInt, BigInt: t.Literal.BigInt}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	t := p.advance()
	return &ast.Literal{Base: ast.NewBase(t.Span), Kind: ast.LitString, Str: t.Literal.Str}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	t := p.advance()
	return &ast.Literal{Base: ast.NewBase(t.Span), Kind: ast.LitBoolean, Boolean: t.Type == token.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	t := p.advance()
	return &ast.Literal{Base: ast.NewBase(t.Span), Kind: ast.LitNull}
}

func (p *Parser) parseThis() ast.Expression {
	t := p.advance()
	return &ast.This{Base: ast.NewBase(t.Span)}
}

func (p *Parser) parseSuper() ast.Expression {
	t := p.advance()
	kind := ast.SuperMethodBound
	if p.is(token.LPAREN) {
		kind = ast.SuperConstructorCall
	}
	return &ast.Super{Base: ast.NewBase(t.Span), Kind: kind}
}

func (p *Parser) parseRegexLiteral() ast.Expression {
	t := p.advance()
	return &ast.RegexLiteral{Base: ast.NewBase(t.Span), Pattern: t.Literal.RegexBody, Flags: t.Literal.RegexFlags}
}

func (p *Parser) parseIdentifierOrArrow() ast.Expression {
	// `ident =>` is a single-parameter arrow function.
	if p.peek(1).Type == token.ARROW {
		name := p.advance()
		p.advance() // consume =>
		return p.finishArrowFunction(nil, []ast.Param{{Base: ast.NewBase(name.Span), Name: name.Lexeme}}, nil, false)
	}
	t := p.advance()
	return &ast.Variable{Base: ast.NewBase(t.Span), Name: &ast.Identifier{Base: ast.NewBase(t.Span), Name: t.Lexeme}}
}

func (p *Parser) parseAsyncPrefixed() ast.Expression {
	// `async` is contextual: `async function`, `async (params) =>`,
	// `async ident =>`, or a bare identifier named `async`.
	if p.peek(1).Type == token.FUNCTION {
		p.advance()
		return p.parseFunctionExpressionAsync(true)
	}
	if p.peek(1).Type == token.LPAREN {
		save := p.mark()
		p.advance()
		if expr, ok := p.tryParseArrowFunction(true); ok {
			return expr
		}
		p.reset(save)
	}
	if p.peek(1).Type == token.IDENT && p.peek(2).Type == token.ARROW {
		p.advance()
		name := p.advance()
		p.advance()
		arrow := p.finishArrowFunction(nil, []ast.Param{{Base: ast.NewBase(name.Span), Name: name.Lexeme}}, nil, false)
		arrow.(*ast.ArrowFunction).Flags.IsAsync = true
		return arrow
	}
	return p.parseIdentifierOrArrow()
}

func (p *Parser) parseYield() ast.Expression {
	start := p.advance()
	delegate := p.accept(token.STAR)
	var expr ast.Expression
	if !p.isAny(token.SEMICOLON, token.RPAREN, token.RBRACE, token.RBRACKET, token.COMMA, token.EOF) && !p.newlineBeforeCurrent() {
		expr = p.parseAssignmentExpression()
	}
	return &ast.Yield{Base: ast.NewBase(ast.SpanFromTokens(start, p.tokens[p.pos-1])), Expr: expr, Delegate: delegate}
}

func (p *Parser) parseAwait() ast.Expression {
	start := p.advance()
	expr := p.parseExpression(UNARY)
	return &ast.Await{Base: ast.NewBase(ast.SpanFromTokens(start, p.tokens[p.pos-1])), Expr: expr}
}

func (p *Parser) parseDelete() ast.Expression {
	start := p.advance()
	expr := p.parseExpression(UNARY)
	return &ast.Delete{Base: ast.NewBase(ast.SpanFromTokens(start, p.tokens[p.pos-1])), Expr: expr}
}

var unaryOps = map[token.Type]ast.UnaryOp{
	token.PLUS: ast.UnaryPlus, token.MINUS: ast.UnaryMinus, token.BANG: ast.UnaryNot,
	token.TILDE: ast.UnaryBitwiseNot, token.TYPEOF: ast.UnaryTypeof, token.VOID: ast.UnaryVoid,
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.advance()
	operand := p.parseExpression(UNARY)
	return &ast.Unary{Base: ast.NewBase(ast.SpanFromTokens(start, p.tokens[p.pos-1])), Op: unaryOps[start.Type], Operand: operand}
}

func (p *Parser) parsePrefixIncrement() ast.Expression {
	start := p.advance()
	operand := p.parseExpression(UNARY)
	return &ast.PrefixIncrement{Base: ast.NewBase(ast.SpanFromTokens(start, p.tokens[p.pos-1])), Decrement: start.Type == token.MINUS_MINUS, Operand: operand}
}

func (p *Parser) parsePostfixIncrement(left ast.Expression) ast.Expression {
	t := p.advance()
	return &ast.PostfixIncrement{Base: ast.NewBase(ast.Span2(left.Span(), t.Span)), Decrement: t.Type == token.MINUS_MINUS, Operand: left}
}

func (p *Parser) parseNonNullAssertion(left ast.Expression) ast.Expression {
	t := p.advance()
	return &ast.NonNullAssertion{Base: ast.NewBase(ast.Span2(left.Span(), t.Span)), Expr: left}
}

var binaryOps = map[token.Type]ast.BinaryOp{
	token.PLUS: ast.BinAdd, token.MINUS: ast.BinSub, token.STAR: ast.BinMul, token.SLASH: ast.BinDiv,
	token.PERCENT: ast.BinMod, token.STAR_STAR: ast.BinPow,
	token.EQ: ast.BinEq, token.NOT_EQ: ast.BinNotEq, token.EQ_STRICT: ast.BinStrictEq, token.NOT_EQ_STRICT: ast.BinStrictNotEq,
	token.LT: ast.BinLt, token.GT: ast.BinGt, token.LT_EQ: ast.BinLtEq, token.GT_EQ: ast.BinGtEq,
	token.AMP: ast.BinBitAnd, token.PIPE: ast.BinBitOr, token.CARET: ast.BinBitXor,
	token.SHL: ast.BinShl, token.SHR: ast.BinShr, token.USHR: ast.BinUShr,
	token.IN: ast.BinIn, token.INSTANCEOF: ast.BinInstanceof,
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	opTok := p.advance()
	prec := p.precedence(opTok.Type)
	// ** is right-associative.
	if opTok.Type == token.STAR_STAR {
		prec--
	}
	right := p.parseExpression(prec)
	return &ast.Binary{Base: ast.NewBase(ast.Span2(left.Span(), right.Span())), Op: binaryOps[opTok.Type], Left: left, Right: right}
}

func (p *Parser) parseLogical(left ast.Expression) ast.Expression {
	opTok := p.advance()
	op := ast.LogicalAnd
	if opTok.Type == token.PIPE_PIPE {
		op = ast.LogicalOr
	}
	right := p.parseExpression(p.precedence(opTok.Type))
	return &ast.Logical{Base: ast.NewBase(ast.Span2(left.Span(), right.Span())), Op: op, Left: left, Right: right}
}

func (p *Parser) parseNullish(left ast.Expression) ast.Expression {
	p.advance()
	right := p.parseExpression(NULLISH)
	return &ast.NullishCoalescing{Base: ast.NewBase(ast.Span2(left.Span(), right.Span())), Left: left, Right: right}
}

func (p *Parser) parseTernary(left ast.Expression) ast.Expression {
	p.advance()
	then := p.parseAssignmentExpression()
	p.expect(token.COLON)
	els := p.parseExpression(ASSIGN)
	return &ast.Ternary{Base: ast.NewBase(ast.Span2(left.Span(), els.Span())), Cond: left, Then: then, Else: els}
}

func (p *Parser) parseAssign(left ast.Expression) ast.Expression {
	p.advance()
	value := p.parseExpression(ASSIGN - 1)
	return &ast.Assign{Base: ast.NewBase(ast.Span2(left.Span(), value.Span())), Target: left, Value: value}
}

var compoundOps = map[token.Type]ast.CompoundAssignOp{
	token.PLUS_EQ: ast.CompoundAdd, token.MINUS_EQ: ast.CompoundSub, token.STAR_EQ: ast.CompoundMul,
	token.STAR_STAR_EQ: ast.CompoundPow, token.SLASH_EQ: ast.CompoundDiv, token.PERCENT_EQ: ast.CompoundMod,
	token.AMP_EQ: ast.CompoundBitAnd, token.PIPE_EQ: ast.CompoundBitOr, token.CARET_EQ: ast.CompoundBitXor,
	token.SHL_EQ: ast.CompoundShl, token.SHR_EQ: ast.CompoundShr, token.USHR_EQ: ast.CompoundUShr,
}

func (p *Parser) parseCompoundAssign(left ast.Expression) ast.Expression {
	opTok := p.advance()
	value := p.parseExpression(ASSIGN - 1)
	return &ast.CompoundAssign{Base: ast.NewBase(ast.Span2(left.Span(), value.Span())), Op: compoundOps[opTok.Type], Target: left, Value: value}
}

var logicalAssignOps = map[token.Type]ast.LogicalAssignOp{
	token.AMP_AMP_EQ: ast.LogicalAssignAnd, token.PIPE_PIPE_EQ: ast.LogicalAssignOr,
	token.QUESTION_QUESTION_EQ: ast.LogicalAssignNullish,
}

func (p *Parser) parseLogicalAssign(left ast.Expression) ast.Expression {
	opTok := p.advance()
	value := p.parseExpression(ASSIGN - 1)
	return &ast.LogicalAssign{Base: ast.NewBase(ast.Span2(left.Span(), value.Span())), Op: logicalAssignOps[opTok.Type], Target: left, Value: value}
}

func (p *Parser) parseAs(left ast.Expression) ast.Expression {
	p.advance()
	if p.is(token.CONST) {
		t := p.advance()
		return &ast.TypeAssertion{Base: ast.NewBase(ast.Span2(left.Span(), t.Span)), Expr: left, Const: true}
	}
	typ := p.parseType()
	return &ast.TypeAssertion{Base: ast.NewBase(ast.Span2(left.Span(), typ.Span())), Expr: left, Type: typ}
}

func (p *Parser) parseSatisfiesExpr(left ast.Expression) ast.Expression {
	p.advance()
	typ := p.parseType()
	return &ast.Satisfies{Base: ast.NewBase(ast.Span2(left.Span(), typ.Span())), Expr: left, Type: typ}
}

// parseLessThanOrTypeArgs disambiguates `f<A, B>(x)` (a call with
// explicit type arguments) from relational `f < A`: after the `<`, a
// type-argument list is attempted speculatively, and only when it closes
// cleanly and is immediately followed by `(` is the call interpretation
// taken. Anything else backtracks (tokens and diagnostics both) and
// re-parses the `<` as an ordinary comparison.
func (p *Parser) parseLessThanOrTypeArgs(left ast.Expression) ast.Expression {
	save := p.mark()
	diagMark := p.diags.Len()
	// closeAngle may split a `>>`/`>=` token in place while the list is
	// being attempted, so the buffered tail must be restored wholesale on
	// backtrack, not just the position index.
	savedTail := append([]token.Token(nil), p.tokens[save:]...)
	lexState := p.lex.Save()
	p.advance() // consume <
	typeArgs, ok := p.tryParseTypeArgumentList()
	if ok && p.diags.Len() == diagMark && p.is(token.LPAREN) {
		p.advance()
		args := p.parseArgumentList()
		end := p.expect(token.RPAREN)
		return &ast.Call{Base: ast.NewBase(ast.Span2(left.Span(), end.Span)), Callee: left, TypeArgs: typeArgs, Args: args}
	}
	p.tokens = append(p.tokens[:save], savedTail...)
	p.lex.Restore(lexState)
	p.reset(save)
	p.diags.TruncateTo(diagMark)
	return p.parseBinary(left)
}

func (p *Parser) parseCall(left ast.Expression) ast.Expression {
	p.advance()
	args := p.parseArgumentList()
	end := p.expect(token.RPAREN)
	return &ast.Call{Base: ast.NewBase(ast.Span2(left.Span(), end.Span)), Callee: left, Args: args}
}

func (p *Parser) parseArgumentList() []ast.Expression {
	var args []ast.Expression
	for !p.is(token.RPAREN) && !p.is(token.EOF) {
		if p.accept(token.ELLIPSIS) {
			e := p.parseAssignmentExpression()
			args = append(args, &ast.Spread{Base: ast.NewBase(e.Span()), Expr: e})
		} else {
			args = append(args, p.parseAssignmentExpression())
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	return args
}

func (p *Parser) parseGet(left ast.Expression) ast.Expression {
	opTok := p.advance()
	optional := opTok.Type == token.QUESTION_DOT
	if p.is(token.PRIVATE_IDENT) {
		name := p.advance()
		id := &ast.Identifier{Base: ast.NewBase(name.Span), Name: name.Lexeme}
		if p.is(token.LPAREN) {
			p.advance()
			args := p.parseArgumentList()
			end := p.expect(token.RPAREN)
			return &ast.CallPrivate{Base: ast.NewBase(ast.Span2(left.Span(), end.Span)), Object: left, Name: id, Args: args}
		}
		return &ast.GetPrivate{Base: ast.NewBase(ast.Span2(left.Span(), name.Span)), Object: left, Name: id}
	}
	var name token.Token
	if p.cur().Type.IsKeyword() {
		name = p.advance() // allow keywords as property names
	} else if name = p.expect(token.IDENT); name.Type != token.IDENT {
		name = p.advance()
	}
	id := &ast.Identifier{Base: ast.NewBase(name.Span), Name: name.Lexeme}
	return &ast.Get{Base: ast.NewBase(ast.Span2(left.Span(), name.Span)), Object: left, Name: id, Optional: optional}
}

func (p *Parser) parseGetIndex(left ast.Expression) ast.Expression {
	p.advance()
	index := p.parseAssignmentExpression()
	end := p.expect(token.RBRACKET)
	return &ast.GetIndex{Base: ast.NewBase(ast.Span2(left.Span(), end.Span)), Object: left, Index: index}
}

func (p *Parser) parseNew() ast.Expression {
	start := p.advance()
	if p.is(token.DOT) { // new.target
		p.advance()
		p.expect(token.IDENT)
		return &ast.Variable{Base: ast.NewBase(start.Span), Name: &ast.Identifier{Base: ast.NewBase(start.Span), Name: "new.target"}}
	}
	callee := p.parseExpression(CALL)
	var args []ast.Expression
	end := callee.Span()
	if call, ok := callee.(*ast.Call); ok {
		return &ast.New{Base: ast.NewBase(ast.Span2(start.Span, call.Span())), Callee: call.Callee, Args: call.Args}
	}
	if p.accept(token.LPAREN) {
		args = p.parseArgumentList()
		endTok := p.expect(token.RPAREN)
		end = endTok.Span
	}
	return &ast.New{Base: ast.NewBase(ast.Span2(start.Span, end)), Callee: callee, Args: args}
}

func (p *Parser) parseImportExpression() ast.Expression {
	start := p.advance()
	if p.is(token.DOT) { // import.meta
		p.advance()
		end := p.expect(token.IDENT)
		return &ast.ImportMeta{Base: ast.NewBase(ast.Span2(start.Span, end.Span))}
	}
	p.expect(token.LPAREN)
	spec := p.parseAssignmentExpression()
	end := p.expect(token.RPAREN)
	return &ast.DynamicImport{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Specifier: spec}
}

func (p *Parser) parseGroupingOrArrow() ast.Expression {
	save := p.mark()
	p.advance() // consume (
	if expr, ok := p.tryParseArrowFunction(false); ok {
		return expr
	}
	p.reset(save)

	start := p.advance()
	inner := p.parseCommaExpression()
	end := p.expect(token.RPAREN)
	return &ast.Grouping{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Inner: inner}
}

// tryParseArrowFunction speculatively parses `(params) => body` starting
// just after the consumed '(' (isAsync indicates `async (` was seen).
// It reports ok=false without side effects the caller needs to undo (the
// caller always calls p.reset on failure)
// arrow-vs-parenthesized-expression disambiguation.
func (p *Parser) tryParseArrowFunction(isAsync bool) (ast.Expression, bool) {
	params, ok := p.tryParseParamList()
	if !ok {
		return nil, false
	}
	var retType ast.TypeExpression
	if p.accept(token.COLON) {
		retType = p.parseType()
	}
	if !p.is(token.ARROW) {
		return nil, false
	}
	p.advance()
	arrow := p.finishArrowFunction(nil, params, retType, false)
	arrow.(*ast.ArrowFunction).Flags.IsAsync = isAsync
	return arrow, true
}

// tryParseParamList parses a `)`-terminated parameter list (the opening
// '(' has already been consumed), returning ok=false on any parse error so
// the caller can treat the whole thing as a parenthesized expression
// instead.
func (p *Parser) tryParseParamList() ([]ast.Param, bool) {
	var params []ast.Param
	for !p.is(token.RPAREN) {
		if !p.isAny(token.IDENT, token.ELLIPSIS, token.LBRACE, token.LBRACKET,
			token.PUBLIC, token.PROTECTED, token.PRIVATE, token.READONLY, token.AT) {
			return nil, false
		}
		mods := ast.ParamModifiers{}
		mods.Decorators = p.parseDecorators()
		for {
			switch {
			case p.accept(token.PUBLIC):
				mods.Visibility = ast.VisibilityPublic
				mods.IsParameterProperty = true
			case p.accept(token.PROTECTED):
				mods.Visibility = ast.VisibilityProtected
				mods.IsParameterProperty = true
			case p.accept(token.PRIVATE):
				mods.Visibility = ast.VisibilityPrivate
				mods.IsParameterProperty = true
			case p.accept(token.READONLY):
				mods.Readonly = true
				mods.IsParameterProperty = true
			default:
				goto modifiersDone
			}
		}
	modifiersDone:
		if p.accept(token.ELLIPSIS) {
			mods.Rest = true
		}
		var pattern ast.Expression
		var name string
		nameTok := p.cur()
		if p.isAny(token.LBRACE, token.LBRACKET) {
			pattern = p.parseDestructuringPattern()
		} else {
			if nameTok.Type != token.IDENT {
				return nil, false
			}
			p.advance()
			name = nameTok.Lexeme
		}
		if p.accept(token.QUESTION) {
			mods.Optional = true
		}
		var typ ast.TypeExpression
		if p.accept(token.COLON) {
			typ = p.parseType()
		}
		var def ast.Expression
		if p.accept(token.ASSIGN) {
			mods.HasDefault = true
			def = p.parseAssignmentExpression()
		}
		params = append(params, ast.Param{Base: ast.NewBase(nameTok.Span), Name: name, Pattern: pattern, Type: typ, Default: def, Modifiers: mods})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if !p.accept(token.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) finishArrowFunction(typeParams []ast.TypeParam, params []ast.Param, retType ast.TypeExpression, isGen bool) ast.Expression {
	start := p.tokens[0]
	if len(params) > 0 {
		start = token.Token{Span: params[0].Span()}
	}
	var body ast.Node
	if p.is(token.LBRACE) {
		body = p.parseBlock()
	} else {
		body = p.parseAssignmentExpression()
	}
	return &ast.ArrowFunction{
		Base:       ast.NewBase(ast.Span2(start.Span, body.Span())),
		TypeParams: typeParams,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Flags:      ast.ArrowFunctionFlags{IsGenerator: isGen},
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.advance()
	var elems []ast.ArrayElement
	for !p.is(token.RBRACKET) && !p.is(token.EOF) {
		if p.is(token.COMMA) {
			elems = append(elems, ast.ArrayElement{})
			p.advance()
			continue
		}
		if p.accept(token.ELLIPSIS) {
			e := p.parseAssignmentExpression()
			elems = append(elems, ast.ArrayElement{Expr: &ast.Spread{Base: ast.NewBase(e.Span()), Expr: e}})
		} else {
			elems = append(elems, ast.ArrayElement{Expr: p.parseAssignmentExpression()})
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACKET)
	return &ast.ArrayLiteral{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.advance()
	var props []ast.ObjectProperty
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		props = append(props, p.parseObjectProperty())
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACE)
	return &ast.ObjectLiteral{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Properties: props, Fresh: true}
}

func (p *Parser) parseObjectProperty() ast.ObjectProperty {
	start := p.cur()
	if p.accept(token.ELLIPSIS) {
		e := p.parseAssignmentExpression()
		return ast.ObjectProperty{Base: ast.NewBase(ast.Span2(start.Span, e.Span())), IsSpread: true, Value: e}
	}
	isGet := p.is(token.GET) && p.peek(1).Type != token.COLON && p.peek(1).Type != token.COMMA && p.peek(1).Type != token.RBRACE && p.peek(1).Type != token.LPAREN
	isSet := p.is(token.SET) && p.peek(1).Type != token.COLON && p.peek(1).Type != token.COMMA && p.peek(1).Type != token.RBRACE && p.peek(1).Type != token.LPAREN
	if isGet || isSet {
		p.advance()
	}
	prop := ast.ObjectProperty{IsGetter: isGet, IsSetter: isSet}
	switch {
	case p.is(token.LBRACKET):
		p.advance()
		prop.KeyKind = ast.PropKeyComputed
		prop.KeyExpr = p.parseAssignmentExpression()
		p.expect(token.RBRACKET)
	case p.is(token.STRING):
		t := p.advance()
		prop.KeyKind = ast.PropKeyString
		prop.KeyName = t.Literal.Str
	case p.is(token.NUMBER):
		t := p.advance()
		prop.KeyKind = ast.PropKeyNumber
		prop.KeyNumber = t.Literal.Number
	default:
		t := p.advance()
		prop.KeyKind = ast.PropKeyIdentifier
		prop.KeyName = t.Lexeme
	}
	switch {
	case isGet || isSet:
		params, _ := p.tryParseAccessorParamsAfterKey()
		var retType ast.TypeExpression
		if p.accept(token.COLON) {
			retType = p.parseType()
		}
		body := p.parseBlock()
		prop.Value = &ast.ArrowFunction{Base: ast.NewBase(body.Span()), Params: params, ReturnType: retType, Body: body}
	case p.is(token.LPAREN):
		params, _ := p.tryParseAccessorParamsAfterKey()
		var retType ast.TypeExpression
		if p.accept(token.COLON) {
			retType = p.parseType()
		}
		body := p.parseBlock()
		prop.Value = &ast.ArrowFunction{Base: ast.NewBase(body.Span()), Params: params, ReturnType: retType, Body: body}
	case p.accept(token.COLON):
		prop.Value = p.parseAssignmentExpression()
	case p.accept(token.ASSIGN):
		// shorthand with default, e.g. destructuring target `{ a = 1 }`.
		prop.IsShorthand = true
		def := p.parseAssignmentExpression()
		prop.Value = &ast.Assign{Base: ast.NewBase(def.Span()), Target: &ast.Variable{Base: ast.NewBase(start.Span), Name: &ast.Identifier{Base: ast.NewBase(start.Span), Name: prop.KeyName}}, Value: def}
	default:
		prop.IsShorthand = true
		prop.Value = &ast.Variable{Base: ast.NewBase(start.Span), Name: &ast.Identifier{Base: ast.NewBase(start.Span), Name: prop.KeyName}}
	}
	prop.Base = ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span))
	return prop
}

func (p *Parser) tryParseAccessorParamsAfterKey() ([]ast.Param, bool) {
	p.expect(token.LPAREN)
	return p.tryParseParamList()
}

// parseDestructuringPattern parses an array/object binding pattern,
// reusing the corresponding literal grammar (destructuring is desugared
// at evaluation time, not at parse time, so the pattern is
// kept as an ordinary ArrayLiteral/ObjectLiteral expression tree).
func (p *Parser) parseDestructuringPattern() ast.Expression {
	if p.is(token.LBRACKET) {
		return p.parseArrayLiteral()
	}
	return p.parseObjectLiteral()
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	return p.parseFunctionExpressionAsync(false)
}

func (p *Parser) parseFunctionExpressionAsync(isAsync bool) ast.Expression {
	decl := p.parseFunctionDeclBody(isAsync, false)
	return &ast.ArrowFunction{Base: ast.NewBase(decl.Span()), Params: decl.Params, ReturnType: decl.ReturnType, Body: decl.Body, Flags: ast.ArrowFunctionFlags{HasOwnThis: true, IsAsync: isAsync, IsGenerator: decl.Flags.Generator}}
}

func (p *Parser) parseClassExpression() ast.Expression {
	decl := p.parseClassDeclBody()
	return &ast.ClassExpr{Base: ast.NewBase(decl.Span()), Decl: decl}
}

func (p *Parser) parseTemplateLiteral() ast.Expression {
	start := p.cur()
	var cooked, raw []string
	var exprs []ast.Expression
	if p.is(token.NO_SUBST_TEMPLATE) {
		t := p.advance()
		return &ast.TemplateLiteral{Base: ast.NewBase(t.Span), Cooked: []string{t.Literal.Str}, Raw: []string{t.Lexeme}}
	}
	head := p.advance()
	cooked = append(cooked, head.Literal.Str)
	raw = append(raw, head.Lexeme)
	for {
		exprs = append(exprs, p.parseCommaExpression())
		part := p.advance()
		cooked = append(cooked, part.Literal.Str)
		raw = append(raw, part.Lexeme)
		if part.Type == token.TEMPLATE_TAIL {
			break
		}
	}
	last := p.tokens[p.pos-1]
	return &ast.TemplateLiteral{Base: ast.NewBase(ast.Span2(start.Span, last.Span)), Cooked: cooked, Raw: raw, Exprs: exprs}
}

func (p *Parser) parseTaggedTemplate(left ast.Expression) ast.Expression {
	tmpl := p.parseTemplateLiteral().(*ast.TemplateLiteral)
	return &ast.TaggedTemplateLiteral{Base: ast.NewBase(ast.Span2(left.Span(), tmpl.Span())), Tag: left, Template: tmpl}
}

// parseAngleBracketTypeAssertion handles the legacy `<T>expr` assertion
// form, disambiguated from JSX (which this language doesn't support) and
// from a generic-arrow by the absence of `=>` after a well-formed type.
func (p *Parser) parseAngleBracketTypeAssertion() ast.Expression {
	start := p.advance()
	typ := p.parseType()
	p.expect(token.GT)
	expr := p.parseExpression(UNARY)
	return &ast.TypeAssertion{Base: ast.NewBase(ast.Span2(start.Span, expr.Span())), Expr: expr, Type: typ}
}
