package parser

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/token"
)

// primitiveTypeNames are the fixed keyword types recognized directly in
// type position.
var primitiveTypeNames = map[token.Type]string{
	token.VOID: "void", token.NULL: "null", token.TRUE: "true", token.FALSE: "false",
}

var primitiveIdentNames = map[string]bool{
	"string": true, "number": true, "boolean": true, "bigint": true, "symbol": true,
	"undefined": true, "any": true, "unknown": true, "never": true, "object": true,
}

// parseType is the entry point for a type annotation; the grammar ladder
// is: conditional > union > intersection > postfix (array/
// indexed) > primary.
func (p *Parser) parseType() ast.TypeExpression {
	return p.parseConditionalType()
}

func (p *Parser) parseConditionalType() ast.TypeExpression {
	check := p.parseFunctionOrUnionType()
	if !p.is(token.EXTENDS) {
		return check
	}
	p.advance()
	extendsT := p.parseFunctionOrUnionType()
	if !p.accept(token.QUESTION) {
		// Not actually a conditional type (rare in practice for our
		// grammar subset); treat as a malformed extends clause.
		p.errorf("expected '?' in conditional type")
		return check
	}
	trueT := p.parseType()
	p.expect(token.COLON)
	falseT := p.parseType()
	return &ast.ConditionalTypeNode{
		Base:    ast.NewBase(ast.Span2(check.Span(), falseT.Span())),
		Check:   check,
		Extends: extendsT,
		True:    trueT,
		False:   falseT,
	}
}

// parseFunctionOrUnionType handles `(a: T) => R` function types, which bind
// looser than a union member but must be tried before falling into the
// union/intersection ladder since `(` also starts a parenthesized type.
func (p *Parser) parseFunctionOrUnionType() ast.TypeExpression {
	if p.is(token.LPAREN) {
		if fn, ok := p.tryParseFunctionTypeNode(); ok {
			return fn
		}
	}
	if p.is(token.NEW) { // `new (a: T) => R` construct signature type
		p.advance()
	}
	return p.parseUnionType()
}

func (p *Parser) tryParseFunctionTypeNode() (ast.TypeExpression, bool) {
	save := p.mark()
	start := p.advance() // (
	params, ok := p.tryParseParamList()
	if !ok {
		p.reset(save)
		return nil, false
	}
	if !p.is(token.ARROW) {
		p.reset(save)
		return nil, false
	}
	p.advance()
	ret := p.parseType()
	return &ast.FunctionPointerTypeNode{
		Base:   ast.NewBase(ast.Span2(start.Span, ret.Span())),
		Params: params,
		Return: ret,
	}, true
}

func (p *Parser) parseUnionType() ast.TypeExpression {
	p.accept(token.PIPE) // leading `|` is allowed
	first := p.parseIntersectionType()
	members := []ast.TypeExpression{first}
	for p.accept(token.PIPE) {
		members = append(members, p.parseIntersectionType())
	}
	if len(members) == 1 {
		return first
	}
	return &ast.UnionTypeNode{Base: ast.NewBase(ast.Span2(members[0].Span(), members[len(members)-1].Span())), Members: members}
}

func (p *Parser) parseIntersectionType() ast.TypeExpression {
	p.accept(token.AMP) // leading `&` is allowed
	first := p.parsePostfixType()
	members := []ast.TypeExpression{first}
	for p.accept(token.AMP) {
		members = append(members, p.parsePostfixType())
	}
	if len(members) == 1 {
		return first
	}
	return &ast.IntersectionTypeNode{Base: ast.NewBase(ast.Span2(members[0].Span(), members[len(members)-1].Span())), Members: members}
}

// parsePostfixType applies `[]` (array) and `[K]` (indexed access, parsed
// but folded into a Record-like lookup by the checker) suffixes.
func (p *Parser) parsePostfixType() ast.TypeExpression {
	t := p.parsePrimaryType()
	for {
		if p.is(token.LBRACKET) && !p.newlineBeforeCurrent() {
			start := p.advance()
			if p.accept(token.RBRACKET) {
				t = &ast.ArrayTypeNode{Base: ast.NewBase(ast.Span2(t.Span(), start.Span)), Elem: t}
				continue
			}
			// indexed access type T[K]; represented as a TypeAnnotation
			// with the index folded into a synthetic type argument since
			// the checker resolves both through the same lookup path.
			idx := p.parseType()
			end := p.expect(token.RBRACKET)
			t = &ast.TypeAnnotation{Base: ast.NewBase(ast.Span2(t.Span(), end.Span)), Name: "__indexed__", TypeArgs: []ast.TypeExpression{t, idx}}
			continue
		}
		break
	}
	return t
}

func (p *Parser) parsePrimaryType() ast.TypeExpression {
	start := p.cur()
	switch {
	case p.is(token.LBRACKET):
		return p.parseTupleType()
	case p.is(token.LBRACE):
		return p.parseObjectOrMappedType()
	case p.is(token.KEYOF):
		p.advance()
		src := p.parsePostfixType()
		return &ast.KeyOfTypeNode{Base: ast.NewBase(ast.Span2(start.Span, src.Span())), Source: src}
	case p.is(token.TYPEOF):
		p.advance()
		var path []string
		id := p.expect(token.IDENT)
		path = append(path, id.Lexeme)
		end := id.Span
		for p.accept(token.DOT) {
			m := p.expect(token.IDENT)
			path = append(path, m.Lexeme)
			end = m.Span
		}
		return &ast.TypeOfTypeNode{Base: ast.NewBase(ast.Span2(start.Span, end)), Path: path}
	case p.is(token.INFER):
		p.advance()
		name := p.expect(token.IDENT)
		return &ast.InferTypeNode{Base: ast.NewBase(ast.Span2(start.Span, name.Span)), Name: name.Lexeme}
	case p.is(token.THIS):
		p.advance()
		return &ast.ThisTypeNode{Base: ast.NewBase(start.Span)}
	case p.is(token.STRING):
		t := p.advance()
		return &ast.LiteralTypeNode{Base: ast.NewBase(t.Span), Kind: ast.LitString, Str: t.Literal.Str}
	case p.is(token.NUMBER):
		t := p.advance()
		return &ast.LiteralTypeNode{Base: ast.NewBase(t.Span), Kind: ast.LitNumber, Number: t.Literal.Number}
	case p.is(token.MINUS) && p.peek(1).Type == token.NUMBER:
		p.advance()
		t := p.advance()
		return &ast.LiteralTypeNode{Base: ast.NewBase(ast.Span2(start.Span, t.Span)), Kind: ast.LitNumber, Number: -t.Literal.Number}
	case p.is(token.TRUE), p.is(token.FALSE):
		t := p.advance()
		return &ast.LiteralTypeNode{Base: ast.NewBase(t.Span), Kind: ast.LitBoolean, Boolean: t.Type == token.TRUE}
	case p.is(token.NULL):
		p.advance()
		return &ast.PrimitiveTypeNode{Base: ast.NewBase(start.Span), Name: "null"}
	case p.is(token.VOID):
		p.advance()
		return &ast.PrimitiveTypeNode{Base: ast.NewBase(start.Span), Name: "void"}
	case p.is(token.NO_SUBST_TEMPLATE), p.is(token.TEMPLATE_HEAD):
		return p.parseTemplateLiteralType()
	case p.is(token.LPAREN):
		p.advance()
		inner := p.parseType()
		p.expect(token.RPAREN)
		return inner
	case p.isAny(token.IS, token.ASSERTS):
		return p.parseTypePredicate()
	case p.is(token.IDENT):
		return p.parseTypeReferenceOrPredicate()
	default:
		p.errorf("unexpected token %s in type", p.cur().Type)
		p.advance()
		return &ast.PrimitiveTypeNode{Base: ast.NewBase(start.Span), Name: "any"}
	}
}

// parseTypeReferenceOrPredicate distinguishes `x is T` (a type predicate,
// legal only in a function return-type position but parsed uniformly here)
// from an ordinary `Name<Args>` type reference.
func (p *Parser) parseTypeReferenceOrPredicate() ast.TypeExpression {
	start := p.cur()
	if p.peek(1).Type == token.IS {
		name := p.advance()
		p.advance() // is
		t := p.parseType()
		return &ast.TypePredicateNode{Base: ast.NewBase(ast.Span2(start.Span, t.Span())), ParamName: name.Lexeme, Type: t}
	}
	name := p.advance()
	if primitiveIdentNames[name.Lexeme] {
		return &ast.PrimitiveTypeNode{Base: ast.NewBase(name.Span), Name: name.Lexeme}
	}
	var typeArgs []ast.TypeExpression
	end := name.Span
	if p.is(token.LT) {
		save := p.mark()
		// A nested argument list may split a `>>` before this level fails
		// to close, so restore the buffered tail along with the position.
		savedTail := append([]token.Token(nil), p.tokens[save:]...)
		lexState := p.lex.Save()
		p.advance()
		args, ok := p.tryParseTypeArgumentList()
		if ok {
			typeArgs = args
			end = p.tokens[p.pos-1].Span
		} else {
			p.tokens = append(p.tokens[:save], savedTail...)
			p.lex.Restore(lexState)
			p.reset(save)
		}
	}
	path := name.Lexeme
	for p.is(token.DOT) && len(typeArgs) == 0 {
		p.advance()
		m := p.expect(token.IDENT)
		path += "." + m.Lexeme
		end = m.Span
	}
	return &ast.TypeAnnotation{Base: ast.NewBase(ast.Span2(start.Span, end)), Name: path, TypeArgs: typeArgs}
}

// tryParseTypeArgumentList parses a `<A, B>` list after the opening `<` has
// already been consumed, splitting a trailing `>>`/`>>>` so the
// remainder can close enclosing lists. Returns ok=false (with the
// caller resetting) if the list cannot be completed with a closing angle.
func (p *Parser) tryParseTypeArgumentList() ([]ast.TypeExpression, bool) {
	var args []ast.TypeExpression
	if p.is(token.GT) || p.is(token.SHR) || p.is(token.USHR) {
		return nil, false
	}
	for {
		args = append(args, p.parseType())
		if p.accept(token.COMMA) {
			continue
		}
		break
	}
	if !p.closeAngle() {
		return nil, false
	}
	return args, true
}

// closeAngle consumes one closing `>` for the current type-argument/type-
// parameter list, splitting `>>`/`>>>`/`>=`/`>>=` tokens so the remainder
// can close an enclosing list or resume as a shift/relational operator in
// expression context.
func (p *Parser) closeAngle() bool {
	cur := p.cur()
	switch cur.Type {
	case token.GT:
		p.advance()
		return true
	case token.GT_EQ:
		p.splitCurrent(token.GT, ">", token.ASSIGN, "=")
		return true
	case token.SHR:
		p.splitCurrent(token.GT, ">", token.GT, ">")
		return true
	case token.USHR:
		p.splitCurrent(token.GT, ">", token.SHR, ">>")
		return true
	case token.SHR_EQ:
		p.splitCurrent(token.GT, ">", token.GT_EQ, ">=")
		return true
	default:
		return false
	}
}

// splitCurrent replaces the current buffered token with two narrower
// tokens, consuming the first (which closes a generic list) and leaving the
// second in place of the original token for subsequent parsing.
func (p *Parser) splitCurrent(firstType token.Type, firstLexeme string, restType token.Type, restLexeme string) {
	cur := p.tokens[p.pos]
	firstEnd := cur.Span.Start
	firstEnd.Column++
	firstEnd.Offset++
	first := token.Token{Type: firstType, Lexeme: firstLexeme, Span: token.Span{Start: cur.Span.Start, End: firstEnd}}
	rest := token.Token{Type: restType, Lexeme: restLexeme, Span: token.Span{Start: firstEnd, End: cur.Span.End}}
	p.tokens[p.pos] = rest
	p.tokens = append(p.tokens[:p.pos], append([]token.Token{first, rest}, p.tokens[p.pos+1:]...)...)
	p.pos++ // consume the synthesized `first` token
}

func (p *Parser) parseTupleType() ast.TypeExpression {
	start := p.advance()
	var elems []ast.TupleElementNode
	for !p.is(token.RBRACKET) && !p.is(token.EOF) {
		el := ast.TupleElementNode{}
		if p.accept(token.ELLIPSIS) {
			el.Kind = ast.TupleRest
		}
		if p.is(token.IDENT) && p.peek(1).Type == token.COLON {
			label := p.advance()
			el.Label = label.Lexeme
			p.advance()
		} else if p.is(token.IDENT) && p.peek(1).Type == token.QUESTION && p.peek(2).Type == token.COLON {
			label := p.advance()
			el.Label = label.Lexeme
			p.advance()
			p.advance()
			el.Kind = ast.TupleOptional
		}
		el.Type = p.parseType()
		if el.Kind != ast.TupleRest && p.accept(token.QUESTION) {
			el.Kind = ast.TupleOptional
		}
		elems = append(elems, el)
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACKET)
	required := 0
	for _, e := range elems {
		if e.Kind == ast.TupleRequired {
			required++
		} else {
			break
		}
	}
	return &ast.TupleTypeNode{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Elements: elems}
}

// parseObjectOrMappedType distinguishes `{ [K in keyof T]: U }` (a mapped
// type) from an ordinary `{ a: T; b?: U }` object-type literal by looking
// for the `in` keyword inside a single index-like member.
func (p *Parser) parseObjectOrMappedType() ast.TypeExpression {
	start := p.advance()
	if p.isMappedTypeStart() {
		return p.finishMappedType(start)
	}
	var members []ast.ObjectTypeMember
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		members = append(members, p.parseObjectTypeMember())
		p.acceptAny(token.SEMICOLON, token.COMMA)
	}
	end := p.expect(token.RBRACE)
	return &ast.ObjectTypeNode{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Members: members}
}

func (p *Parser) acceptAny(ts ...token.Type) bool {
	for _, t := range ts {
		if p.accept(t) {
			return true
		}
	}
	return false
}

func (p *Parser) isMappedTypeStart() bool {
	if !p.is(token.LBRACKET) && !(p.is(token.READONLY) && p.peek(1).Type == token.LBRACKET) &&
		!((p.is(token.PLUS) || p.is(token.MINUS)) && p.peek(1).Type == token.READONLY) {
		return false
	}
	// scan ahead for `in` before the matching `]`
	depth := 0
	for n := 0; ; n++ {
		t := p.peek(n)
		if t.Type == token.EOF {
			return false
		}
		if t.Type == token.LBRACKET {
			depth++
		}
		if t.Type == token.RBRACKET {
			depth--
			if depth == 0 {
				return false
			}
		}
		if depth == 1 && t.Type == token.IN {
			return true
		}
		if n > 64 {
			return false
		}
	}
}

func (p *Parser) finishMappedType(start token.Token) ast.TypeExpression {
	m := &ast.MappedTypeNode{}
	if p.accept(token.PLUS) {
		p.expect(token.READONLY)
		m.ReadonlyMod = ast.ModifierAdd
	} else if p.accept(token.MINUS) {
		p.expect(token.READONLY)
		m.ReadonlyMod = ast.ModifierRemove
	} else if p.accept(token.READONLY) {
		m.ReadonlyMod = ast.ModifierAdd
	}
	p.expect(token.LBRACKET)
	key := p.expect(token.IDENT)
	m.KeyName = key.Lexeme
	p.expect(token.IN)
	m.Constraint = p.parseType()
	if p.accept(token.AS) {
		m.KeyRemap = p.parseType()
	}
	p.expect(token.RBRACKET)
	if p.accept(token.PLUS) {
		p.expect(token.QUESTION)
		m.OptionalMod = ast.ModifierAdd
	} else if p.accept(token.MINUS) {
		p.expect(token.QUESTION)
		m.OptionalMod = ast.ModifierRemove
	} else if p.accept(token.QUESTION) {
		m.OptionalMod = ast.ModifierAdd
	}
	p.expect(token.COLON)
	m.Value = p.parseType()
	p.acceptAny(token.SEMICOLON, token.COMMA)
	end := p.expect(token.RBRACE)
	m.Base = ast.NewBase(ast.Span2(start.Span, end.Span))
	return m
}

func (p *Parser) parseObjectTypeMember() ast.ObjectTypeMember {
	member := ast.ObjectTypeMember{}
	if p.accept(token.READONLY) {
		member.Readonly = true
	}
	switch {
	case p.is(token.LBRACKET):
		p.advance()
		keyName := p.expect(token.IDENT)
		p.expect(token.COLON)
		keyType := p.parseType()
		p.expect(token.RBRACKET)
		member.Kind = ast.MemberIndexSignature
		member.IndexKey = keyName.Lexeme
		member.IndexKeyType = keyType
		p.expect(token.COLON)
		member.Type = p.parseType()
		return member
	case p.is(token.LPAREN), p.is(token.LT):
		member.Kind = ast.MemberCallSignature
		member.TypeParams = p.parseOptionalTypeParams()
		p.expect(token.LPAREN)
		member.Params, _ = p.tryParseParamList()
		p.expect(token.COLON)
		member.Type = p.parseType()
		return member
	case p.is(token.NEW):
		p.advance()
		member.Kind = ast.MemberConstructSignature
		member.TypeParams = p.parseOptionalTypeParams()
		p.expect(token.LPAREN)
		member.Params, _ = p.tryParseParamList()
		p.expect(token.COLON)
		member.Type = p.parseType()
		return member
	}
	name := p.advance()
	member.Name = name.Lexeme
	if p.accept(token.QUESTION) {
		member.Optional = true
	}
	if p.is(token.LPAREN) || p.is(token.LT) {
		member.Kind = ast.MemberMethod
		member.TypeParams = p.parseOptionalTypeParams()
		p.expect(token.LPAREN)
		member.Params, _ = p.tryParseParamList()
		p.expect(token.COLON)
		member.Type = p.parseType()
		return member
	}
	member.Kind = ast.MemberProperty
	p.expect(token.COLON)
	member.Type = p.parseType()
	return member
}

func (p *Parser) parseTemplateLiteralType() ast.TypeExpression {
	start := p.cur()
	if p.is(token.NO_SUBST_TEMPLATE) {
		t := p.advance()
		return &ast.TemplateLiteralTypeNode{Base: ast.NewBase(t.Span), Parts: []string{t.Literal.Str}}
	}
	head := p.advance()
	parts := []string{head.Literal.Str}
	var types []ast.TypeExpression
	for {
		types = append(types, p.parseType())
		part := p.advance()
		parts = append(parts, part.Literal.Str)
		if part.Type == token.TEMPLATE_TAIL {
			break
		}
	}
	end := p.tokens[p.pos-1]
	return &ast.TemplateLiteralTypeNode{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Parts: parts, Types: types}
}

func (p *Parser) parseTypePredicate() ast.TypeExpression {
	start := p.cur()
	if p.accept(token.ASSERTS) {
		name := p.expect(token.IDENT)
		if !p.accept(token.IS) {
			return &ast.TypePredicateNode{Base: ast.NewBase(ast.Span2(start.Span, name.Span)), ParamName: name.Lexeme, IsAssertion: true}
		}
		t := p.parseType()
		return &ast.TypePredicateNode{Base: ast.NewBase(ast.Span2(start.Span, t.Span())), ParamName: name.Lexeme, Type: t, IsAssertion: true}
	}
	name := p.expect(token.IDENT)
	p.expect(token.IS)
	t := p.parseType()
	return &ast.TypePredicateNode{Base: ast.NewBase(ast.Span2(start.Span, t.Span())), ParamName: name.Lexeme, Type: t}
}

// parseOptionalTypeParams parses a `<T extends U = D, const V>` generic
// parameter list if present.
func (p *Parser) parseOptionalTypeParams() []ast.TypeParam {
	if !p.is(token.LT) {
		return nil
	}
	start := p.advance()
	var params []ast.TypeParam
	for !p.isAny(token.GT, token.SHR, token.USHR, token.EOF) {
		tp := ast.TypeParam{}
		tpStart := p.cur()
		if p.accept(token.CONST) {
			tp.Const = true
		}
		if p.accept(token.OUT) {
			tp.Out = true
		} else if p.accept(token.IN) {
			tp.In = true
		}
		name := p.expect(token.IDENT)
		tp.Name = name.Lexeme
		if p.accept(token.EXTENDS) {
			tp.Constraint = p.parseFunctionOrUnionType()
		}
		if p.accept(token.ASSIGN) {
			tp.Default = p.parseType()
		}
		tp.Base = ast.NewBase(ast.Span2(tpStart.Span, p.tokens[p.pos-1].Span))
		params = append(params, tp)
		if !p.accept(token.COMMA) {
			break
		}
	}
	_ = start
	p.closeAngle()
	return params
}
