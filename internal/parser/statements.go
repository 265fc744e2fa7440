package parser

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/token"
)

// statementStartTokens are the keywords/punctuators parseStatement's
// error-recovery advances to: the next statement boundary (`;`, `}`, or
// a keyword that starts a statement).
var statementStartTokens = map[token.Type]bool{
	token.VAR: true, token.LET: true, token.CONST: true, token.FUNCTION: true,
	token.CLASS: true, token.INTERFACE: true, token.NAMESPACE: true, token.ENUM: true,
	token.IF: true, token.WHILE: true, token.DO: true, token.FOR: true, token.SWITCH: true,
	token.TRY: true, token.THROW: true, token.RETURN: true, token.BREAK: true,
	token.CONTINUE: true, token.IMPORT: true, token.EXPORT: true, token.LBRACE: true,
	token.TYPE_KEYWORD: true, token.USING: true, token.ASYNC: true,
}

// parseStatement dispatches on the current token to one of the statement
// productions, recovering to the next statement-start token on error.
func (p *Parser) parseStatement() ast.Statement {
	decorators := p.parseDecorators()
	switch {
	case p.is(token.LBRACE):
		return p.parseBlock()
	case p.is(token.VAR), p.is(token.LET), p.is(token.CONST) && p.peek(1).Type != token.ENUM:
		return p.parseVarStatement()
	case p.is(token.FUNCTION):
		return p.parseFunctionDecl(false)
	case p.is(token.ASYNC) && p.peek(1).Type == token.FUNCTION:
		p.advance()
		return p.parseFunctionDecl(true)
	case p.is(token.CLASS):
		decl := p.parseClassDeclBody()
		decl.Decorators = decorators
		return decl
	case p.is(token.ABSTRACT) && p.peek(1).Type == token.CLASS:
		p.advance()
		decl := p.parseClassDeclBody()
		decl.Abstract = true
		decl.Decorators = decorators
		return decl
	case p.is(token.INTERFACE):
		return p.parseInterfaceDecl()
	case p.is(token.NAMESPACE) || (p.is(token.MODULE) && p.peek(1).Type == token.IDENT):
		return p.parseNamespaceDecl()
	case p.is(token.TYPE_KEYWORD) && p.peek(1).Type == token.IDENT:
		return p.parseTypeAliasDecl()
	case p.is(token.ENUM):
		return p.parseEnumDecl(false)
	case p.is(token.CONST) && p.peek(1).Type == token.ENUM:
		p.advance()
		return p.parseEnumDecl(true)
	case p.is(token.IF):
		return p.parseIf()
	case p.is(token.WHILE):
		return p.parseWhile()
	case p.is(token.DO):
		return p.parseDoWhile()
	case p.is(token.FOR):
		return p.parseFor()
	case p.is(token.SWITCH):
		return p.parseSwitch()
	case p.is(token.TRY):
		return p.parseTryCatch()
	case p.is(token.THROW):
		return p.parseThrow()
	case p.is(token.RETURN):
		return p.parseReturn()
	case p.is(token.BREAK):
		return p.parseBreak()
	case p.is(token.CONTINUE):
		return p.parseContinue()
	case p.is(token.USING):
		return p.parseUsing(false)
	case p.is(token.AWAIT) && p.peek(1).Type == token.USING:
		p.advance()
		return p.parseUsing(true)
	case p.is(token.IMPORT) && p.peek(1).Type != token.LPAREN && p.peek(1).Type != token.DOT:
		return p.parseImportDecl()
	case p.is(token.EXPORT):
		return p.parseExportDecl()
	case p.is(token.SEMICOLON):
		p.advance()
		return nil
	case p.is(token.IDENT) && p.peek(1).Type == token.COLON:
		return p.parseLabeledStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseDecorators consumes zero or more `@expr` decorators preceding a
// decoratable declaration.
func (p *Parser) parseDecorators() []ast.Decorator {
	var decs []ast.Decorator
	for p.is(token.AT) {
		start := p.advance()
		expr := p.parseExpression(CALL)
		decs = append(decs, ast.Decorator{Base: ast.NewBase(ast.Span2(start.Span, expr.Span())), Expr: expr})
	}
	return decs
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBRACE)
	var stmts []ast.Statement
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		before := p.pos
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.pos == before { // guard against an infinite loop on unrecoverable input
			p.synchronize()
		}
	}
	end := p.expect(token.RBRACE)
	return &ast.Block{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Statements: stmts}
}

// synchronize advances past tokens until a statement boundary is
// reached.
func (p *Parser) synchronize() {
	p.advance()
	for !p.is(token.EOF) {
		if p.tokens[p.pos-1].Type == token.SEMICOLON {
			return
		}
		if p.is(token.RBRACE) || statementStartTokens[p.cur().Type] {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseCommaExpression()
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Base: ast.NewBase(expr.Span()), Expr: expr}
}

var varKinds = map[token.Type]ast.VarKind{token.VAR: ast.VarVar, token.LET: ast.VarLet, token.CONST: ast.VarConst}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	start := p.advance()
	kind := varKinds[start.Type]
	var decls []ast.VarDeclarator
	for {
		decls = append(decls, p.parseVarDeclarator())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.consumeSemicolon()
	return &ast.VarStatement{Base: ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span)), Kind: kind, Declarators: decls}
}

func (p *Parser) parseVarDeclarator() ast.VarDeclarator {
	d := ast.VarDeclarator{}
	if p.isAny(token.LBRACE, token.LBRACKET) {
		d.Pattern = p.parseDestructuringPattern()
	} else {
		name := p.expect(token.IDENT)
		d.Name = name.Lexeme
	}
	if p.accept(token.BANG) {
		d.DefiniteAssignment = true
	}
	if p.accept(token.COLON) {
		d.Type = p.parseType()
	}
	if p.accept(token.ASSIGN) {
		d.Initializer = p.parseAssignmentExpression()
	}
	return d
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance()
	p.expect(token.LPAREN)
	cond := p.parseCommaExpression()
	p.expect(token.RPAREN)
	then := p.parseStatement()
	var els ast.Statement
	if p.accept(token.ELSE) {
		els = p.parseStatement()
	}
	end := then.Span()
	if els != nil {
		end = els.Span()
	}
	return &ast.If{Base: ast.NewBase(ast.Span2(start.Span, end)), Cond: cond, Consequent: then, Alternate: els}
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.advance()
	p.expect(token.LPAREN)
	cond := p.parseCommaExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.While{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Statement {
	start := p.advance()
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseCommaExpression()
	end := p.expect(token.RPAREN)
	p.consumeSemicolon()
	return &ast.DoWhile{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Body: body, Cond: cond}
}

// parseFor distinguishes `for`/`for-in`/`for-of`/`for-await-of` after
// parsing the header's first clause.
func (p *Parser) parseFor() ast.Statement {
	start := p.advance()
	await := p.accept(token.AWAIT)
	p.expect(token.LPAREN)

	if p.is(token.SEMICOLON) {
		return p.finishCStyleFor(start, nil)
	}

	if p.isAny(token.VAR, token.LET, token.CONST) {
		kindTok := p.advance()
		kind := varKinds[kindTok.Type]
		var pattern ast.Expression
		var name string
		if p.isAny(token.LBRACE, token.LBRACKET) {
			pattern = p.parseDestructuringPattern()
		} else {
			name = p.expect(token.IDENT).Lexeme
		}
		var typ ast.TypeExpression
		if p.accept(token.COLON) {
			typ = p.parseType()
		}
		if p.accept(token.OF) {
			iterable := p.parseAssignmentExpression()
			p.expect(token.RPAREN)
			body := p.parseStatement()
			return &ast.ForOf{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Kind: kind, Name: name, Pattern: pattern, Type: typ, Iterable: iterable, Body: body, Await: await}
		}
		if p.accept(token.IN) {
			obj := p.parseAssignmentExpression()
			p.expect(token.RPAREN)
			body := p.parseStatement()
			return &ast.ForIn{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Kind: kind, Name: name, Pattern: pattern, Object: obj, Body: body}
		}
		var init ast.Expression
		if p.accept(token.ASSIGN) {
			init = p.parseAssignmentExpression()
		}
		decl := &ast.VarStatement{Base: ast.NewBase(kindTok.Span), Kind: kind, Declarators: []ast.VarDeclarator{{Name: name, Pattern: pattern, Type: typ, Initializer: init}}}
		for p.accept(token.COMMA) {
			decl.Declarators = append(decl.Declarators, p.parseVarDeclarator())
		}
		return p.finishCStyleFor(start, decl)
	}

	exprStart := p.mark()
	first := p.parseCommaExpression()
	if p.accept(token.OF) {
		iterable := p.parseAssignmentExpression()
		p.expect(token.RPAREN)
		body := p.parseStatement()
		name := ""
		if v, ok := first.(*ast.Variable); ok {
			name = v.Name.Name
		}
		return &ast.ForOf{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Kind: ast.VarVar, Pattern: exprAsPattern(first), Name: name, Iterable: iterable, Body: body, Await: await}
	}
	if p.accept(token.IN) {
		obj := p.parseAssignmentExpression()
		p.expect(token.RPAREN)
		body := p.parseStatement()
		name := ""
		if v, ok := first.(*ast.Variable); ok {
			name = v.Name.Name
		}
		return &ast.ForIn{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Kind: ast.VarVar, Pattern: exprAsPattern(first), Name: name, Object: obj, Body: body}
	}
	_ = exprStart
	initStmt := &ast.ExpressionStatement{Base: ast.NewBase(first.Span()), Expr: first}
	return p.finishCStyleFor(start, initStmt)
}

// exprAsPattern returns nil when first is a plain Variable (the common
// case, represented via Name instead), or first itself when it is an
// array/object destructuring target written without a declaration keyword
// (`for ([a,b] of pairs)`).
func exprAsPattern(first ast.Expression) ast.Expression {
	switch first.(type) {
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		return first
	default:
		return nil
	}
}

func (p *Parser) finishCStyleFor(start token.Token, init ast.Statement) ast.Statement {
	p.expect(token.SEMICOLON)
	var cond ast.Expression
	if !p.is(token.SEMICOLON) {
		cond = p.parseCommaExpression()
	}
	p.expect(token.SEMICOLON)
	var update ast.Expression
	if !p.is(token.RPAREN) {
		update = p.parseCommaExpression()
	}
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.For{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Init: init, Cond: cond, Update: update, Body: body}
}

func (p *Parser) parseSwitch() ast.Statement {
	start := p.advance()
	p.expect(token.LPAREN)
	disc := p.parseCommaExpression()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	var cases []ast.SwitchCase
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		var test ast.Expression
		if p.accept(token.CASE) {
			test = p.parseCommaExpression()
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		var stmts []ast.Statement
		for !p.isAny(token.CASE, token.DEFAULT, token.RBRACE, token.EOF) {
			if s := p.parseStatement(); s != nil {
				stmts = append(stmts, s)
			}
		}
		cases = append(cases, ast.SwitchCase{Test: test, Statements: stmts})
	}
	end := p.expect(token.RBRACE)
	return &ast.Switch{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Discriminant: disc, Cases: cases}
}

func (p *Parser) parseTryCatch() ast.Statement {
	start := p.advance()
	tryBlock := p.parseBlock()
	var catch *ast.CatchClause
	if p.accept(token.CATCH) {
		catch = &ast.CatchClause{}
		if p.accept(token.LPAREN) {
			if p.isAny(token.LBRACE, token.LBRACKET) {
				catch.Pattern = p.parseDestructuringPattern()
			} else {
				catch.ParamName = p.expect(token.IDENT).Lexeme
			}
			if p.accept(token.COLON) {
				p.parseType() // catch annotations are always `any`/`unknown`; parsed and discarded
			}
			p.expect(token.RPAREN)
		}
		catch.Body = p.parseBlock()
	}
	var finally *ast.Block
	end := tryBlock.Span()
	if catch != nil {
		end = catch.Body.Span()
	}
	if p.accept(token.FINALLY) {
		finally = p.parseBlock()
		end = finally.Span()
	}
	return &ast.TryCatch{Base: ast.NewBase(ast.Span2(start.Span, end)), Try: tryBlock, Catch: catch, Finally: finally}
}

func (p *Parser) parseThrow() ast.Statement {
	start := p.advance()
	expr := p.parseCommaExpression()
	p.consumeSemicolon()
	return &ast.Throw{Base: ast.NewBase(ast.Span2(start.Span, expr.Span())), Expr: expr}
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance()
	var expr ast.Expression
	if !p.isAny(token.SEMICOLON, token.RBRACE, token.EOF) && !p.newlineBeforeCurrent() {
		expr = p.parseCommaExpression()
	}
	p.consumeSemicolon()
	end := start.Span
	if expr != nil {
		end = expr.Span()
	}
	return &ast.Return{Base: ast.NewBase(ast.Span2(start.Span, end)), Expr: expr}
}

func (p *Parser) parseBreak() ast.Statement {
	start := p.advance()
	label := ""
	if p.is(token.IDENT) && !p.newlineBeforeCurrent() {
		label = p.advance().Lexeme
	}
	p.consumeSemicolon()
	return &ast.Break{Base: ast.NewBase(start.Span), Label: label}
}

func (p *Parser) parseContinue() ast.Statement {
	start := p.advance()
	label := ""
	if p.is(token.IDENT) && !p.newlineBeforeCurrent() {
		label = p.advance().Lexeme
	}
	p.consumeSemicolon()
	return &ast.Continue{Base: ast.NewBase(start.Span), Label: label}
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	name := p.advance()
	p.expect(token.COLON)
	body := p.parseStatement()
	return &ast.LabeledStatement{Base: ast.NewBase(ast.Span2(name.Span, body.Span())), Label: name.Lexeme, Body: body}
}

func (p *Parser) parseUsing(await bool) ast.Statement {
	start := p.advance()
	var bindings []ast.UsingBinding
	for {
		name := p.expect(token.IDENT)
		var typ ast.TypeExpression
		if p.accept(token.COLON) {
			typ = p.parseType()
		}
		_ = typ
		p.expect(token.ASSIGN)
		init := p.parseAssignmentExpression()
		bindings = append(bindings, ast.UsingBinding{Name: name.Lexeme, Initializer: init})
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.consumeSemicolon()
	return &ast.Using{Base: ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span)), Await: await, Bindings: bindings}
}

// parseFunctionDecl parses a named function declaration or an overload
// signature (no body).
func (p *Parser) parseFunctionDecl(isAsync bool) *ast.FunctionDecl {
	return p.parseFunctionDeclBody(isAsync, true)
}

// parseFunctionDeclBody is the shared production behind function
// declarations (name required) and function expressions (name optional).
func (p *Parser) parseFunctionDeclBody(isAsync, requireName bool) *ast.FunctionDecl {
	start := p.advance() // `function`
	isGen := p.accept(token.STAR)
	name := ""
	if requireName || p.is(token.IDENT) {
		name = p.expect(token.IDENT).Lexeme
	}
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.LPAREN)
	params, _ := p.tryParseParamList()
	var retType ast.TypeExpression
	var predicate *ast.TypePredicateNode
	if p.accept(token.COLON) {
		t := p.parseType()
		if pr, ok := t.(*ast.TypePredicateNode); ok {
			predicate = pr
		} else {
			retType = t
		}
	}
	var body *ast.Block
	flags := ast.FunctionFlags{Async: isAsync, Generator: isGen}
	if p.is(token.LBRACE) {
		body = p.parseBlock()
	} else {
		flags.IsOverloadSignature = true
		p.consumeSemicolon()
	}
	end := p.tokens[p.pos-1].Span
	return &ast.FunctionDecl{
		Base: ast.NewBase(ast.Span2(start.Span, end)), Name: name, TypeParams: typeParams,
		Params: params, ReturnType: retType, Predicate: predicate, Body: body, Flags: flags,
	}
}

func (p *Parser) parseClassDeclBody() *ast.ClassDecl {
	start := p.expect(token.CLASS)
	name := ""
	if p.is(token.IDENT) {
		name = p.advance().Lexeme
	}
	typeParams := p.parseOptionalTypeParams()
	var extends ast.TypeExpression
	var implements []ast.TypeExpression
	if p.accept(token.EXTENDS) {
		extends = p.parseFunctionOrUnionType()
	}
	if p.accept(token.IMPLEMENTS) {
		implements = append(implements, p.parseFunctionOrUnionType())
		for p.accept(token.COMMA) {
			implements = append(implements, p.parseFunctionOrUnionType())
		}
	}
	p.expect(token.LBRACE)
	var members []ast.ClassMember
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		if p.accept(token.SEMICOLON) {
			continue
		}
		members = append(members, p.parseClassMember())
	}
	end := p.expect(token.RBRACE)
	return &ast.ClassDecl{
		Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Name: name, TypeParams: typeParams,
		Extends: extends, Implements: implements, Members: members,
	}
}

func (p *Parser) parseClassMember() ast.ClassMember {
	decorators := p.parseDecorators()
	start := p.cur()
	if p.is(token.STATIC) && p.peek(1).Type == token.LBRACE {
		p.advance()
		body := p.parseBlock()
		return &ast.StaticBlock{Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Body: body}
	}

	isStatic := p.accept(token.STATIC)
	visibility := ast.VisibilityDefault
	switch {
	case p.accept(token.PUBLIC):
		visibility = ast.VisibilityPublic
	case p.accept(token.PROTECTED):
		visibility = ast.VisibilityProtected
	case p.accept(token.PRIVATE):
		visibility = ast.VisibilityPrivate
	}
	readonly := p.accept(token.READONLY)
	abstract := p.accept(token.ABSTRACT)
	override := p.accept(token.OVERRIDE)
	isAsync := p.is(token.ASYNC) && p.peek(1).Type != token.LPAREN && p.peek(1).Type != token.ASSIGN && p.peek(1).Type != token.COLON
	if isAsync {
		p.advance()
	}
	isGen := p.accept(token.STAR)

	isAccessor := (p.is(token.GET) || p.is(token.SET)) && p.peek(1).Type != token.LPAREN && p.peek(1).Type != token.ASSIGN && p.peek(1).Type != token.COLON && p.peek(1).Type != token.SEMICOLON
	if isAccessor {
		kind := ast.AccessorGet
		if p.cur().Type == token.SET {
			kind = ast.AccessorSet
		}
		p.advance()
		name := p.parseMemberName()
		p.expect(token.LPAREN)
		params, _ := p.tryParseParamList()
		var retType ast.TypeExpression
		if p.accept(token.COLON) {
			retType = p.parseType()
		}
		body := p.parseBlock()
		return &ast.AccessorDecl{
			Base: ast.NewBase(ast.Span2(start.Span, body.Span())), Kind: kind, Name: name, Params: params,
			ReturnType: retType, Body: body, Static: isStatic, Visibility: visibility, Decorators: decorators,
		}
	}

	if p.accept(token.ACCESSOR) {
		name := p.parseMemberName()
		var typ ast.TypeExpression
		if p.accept(token.COLON) {
			typ = p.parseType()
		}
		var init ast.Expression
		if p.accept(token.ASSIGN) {
			init = p.parseAssignmentExpression()
		}
		p.consumeSemicolon()
		return &ast.AutoAccessorDecl{
			Base: ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span)), Name: name, Type: typ, Initializer: init,
			Static: isStatic, Visibility: visibility, Decorators: decorators,
		}
	}

	privateName := p.is(token.PRIVATE_IDENT)
	name := p.parseMemberName()
	typeParams := p.parseOptionalTypeParams()

	if p.is(token.LPAREN) {
		p.expect(token.LPAREN)
		params, _ := p.tryParseParamList()
		var retType ast.TypeExpression
		var predicate *ast.TypePredicateNode
		if p.accept(token.COLON) {
			t := p.parseType()
			if pr, ok := t.(*ast.TypePredicateNode); ok {
				predicate = pr
			} else {
				retType = t
			}
		}
		var body *ast.Block
		flags := ast.FunctionFlags{Async: isAsync, Generator: isGen, Override: override, Abstract: abstract, Static: isStatic}
		if p.is(token.LBRACE) {
			body = p.parseBlock()
		} else {
			flags.IsOverloadSignature = true
			p.consumeSemicolon()
		}
		return &ast.FunctionDecl{
			Base: ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span)), Name: name, TypeParams: typeParams,
			Params: params, ReturnType: retType, Predicate: predicate, Body: body, Flags: flags,
			Decorators: decorators, Visibility: visibility,
		}
	}

	// field declaration
	field := &ast.FieldDecl{
		Base: ast.NewBase(start.Span), Name: name, PrivateName: privateName, Static: isStatic,
		Readonly: readonly, Abstract: abstract, Visibility: visibility, Decorators: decorators,
	}
	if p.accept(token.QUESTION) {
		// optional field; no distinct AST flag, modeled as a union with
		// undefined at the checker level via the declared Type.
	}
	if p.accept(token.BANG) {
		field.DefiniteAssignment = true
	}
	if p.accept(token.COLON) {
		field.Type = p.parseType()
	}
	if p.accept(token.ASSIGN) {
		field.Initializer = p.parseAssignmentExpression()
	}
	p.consumeSemicolon()
	field.Base = ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span))
	return field
}

// parseMemberName accepts an identifier, string, number, computed
// `[expr]`, or `#private` name for a class member key, returning its
// textual form (computed/string/number keys are matched by lexeme).
func (p *Parser) parseMemberName() string {
	switch {
	case p.is(token.PRIVATE_IDENT):
		return p.advance().Lexeme
	case p.is(token.STRING):
		return p.advance().Literal.Str
	case p.is(token.LBRACKET):
		p.advance()
		p.parseAssignmentExpression()
		p.expect(token.RBRACKET)
		return "[computed]"
	default:
		return p.advance().Lexeme
	}
}

func (p *Parser) parseInterfaceDecl() ast.Statement {
	start := p.advance()
	name := p.expect(token.IDENT).Lexeme
	typeParams := p.parseOptionalTypeParams()
	var extends []ast.TypeExpression
	if p.accept(token.EXTENDS) {
		extends = append(extends, p.parseFunctionOrUnionType())
		for p.accept(token.COMMA) {
			extends = append(extends, p.parseFunctionOrUnionType())
		}
	}
	p.expect(token.LBRACE)
	var members []ast.ObjectTypeMember
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		members = append(members, p.parseObjectTypeMember())
		p.acceptAny(token.SEMICOLON, token.COMMA)
	}
	end := p.expect(token.RBRACE)
	return &ast.InterfaceDecl{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Name: name, TypeParams: typeParams, Extends: extends, Members: members}
}

func (p *Parser) parseNamespaceDecl() ast.Statement {
	start := p.advance()
	name := p.expect(token.IDENT).Lexeme
	for p.accept(token.DOT) {
		name += "." + p.expect(token.IDENT).Lexeme
	}
	p.expect(token.LBRACE)
	var members []ast.Statement
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		if s := p.parseStatement(); s != nil {
			members = append(members, s)
		}
	}
	end := p.expect(token.RBRACE)
	return &ast.NamespaceDecl{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Name: name, Members: members}
}

func (p *Parser) parseTypeAliasDecl() ast.Statement {
	start := p.advance()
	name := p.expect(token.IDENT).Lexeme
	typeParams := p.parseOptionalTypeParams()
	p.expect(token.ASSIGN)
	t := p.parseType()
	p.consumeSemicolon()
	return &ast.TypeAliasDecl{Base: ast.NewBase(ast.Span2(start.Span, t.Span())), Name: name, TypeParams: typeParams, Type: t}
}

func (p *Parser) parseEnumDecl(isConst bool) ast.Statement {
	start := p.advance()
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.LBRACE)
	var members []ast.EnumMember
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		memberName := p.advance().Lexeme
		var init ast.Expression
		if p.accept(token.ASSIGN) {
			init = p.parseAssignmentExpression()
		}
		members = append(members, ast.EnumMember{Name: memberName, Initializer: init})
		if !p.accept(token.COMMA) {
			break
		}
	}
	end := p.expect(token.RBRACE)
	return &ast.EnumDecl{Base: ast.NewBase(ast.Span2(start.Span, end.Span)), Name: name, Const: isConst, Members: members}
}

func (p *Parser) parseImportSpecifiers() []ast.ImportSpecifier {
	p.expect(token.LBRACE)
	var specs []ast.ImportSpecifier
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		spec := ast.ImportSpecifier{}
		if p.accept(token.TYPE_KEYWORD) {
			spec.TypeOnly = true
		}
		imported := p.advance().Lexeme
		spec.Imported = imported
		spec.Local = imported
		if p.accept(token.AS) {
			spec.Local = p.advance().Lexeme
		}
		specs = append(specs, spec)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return specs
}

func (p *Parser) parseImportDecl() ast.Statement {
	start := p.advance()
	decl := &ast.ImportDecl{}
	if p.accept(token.TYPE_KEYWORD) {
		decl.TypeOnly = true
	}
	if p.is(token.IDENT) && p.peek(1).Type == token.ASSIGN {
		name := p.advance().Lexeme
		p.advance()
		var path []string
		path = append(path, p.expect(token.IDENT).Lexeme)
		for p.accept(token.DOT) {
			path = append(path, p.expect(token.IDENT).Lexeme)
		}
		p.consumeSemicolon()
		return &ast.ImportAliasDecl{Base: ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span)), Name: name, Path: path}
	}
	if p.is(token.STRING) {
		mod := p.advance()
		decl.Module = mod.Literal.Str
		p.consumeSemicolon()
		decl.Base = ast.NewBase(ast.Span2(start.Span, mod.Span))
		return decl
	}
	if p.is(token.IDENT) {
		decl.Default = p.advance().Lexeme
		p.accept(token.COMMA)
	}
	if p.accept(token.STAR) {
		p.expect(token.AS)
		decl.Namespace = p.expect(token.IDENT).Lexeme
	} else if p.is(token.LBRACE) {
		decl.Specifiers = p.parseImportSpecifiers()
	}
	p.expect(token.FROM)
	mod := p.expect(token.STRING)
	decl.Module = mod.Literal.Str
	p.consumeSemicolon()
	decl.Base = ast.NewBase(ast.Span2(start.Span, mod.Span))
	return decl
}

func (p *Parser) parseExportDecl() ast.Statement {
	start := p.advance()
	exp := &ast.ExportDecl{}
	if p.accept(token.DEFAULT) {
		exp.Default = true
		exp.Decl = p.parseStatement()
		exp.Base = ast.NewBase(ast.Span2(start.Span, exp.Decl.Span()))
		return exp
	}
	if p.accept(token.TYPE_KEYWORD) {
		exp.TypeOnly = true
	}
	if p.is(token.LBRACE) {
		exp.Specifiers = p.parseImportSpecifiers()
		if p.accept(token.FROM) {
			mod := p.expect(token.STRING)
			exp.Module = mod.Literal.Str
		}
		p.consumeSemicolon()
		exp.Base = ast.NewBase(ast.Span2(start.Span, p.tokens[p.pos-1].Span))
		return exp
	}
	if p.accept(token.STAR) {
		if p.accept(token.AS) {
			p.expect(token.IDENT)
		}
		p.expect(token.FROM)
		mod := p.expect(token.STRING)
		exp.Module = mod.Literal.Str
		p.consumeSemicolon()
		exp.Base = ast.NewBase(ast.Span2(start.Span, mod.Span))
		return exp
	}
	exp.Decl = p.parseStatement()
	exp.Base = ast.NewBase(ast.Span2(start.Span, exp.Decl.Span()))
	return exp
}
