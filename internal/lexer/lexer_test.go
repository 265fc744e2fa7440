package lexer

import (
	"strings"
	"testing"

	"github.com/sharpts-lang/sharpts/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerPunctuatorsAndKeywords(t *testing.T) {
	toks := scanAll(t, "let x: number = 1 + 2;")
	want := []token.Type{
		token.LET, token.IDENT, token.COLON, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestLexerNumericLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Type
		num  float64
	}{
		{"123", token.NUMBER, 123},
		{"1_000", token.NUMBER, 1000},
		{"1.5e2", token.NUMBER, 150},
		{"0xFF", token.NUMBER, 255},
		{"0b1010", token.NUMBER, 10},
		{"0o17", token.NUMBER, 15},
	}
	for _, c := range cases {
		toks := scanAll(t, c.src)
		if toks[0].Type != c.kind {
			t.Errorf("%q: got type %s, want %s", c.src, toks[0].Type, c.kind)
			continue
		}
		if toks[0].Literal.Number != c.num {
			t.Errorf("%q: got %v, want %v", c.src, toks[0].Literal.Number, c.num)
		}
	}
}

func TestLexerBigIntSuffix(t *testing.T) {
	toks := scanAll(t, "123n")
	if toks[0].Type != token.BIGINT {
		t.Fatalf("got %s, want BIGINT", toks[0].Type)
	}
	if toks[0].Literal.BigInt != "123" {
		t.Errorf("got BigInt %q, want 123", toks[0].Literal.BigInt)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb"`)
	if toks[0].Literal.Str != "a\nb" {
		t.Errorf("got %q, want %q", toks[0].Literal.Str, "a\nb")
	}
}

func TestLexerTemplateLiteralInterpolation(t *testing.T) {
	l := New("`a${x}b`")
	head := l.Next()
	if head.Type != token.TEMPLATE_HEAD || head.Lexeme != "a" {
		t.Fatalf("got %v, want TEMPLATE_HEAD(a)", head)
	}
	ident := l.Next()
	if ident.Type != token.IDENT || ident.Lexeme != "x" {
		t.Fatalf("got %v, want IDENT(x)", ident)
	}
	tail := l.Next()
	if tail.Type != token.TEMPLATE_TAIL || tail.Lexeme != "b" {
		t.Fatalf("got %v, want TEMPLATE_TAIL(b)", tail)
	}
}

func TestLexerNoSubstTemplate(t *testing.T) {
	toks := scanAll(t, "`hello`")
	if toks[0].Type != token.NO_SUBST_TEMPLATE || toks[0].Lexeme != "hello" {
		t.Fatalf("got %v", toks[0])
	}
}

// TestLexerRegexVsDivision checks the "regex permitted here" flag: a
// '/' after an operator may start a regex, while a '/' after an
// identifier is division.
func TestLexerRegexVsDivision(t *testing.T) {
	l := New("x / y")
	l.Next() // x (IDENT)
	if l.RegexAllowed() {
		t.Errorf("regex should not be permitted directly after an identifier")
	}

	l2 := New("return /abc/")
	l2.Next() // return keyword
	if !l2.RegexAllowed() {
		t.Errorf("regex should be permitted directly after a keyword")
	}
}

func TestLexerCompoundPunctuation(t *testing.T) {
	toks := scanAll(t, ">>>= ??= **= === !== ?.")
	want := []token.Type{
		token.USHR_EQ, token.QUESTION_QUESTION_EQ, token.STAR_STAR_EQ,
		token.EQ_STRICT, token.NOT_EQ_STRICT, token.QUESTION_DOT, token.EOF,
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestLexerIllegalCharacterRecovers(t *testing.T) {
	l := New("1 ` 2")
	l.Next() // 1
	// Stray backtick with no terminator should report a diagnostic but not
	// panic, and scanning should reach EOF eventually.
	for i := 0; i < 10; i++ {
		tok := l.Next()
		if tok.Type == token.EOF {
			return
		}
	}
	t.Fatalf("lexer did not reach EOF after malformed input")
}

func TestLexerBacktrackViaSaveRestore(t *testing.T) {
	l := New("foo bar")
	saved := l.Save()
	first := l.Next()
	if first.Lexeme != "foo" {
		t.Fatalf("got %q", first.Lexeme)
	}
	l.Restore(saved)
	again := l.Next()
	if again.Lexeme != "foo" {
		t.Fatalf("restore failed, got %q", again.Lexeme)
	}
}

// TestLexerRoundTrip re-joins non-literal token lexemes and checks the
// result is source-equivalent text (whitespace aside).
func TestLexerRoundTrip(t *testing.T) {
	src := "let x = a + b * ( c >> 2 ) ; if ( x ) { return x ; }"
	toks := scanAll(t, src)
	var parts []string
	for _, tok := range toks {
		if tok.Type == token.EOF {
			break
		}
		parts = append(parts, tok.Lexeme)
	}
	got := strings.Join(parts, " ")
	if got != src {
		t.Errorf("round trip:\ngot:  %q\nwant: %q", got, src)
	}
}

func TestLexerLineColumnTracking(t *testing.T) {
	l := New("a\nbb")
	first := l.Next()
	if first.Span.Start.Line != 1 {
		t.Errorf("got line %d, want 1", first.Span.Start.Line)
	}
	second := l.Next()
	if second.Span.Start.Line != 2 {
		t.Errorf("got line %d, want 2", second.Span.Start.Line)
	}
}
