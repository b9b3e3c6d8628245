package step

import "testing"

func tokenKinds(toks []Token) []TokenKind {
	kinds := make([]TokenKind, len(toks))
	for i, t := range toks {
		kinds[i] = t.Kind
	}
	return kinds
}

func TestLexerAllTokenKinds(t *testing.T) {
	src := []byte(`#1=IFCCARTESIANPOINT((1.0,2.5,-3.),#2,$,*,.T.,'it''s a wall');`)
	lex := NewLexer(src)
	toks := lex.Tokenize()

	var gotKinds []TokenKind
	for _, tok := range toks {
		if tok.Kind != TokenEOF {
			gotKinds = append(gotKinds, tok.Kind)
		}
	}

	want := []TokenKind{
		TokenEntityRef, TokenEquals, TokenIdent, TokenLeftParen, TokenLeftParen,
		TokenFloat, TokenComma, TokenFloat, TokenComma, TokenFloat, TokenRightParen,
		TokenComma, TokenEntityRef, TokenComma, TokenNull, TokenComma, TokenDerived,
		TokenComma, TokenEnum, TokenComma, TokenString, TokenRightParen, TokenSemicolon,
	}
	if len(gotKinds) != len(want) {
		t.Fatalf("token count mismatch: got %d (%v), want %d", len(gotKinds), gotKinds, len(want))
	}
	for i := range want {
		if gotKinds[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, gotKinds[i], want[i])
		}
	}
}

func TestLexerEscapedQuote(t *testing.T) {
	src := []byte(`'it''s'`)
	lex := NewLexer(src)
	toks := lex.Tokenize()
	if toks[0].Kind != TokenString {
		t.Fatalf("expected STRING token, got %v", toks[0].Kind)
	}
	if string(toks[0].Span(src)) != `'it''s'` {
		t.Fatalf("unexpected span: %q", toks[0].Span(src))
	}
}

func TestLexerFloatForms(t *testing.T) {
	cases := []string{"0.", ".5", "1.5E10", "1.5e-3", "-2.0"}
	for _, c := range cases {
		lex := NewLexer([]byte(c))
		toks := lex.Tokenize()
		if toks[0].Kind != TokenFloat {
			t.Errorf("%q: expected FLOAT, got %v", c, toks[0].Kind)
		}
	}
}

func TestLexerInt(t *testing.T) {
	lex := NewLexer([]byte("-42"))
	toks := lex.Tokenize()
	if toks[0].Kind != TokenInt {
		t.Fatalf("expected INT, got %v", toks[0].Kind)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := NewLexer([]byte(`'unterminated`))
	toks := lex.Tokenize()
	if toks[0].Kind != TokenError {
		t.Fatalf("expected ERROR token for unterminated string, got %v", toks[0].Kind)
	}
}

func TestLexerComment(t *testing.T) {
	lex := NewLexer([]byte("/* a comment */ #1"))
	toks := lex.Tokenize()
	if toks[0].Kind != TokenEntityRef {
		t.Fatalf("expected comment to be skipped, got %v", toks[0].Kind)
	}
}
