package lexer_test

import (
	"testing"

	"github.com/opal-lang/stratacore/lexer"
	"github.com/opal-lang/stratacore/token"
)

func collect(t *testing.T, l *lexer.Lexer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestEmptyInputYieldsOnlyEOF(t *testing.T) {
	l := lexer.New(lexer.JSON, []byte(""))
	toks := collect(t, l)
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Fatalf("got %v, want [eof]", kinds(toks))
	}
}

func TestTotalityNeverStallsOnGarbage(t *testing.T) {
	src := []byte("{\"a\": #@$, }")
	l := lexer.New(lexer.JSON, src)
	toks := collect(t, l)
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("last token = %v, want eof", toks[len(toks)-1].Kind)
	}
	for _, tok := range toks {
		if tok.Span.Len() == 0 && tok.Kind != token.EOF {
			t.Fatalf("zero-width non-eof token %v: lexer could loop forever", tok)
		}
	}
}

func TestSpanCoverageIsContiguous(t *testing.T) {
	src := []byte(`{"a": 1, "b": [true, null]}`)
	l := lexer.New(lexer.JSON, src, lexer.WithTrivia())
	toks := collect(t, l)
	var cursor uint32
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		if tok.Span.Start != cursor {
			t.Fatalf("gap before %v: want start %d, got %d", tok, cursor, tok.Span.Start)
		}
		cursor = tok.Span.End
	}
	if cursor != uint32(len(src)) {
		t.Fatalf("coverage ends at %d, want %d", cursor, len(src))
	}
}

func TestBracketDepthMonotonic(t *testing.T) {
	src := []byte(`[[{"a":[1]}]]`)
	l := lexer.New(lexer.JSON, src)
	toks := collect(t, l)
	var depth uint8
	for _, tok := range toks {
		switch tok.Kind {
		case token.ArrayStart, token.ObjectStart:
			if tok.Depth != depth {
				t.Fatalf("open token depth = %d, want %d", tok.Depth, depth)
			}
			depth++
		case token.ArrayEnd, token.ObjectEnd:
			if tok.Depth != depth {
				t.Fatalf("close token depth = %d, want %d", tok.Depth, depth)
			}
			depth--
		}
	}
	if depth != 0 {
		t.Fatalf("ended at depth %d, want 0", depth)
	}
}

func TestStringStraddlesRefillBoundary(t *testing.T) {
	l := lexer.NewStreaming(lexer.JSON)
	l.Feed([]byte(`"hello`))

	tok, ok := l.Next()
	if !ok {
		t.Fatal("expected a token before eof")
	}
	if tok.Kind != token.ContinuationTok {
		t.Fatalf("Kind = %v, want continuation", tok.Kind)
	}
	if !tok.Flags.Has(token.IsContinuation) {
		t.Fatal("expected IsContinuation flag set")
	}

	l.Feed([]byte(` world"`))
	tok, ok = l.Next()
	if !ok || tok.Kind != token.StringValue {
		t.Fatalf("Next() = %v, %v, want string_value, true", tok, ok)
	}
	if got, want := tok.Span.Start, uint32(0); got != want {
		t.Fatalf("span start = %d, want %d", got, want)
	}
	if got, want := tok.Span.End, uint32(13); got != want {
		t.Fatalf("span end = %d, want %d", got, want)
	}
}

func TestUnterminatedStringAfterCloseIsError(t *testing.T) {
	l := lexer.NewStreaming(lexer.JSON)
	l.Feed([]byte(`"never closes`))
	l.Close()

	tok, ok := l.Next()
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Kind != token.Err {
		t.Fatalf("Kind = %v, want err", tok.Kind)
	}
	if !tok.Flags.Has(token.HasError) {
		t.Fatal("expected HasError flag set")
	}
}

func TestUnterminatedStringNonStreamingIsErrorNotHang(t *testing.T) {
	src := make([]byte, 0, 10*1024*1024+1)
	src = append(src, '"')
	for len(src) < 10*1024*1024 {
		src = append(src, 'x')
	}
	l := lexer.New(lexer.JSON, src)

	tok, ok := l.Next()
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Kind != token.Err {
		t.Fatalf("Kind = %v, want err", tok.Kind)
	}
	tok2, ok := l.Next()
	if !ok || tok2.Kind != token.EOF {
		t.Fatalf("Next() after error = %v, %v, want eof, true", tok2, ok)
	}
}

func TestNumberVariants(t *testing.T) {
	cases := []struct {
		src       string
		wantFlags token.Flags
	}{
		{"42", 0},
		{"-17", token.IsNegative},
		{"3.14", token.IsFloat},
		{"1e10", token.IsScientific},
		{"-2.5e-3", token.IsNegative | token.IsFloat | token.IsScientific},
	}
	for _, c := range cases {
		l := lexer.New(lexer.JSON, []byte(c.src))
		tok, ok := l.Next()
		if !ok || tok.Kind != token.NumberValue {
			t.Fatalf("%q: Next() = %v, %v, want number_value, true", c.src, tok, ok)
		}
		if tok.Flags != c.wantFlags {
			t.Fatalf("%q: flags = %b, want %b", c.src, tok.Flags, c.wantFlags)
		}
		if tok.Span.Len() != uint32(len(c.src)) {
			t.Fatalf("%q: span len = %d, want %d", c.src, tok.Span.Len(), len(c.src))
		}
	}
}

func TestKeywordsAndTrivia(t *testing.T) {
	l := lexer.New(lexer.JSON, []byte("true false null // trailing\n"))
	toks := collect(t, l)
	got := kinds(toks)
	want := []token.Kind{token.BooleanTrue, token.BooleanFalse, token.NullValue, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestTriviaEmittedWhenRequested(t *testing.T) {
	l := lexer.New(lexer.JSON, []byte("1 2"), lexer.WithTrivia())
	toks := collect(t, l)
	got := kinds(toks)
	want := []token.Kind{token.NumberValue, token.Whitespace, token.NumberValue, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestZonStructAndFieldTokens(t *testing.T) {
	l := lexer.New(lexer.ZON, []byte(`.{ .name = "opal", .version = "1.0.0" }`))
	toks := collect(t, l)
	got := kinds(toks)
	want := []token.Kind{
		token.StructStart,
		token.FieldName, token.Equals, token.StringValue, token.Comma,
		token.FieldName, token.Equals, token.StringValue,
		token.ObjectEnd,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := lexer.New(lexer.JSON, []byte("1 2"))
	first, ok := l.Peek()
	if !ok || first.Kind != token.NumberValue {
		t.Fatalf("Peek() = %v, %v", first, ok)
	}
	second, ok := l.Peek()
	if !ok || second != first {
		t.Fatalf("second Peek() = %v, want %v", second, first)
	}
	next, ok := l.Next()
	if !ok || next != first {
		t.Fatalf("Next() after Peek() = %v, want %v", next, first)
	}
}

func TestCommentStraddlesBoundary(t *testing.T) {
	l := lexer.NewStreaming(lexer.JSON, lexer.WithTrivia())
	l.Feed([]byte("/* part"))
	tok, ok := l.Next()
	if !ok || tok.Kind != token.ContinuationTok {
		t.Fatalf("Next() = %v, %v, want continuation, true", tok, ok)
	}
	l.Feed([]byte("one */"))
	tok, ok = l.Next()
	if !ok || tok.Kind != token.Comment {
		t.Fatalf("Next() = %v, %v, want comment, true", tok, ok)
	}
}

func TestEOFIsReturnedOnceThenFalse(t *testing.T) {
	l := lexer.New(lexer.JSON, []byte("1"))
	if _, ok := l.Next(); !ok {
		t.Fatal("expected number token")
	}
	tok, ok := l.Next()
	if !ok || tok.Kind != token.EOF {
		t.Fatalf("Next() = %v, %v, want eof, true", tok, ok)
	}
	if _, ok := l.Next(); ok {
		t.Fatal("expected false after eof consumed")
	}
}
